package update_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/pkgstore"
	"winsbygroup.com/licserver/internal/testutil"
	"winsbygroup.com/licserver/internal/update"
)

func newService(t *testing.T) (*update.Service, string, int64, int64) {
	t.Helper()
	db := testutil.NewTestDB(t)
	clientID, appID := testutil.Tenancy(t, db, "Acme", "Fleet", "regular")

	dir := t.TempDir()
	store, err := pkgstore.NewLocal(dir)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return update.NewService(db, store, zerolog.Nop()), dir, clientID, appID
}

func TestUpdateLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, dir, clientID, appID := newService(t)

	for _, f := range []string{"fleet-api-1.1.zip", "fleet-web-1.1.zip"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}

	created, err := svc.Create(ctx, &update.Update{
		ApplicationID:    appID,
		Version:          "1.1.0",
		Description:      "route planning",
		Active:           true,
		Mandatory:        false,
		PackageType:      update.PackageBoth,
		APIFileName:      "fleet-api-1.1.zip",
		FrontendFileName: "fleet-web-1.1.zip",
		ClientIDs:        []int64{clientID, clientID},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !created.Mandatory {
		t.Error("expected mandatory to be forced true")
	}
	if created.ReleaseDate.IsZero() {
		t.Error("expected release date to default to now")
	}
	if len(created.ClientIDs) != 1 || created.ClientIDs[0] != clientID {
		t.Errorf("expected deduplicated client list [%d], got %v", clientID, created.ClientIDs)
	}

	// Update clears targeting
	created.ClientIDs = nil
	created.Description = "route planning and fuel reports"
	updated, err := svc.Update(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Targeted() {
		t.Errorf("expected a global update, got clients %v", updated.ClientIDs)
	}
	if updated.Description != "route planning and fuel reports" {
		t.Errorf("unexpected description %q", updated.Description)
	}

	// Delete removes the files too
	if err := svc.Delete(ctx, created.UpdateID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, f := range []string{"fleet-api-1.1.zip", "fleet-web-1.1.zip"} {
		if _, err := os.Stat(filepath.Join(dir, f)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed, stat err %v", f, err)
		}
	}
	if _, err := svc.Get(ctx, created.UpdateID); !apperr.HasCode(err, apperr.CodeNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestDuplicateVersionConflict(t *testing.T) {
	ctx := context.Background()
	svc, _, _, appID := newService(t)

	mk := func(v string) error {
		_, err := svc.Create(ctx, &update.Update{
			ApplicationID: appID,
			Version:       v,
			PackageType:   update.PackageAPI,
			APIFileName:   "api-" + v + ".zip",
		})
		return err
	}

	if err := mk("1.2"); err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, v := range []string{"1.2", "1.2.0", "01.2"} {
		if err := mk(v); !apperr.HasCode(err, apperr.CodeConflict) {
			t.Errorf("expected conflict for %s, got %v", v, err)
		}
	}
	if err := mk("1.2.1"); err != nil {
		t.Errorf("expected 1.2.1 to be accepted, got %v", err)
	}
}

func TestUpdateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _, appID := newService(t)

	tests := []struct {
		name string
		u    update.Update
		code apperr.Code
	}{
		{"bad version", update.Update{ApplicationID: appID, Version: "1.x", PackageType: update.PackageAPI, APIFileName: "a"}, apperr.CodeValidation},
		{"api without file", update.Update{ApplicationID: appID, Version: "1.0", PackageType: update.PackageAPI}, apperr.CodeValidation},
		{"frontend without file", update.Update{ApplicationID: appID, Version: "1.0", PackageType: update.PackageFrontend, APIFileName: "a"}, apperr.CodeValidation},
		{"both with one file", update.Update{ApplicationID: appID, Version: "1.0", PackageType: update.PackageBoth, APIFileName: "a"}, apperr.CodeValidation},
		{"unknown type", update.Update{ApplicationID: appID, Version: "1.0", PackageType: 7, FileName: "a"}, apperr.CodeValidation},
		{"unknown application", update.Update{ApplicationID: 999, Version: "1.0", PackageType: update.PackageBoth, FileName: "a"}, apperr.CodeNotFound},
		{"unknown client", update.Update{ApplicationID: appID, Version: "1.0", PackageType: update.PackageBoth, FileName: "a", ClientIDs: []int64{999}}, apperr.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.u
			_, err := svc.Create(ctx, &u)
			if !apperr.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}

	t.Run("both with legacy file", func(t *testing.T) {
		_, err := svc.Create(ctx, &update.Update{ApplicationID: appID, Version: "1.0", PackageType: update.PackageBoth, FileName: "legacy.zip"})
		if err != nil {
			t.Errorf("expected success, got %v", err)
		}
	})
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	svc, _, _, appID := newService(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range []string{"1.10.0", "1.2.0", "1.9.0", "2.0.0"} {
		_, err := svc.Create(ctx, &update.Update{
			ApplicationID: appID,
			Version:       v,
			Description:   "release " + v,
			PackageType:   update.PackageAPI,
			APIFileName:   "api-" + v + ".zip",
			ReleaseDate:   base.AddDate(0, 0, -i),
		})
		if err != nil {
			t.Fatalf("create %s: %v", v, err)
		}
	}

	versions := func(p *update.Page) []string {
		var out []string
		for _, u := range p.Items {
			out = append(out, u.Version)
		}
		return out
	}

	t.Run("version order is numeric", func(t *testing.T) {
		p, err := svc.Query(ctx, update.Query{ApplicationID: appID})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		got := versions(p)
		want := []string{"1.2.0", "1.9.0", "1.10.0", "2.0.0"}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	})

	t.Run("release date descending with paging", func(t *testing.T) {
		p, err := svc.Query(ctx, update.Query{Sort: update.SortReleaseDate, Desc: true, Page: 2, PageSize: 3})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if p.Total != 4 || len(p.Items) != 1 || p.Items[0].Version != "2.0.0" {
			t.Errorf("unexpected page %+v", versions(p))
		}
	})

	t.Run("keyword", func(t *testing.T) {
		p, err := svc.Query(ctx, update.Query{Keyword: "1.9"})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if p.Total != 1 || p.Items[0].Version != "1.9.0" {
			t.Errorf("unexpected keyword result %v", versions(p))
		}
	})

	t.Run("page past the end", func(t *testing.T) {
		p, err := svc.Query(ctx, update.Query{Page: 9})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if p.Total != 4 || len(p.Items) != 0 {
			t.Errorf("expected empty page with total 4, got %d items", len(p.Items))
		}

		p, err = svc.Query(ctx, update.Query{Page: math.MaxInt64 / 10})
		if err != nil {
			t.Fatalf("query huge page: %v", err)
		}
		if p.Total != 4 || len(p.Items) != 0 {
			t.Errorf("expected empty page for huge page number, got %d items", len(p.Items))
		}

		p, err = svc.Query(ctx, update.Query{Page: 2, PageSize: 3})
		if err != nil {
			t.Fatalf("query last page: %v", err)
		}
		if len(p.Items) != 1 {
			t.Errorf("expected 1 item on the last partial page, got %d", len(p.Items))
		}
	})

	t.Run("unknown sort", func(t *testing.T) {
		_, err := svc.Query(ctx, update.Query{Sort: "version; DROP TABLE"})
		if !apperr.HasCode(err, apperr.CodeValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestDeleteMany(t *testing.T) {
	ctx := context.Background()
	svc, _, _, appID := newService(t)

	var ids []int64
	for _, v := range []string{"1.0.1", "1.0.2"} {
		u, err := svc.Create(ctx, &update.Update{ApplicationID: appID, Version: v, PackageType: update.PackageAPI, APIFileName: v + ".zip"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, u.UpdateID)
	}

	res := svc.DeleteMany(ctx, append(ids, 999, ids[0]))
	if len(res.Deleted) != 2 {
		t.Errorf("expected 2 deleted, got %v", res.Deleted)
	}
	if len(res.Failed) != 1 || res.Failed[0].UpdateID != 999 {
		t.Errorf("expected failure for 999, got %+v", res.Failed)
	}
}

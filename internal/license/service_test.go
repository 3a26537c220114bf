package license_test

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/license"
	"winsbygroup.com/licserver/internal/testutil"
)

func TestLicenseLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	clientID, appID := testutil.Tenancy(t, db, "Acme", "Fleet", "regular")
	svc := license.NewService(db)

	created, err := svc.Create(ctx, &license.License{
		ClientID:         clientID,
		ApplicationID:    appID,
		InstalledVersion: "1.0.0",
		Active:           true,
		UseOwnUpdater:    license.UpdaterOwn,
		APIPoolName:      "acme-fleet-api",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.APIKey == "" {
		t.Fatal("expected an api key to be generated")
	}
	if created.UseOwnUpdater != license.UpdaterOwn {
		t.Errorf("expected updater mode own, got %s", created.UseOwnUpdater)
	}

	byKey, err := svc.GetByAPIKey(ctx, created.APIKey)
	if err != nil {
		t.Fatalf("get by api key: %v", err)
	}
	if byKey.LicenseID != created.LicenseID {
		t.Errorf("expected license %d, got %d", created.LicenseID, byKey.LicenseID)
	}

	// Update
	created.DisplayName = "Acme Fleet"
	created.UseOwnUpdater = license.UpdaterUnspecified
	if err := svc.Update(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}

	detail, err := svc.GetDetail(ctx, created.LicenseID)
	if err != nil {
		t.Fatalf("get detail: %v", err)
	}
	if detail.ClientName != "Acme" || detail.ApplicationName != "Fleet" {
		t.Errorf("unexpected detail names %q/%q", detail.ClientName, detail.ApplicationName)
	}
	if detail.DisplayName != "Acme Fleet" {
		t.Errorf("expected display name to be updated, got %q", detail.DisplayName)
	}
	if detail.UseOwnUpdater != license.UpdaterUnspecified {
		t.Errorf("expected unspecified updater mode, got %s", detail.UseOwnUpdater)
	}

	// Active licenses cannot be deleted
	err = svc.Delete(ctx, created.LicenseID)
	if !apperr.HasCode(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict deleting active license, got %v", err)
	}

	created.Active = false
	if err := svc.Update(ctx, created); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := svc.Delete(ctx, created.LicenseID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err = svc.Get(ctx, created.LicenseID)
	if !apperr.HasCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDeleteLicenseWithModules(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	clientID, appID := testutil.Tenancy(t, db, "Acme", "Fleet", "regular")
	svc := license.NewService(db)

	lic, err := svc.Create(ctx, &license.License{ClientID: clientID, ApplicationID: appID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moduleID := testutil.Insert(t, db, `INSERT INTO module (application_id, module_name) VALUES (?, 'Tracking')`, appID)
	testutil.Exec(t, db, `INSERT INTO license_module (license_id, module_id) VALUES (?, ?)`, lic.LicenseID, moduleID)

	err = svc.Delete(ctx, lic.LicenseID)
	if !apperr.HasCode(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict deleting license with modules, got %v", err)
	}
}

func TestToggleBlockStatus(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	clientID, appID := testutil.Tenancy(t, db, "Acme", "Fleet", "regular")
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	svc := license.NewService(db, license.WithClock(func() time.Time { return fixed }))

	lic, err := svc.Create(ctx, &license.License{ClientID: clientID, ApplicationID: appID, Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("block deactivates", func(t *testing.T) {
		got, err := svc.ToggleBlockStatus(ctx, lic.LicenseID, true, "unpaid invoices")
		if err != nil {
			t.Fatalf("block: %v", err)
		}
		if !got.Blocked || got.Active {
			t.Errorf("expected blocked and inactive, got blocked=%v active=%v", got.Blocked, got.Active)
		}
		if got.BlockReason != "unpaid invoices" {
			t.Errorf("unexpected reason %q", got.BlockReason)
		}
		if got.BlockDate == nil || !got.BlockDate.Equal(fixed) {
			t.Errorf("expected block date %v, got %v", fixed, got.BlockDate)
		}
	})

	t.Run("blocked license cannot be activated by update", func(t *testing.T) {
		got, _ := svc.Get(ctx, lic.LicenseID)
		got.Active = true
		err := svc.Update(ctx, got)
		if !apperr.HasCode(err, apperr.CodeValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("unblock reactivates", func(t *testing.T) {
		got, err := svc.ToggleBlockStatus(ctx, lic.LicenseID, false, "ignored")
		if err != nil {
			t.Fatalf("unblock: %v", err)
		}
		if got.Blocked || !got.Active {
			t.Errorf("expected unblocked and active, got blocked=%v active=%v", got.Blocked, got.Active)
		}
		if got.BlockReason != "" || got.BlockDate != nil {
			t.Errorf("expected block reason/date cleared, got %q/%v", got.BlockReason, got.BlockDate)
		}
	})

	t.Run("missing license", func(t *testing.T) {
		_, err := svc.ToggleBlockStatus(ctx, 999, true, "")
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestProtectedLicenseCannotBeBlocked(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	clientID, appID := testutil.Tenancy(t, db, "Winsby", "Manager", "manager")
	lic, err := license.NewService(db).Create(ctx, &license.License{ClientID: clientID, ApplicationID: appID, Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	svc := license.NewService(db, license.WithProtected(lic.LicenseID))
	_, err = svc.ToggleBlockStatus(ctx, lic.LicenseID, true, "test")
	if !apperr.HasCode(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// unblocking is always allowed
	if _, err := svc.ToggleBlockStatus(ctx, lic.LicenseID, false, ""); err != nil {
		t.Fatalf("unblock protected: %v", err)
	}
}

func TestUpdateInstalledVersion(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	clientID, appID := testutil.Tenancy(t, db, "Acme", "Fleet", "regular")
	svc := license.NewService(db)

	lic, err := svc.Create(ctx, &license.License{ClientID: clientID, ApplicationID: appID, Active: true, InstalledVersion: "1.0.0"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.UpdateInstalledVersion(ctx, lic.LicenseID, "1.1.0"); err != nil {
		t.Fatalf("update installed version: %v", err)
	}
	got, _ := svc.Get(ctx, lic.LicenseID)
	if got.InstalledVersion != "1.1.0" {
		t.Errorf("expected 1.1.0, got %q", got.InstalledVersion)
	}

	if err := svc.UpdateInstalledVersion(ctx, lic.LicenseID, "v1.2"); !apperr.HasCode(err, apperr.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := svc.UpdateInstalledVersion(ctx, 999, "1.2"); !apperr.HasCode(err, apperr.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	// a general edit never moves the installed version
	got.DisplayName = "Acme Fleet"
	got.InstalledVersion = ""
	if err := svc.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = svc.Get(ctx, lic.LicenseID)
	if got.InstalledVersion != "1.1.0" || got.DisplayName != "Acme Fleet" {
		t.Errorf("expected 1.1.0 kept after edit, got %q (%q)", got.InstalledVersion, got.DisplayName)
	}
}

func TestCreateLicenseValidation(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	clientID, appID := testutil.Tenancy(t, db, "Acme", "Fleet", "regular")
	svc := license.NewService(db)

	t.Run("invalid installed version", func(t *testing.T) {
		_, err := svc.Create(ctx, &license.License{ClientID: clientID, ApplicationID: appID, InstalledVersion: "latest"})
		if !apperr.HasCode(err, apperr.CodeValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown application", func(t *testing.T) {
		_, err := svc.Create(ctx, &license.License{ClientID: clientID, ApplicationID: 999})
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("duplicate api key", func(t *testing.T) {
		if _, err := svc.Create(ctx, &license.License{ClientID: clientID, ApplicationID: appID, APIKey: "KEY-1"}); err != nil {
			t.Fatalf("create first: %v", err)
		}
		_, err := svc.Create(ctx, &license.License{ClientID: clientID, ApplicationID: appID, APIKey: "key-1"})
		if !apperr.HasCode(err, apperr.CodeConflict) {
			t.Errorf("expected conflict, got %v", err)
		}
	})
}

func TestRosters(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	internalArea := testutil.Insert(t, db, `INSERT INTO area (area_name, internal) VALUES ('Tooling', 1)`)
	appArea := testutil.Insert(t, db, `INSERT INTO area (area_name, internal) VALUES ('Apps', 0)`)
	updaterApp := testutil.Insert(t, db, `INSERT INTO application (application_name, area_id, kind) VALUES ('Updater', ?, 'updater')`, internalArea)
	reportApp := testutil.Insert(t, db, `INSERT INTO application (application_name, area_id, kind) VALUES ('Reports', ?, 'regular')`, internalArea)
	fleetApp := testutil.Insert(t, db, `INSERT INTO application (application_name, area_id) VALUES ('Fleet', ?)`, appArea)
	acme := testutil.Insert(t, db, `INSERT INTO client (client_name) VALUES ('Acme')`)
	beta := testutil.Insert(t, db, `INSERT INTO client (client_name) VALUES ('Beta')`)

	svc := license.NewService(db)
	mk := func(client, app int64, mode license.UpdaterMode, active bool) int64 {
		l, err := svc.Create(ctx, &license.License{ClientID: client, ApplicationID: app, UseOwnUpdater: mode, Active: active})
		if err != nil {
			t.Fatalf("create license: %v", err)
		}
		return l.LicenseID
	}

	acmeUpdater := mk(acme, updaterApp, license.UpdaterUnspecified, true)
	acmeFleet := mk(acme, fleetApp, license.UpdaterOwn, true)
	acmeReports := mk(acme, reportApp, license.UpdaterOwn, true)
	betaFleet := mk(beta, fleetApp, license.UpdaterCompany, true)
	betaOld := mk(beta, fleetApp, license.UpdaterUnspecified, false)
	_ = betaOld

	repo := svc.Repository()

	company, err := repo.GetCompanyRoster(ctx)
	if err != nil {
		t.Fatalf("company roster: %v", err)
	}
	if len(company) != 1 || company[0].LicenseID != betaFleet {
		t.Errorf("expected company roster [%d], got %+v", betaFleet, ids(company))
	}

	own, err := repo.GetClientRoster(ctx, acme)
	if err != nil {
		t.Fatalf("client roster: %v", err)
	}
	if len(own) != 1 || own[0].LicenseID != acmeFleet {
		t.Errorf("expected client roster [%d] (internal %d excluded), got %v", acmeFleet, acmeReports, ids(own))
	}

	upd, err := repo.GetClientUpdater(ctx, acme)
	if err != nil {
		t.Fatalf("client updater: %v", err)
	}
	if upd.LicenseID != acmeUpdater || !upd.IsUpdater() || !upd.AreaInternal {
		t.Errorf("unexpected client updater %+v", upd)
	}

	_, err = repo.GetClientUpdater(ctx, beta)
	if !apperr.HasCode(err, apperr.CodeNotFound) {
		t.Errorf("expected not found for client without updater, got %v", err)
	}
}

func TestGetEntitled(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	clientID, appID := testutil.Tenancy(t, db, "Acme", "Fleet", "regular")
	svc := license.NewService(db)

	_, err := svc.Repository().GetEntitled(ctx, clientID, appID)
	if !apperr.HasCode(err, apperr.CodeUnentitled) {
		t.Fatalf("expected unentitled without license, got %v", err)
	}

	lic, err := svc.Create(ctx, &license.License{ClientID: clientID, ApplicationID: appID, Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Repository().GetEntitled(ctx, clientID, appID)
	if err != nil {
		t.Fatalf("get entitled: %v", err)
	}
	if got.LicenseID != lic.LicenseID {
		t.Errorf("expected license %d, got %d", lic.LicenseID, got.LicenseID)
	}

	if _, err := svc.ToggleBlockStatus(ctx, lic.LicenseID, true, "fraud"); err != nil {
		t.Fatalf("block: %v", err)
	}
	_, err = svc.Repository().GetEntitled(ctx, clientID, appID)
	if !apperr.HasCode(err, apperr.CodeUnentitled) {
		t.Fatalf("expected unentitled once blocked, got %v", err)
	}
}

func TestUpdaterModeText(t *testing.T) {
	for _, m := range []license.UpdaterMode{license.UpdaterUnspecified, license.UpdaterCompany, license.UpdaterOwn} {
		b, err := m.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", m, err)
		}
		var back license.UpdaterMode
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("unmarshal %q: %v", b, err)
		}
		if back != m {
			t.Errorf("round trip %v gave %v", m, back)
		}
	}
	if !license.UpdaterOwn.UsesOwnUpdater() || license.UpdaterUnspecified.UsesOwnUpdater() {
		t.Error("only UpdaterOwn uses its own updater")
	}
}

func ids(ds []license.Detail) []int64 {
	out := make([]int64, len(ds))
	for i, d := range ds {
		out[i] = d.LicenseID
	}
	return out
}

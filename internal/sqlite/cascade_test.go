package sqlite_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/licserver/internal/application"
	"winsbygroup.com/licserver/internal/client"
	"winsbygroup.com/licserver/internal/license"
	"winsbygroup.com/licserver/internal/testutil"
)

// countRows returns the number of rows in a table
func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	return testutil.Count(t, db, "SELECT COUNT(*) FROM "+table)
}

// seed creates two clients sharing one application. Client 1 holds a license
// with a module enabled and is the target of update 1; client 2 holds a
// license and is the target of update 2.
func seed(t *testing.T, db *sqlx.DB) {
	t.Helper()
	testutil.Exec(t, db, `
		INSERT INTO area (area_id, area_name) VALUES (1, 'Operations');

		INSERT INTO client (client_id, client_name) VALUES
			(1, 'Client One'),
			(2, 'Client Two');

		INSERT INTO application (application_id, application_name, area_id) VALUES
			(1, 'Fleet', 1),
			(2, 'Billing', 1);

		INSERT INTO license (license_id, client_id, application_id, api_key, active) VALUES
			(1, 1, 1, 'key-1', 0),
			(2, 2, 1, 'key-2', 0),
			(3, 1, 2, 'key-3', 0);

		INSERT INTO module (module_id, application_id, module_name) VALUES
			(1, 1, 'Tracking'),
			(2, 2, 'Invoicing');

		INSERT INTO license_module (license_id, module_id) VALUES (1, 1), (3, 2);

		INSERT INTO update_package (update_id, application_id, version, version_key, release_date, package_type) VALUES
			(1, 1, '1.1.0', '1.1', '2025-01-01', 0),
			(2, 1, '1.2.0', '1.2', '2025-02-01', 0);

		INSERT INTO update_client (update_id, client_id) VALUES (1, 1), (2, 2);
	`)
}

// TestCascadeDeleteClient verifies that deleting a client cascades to:
// - licenses (direct FK)
// - license_module (via license FK)
// - update_client (direct FK)
func TestCascadeDeleteClient(t *testing.T) {
	db := testutil.NewTestDB(t)
	seed(t, db)

	svc := client.NewService(db)
	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("delete client: %v", err)
	}

	if n := countRows(t, db, "license"); n != 1 {
		t.Errorf("expected 1 license left, got %d", n)
	}
	if n := countRows(t, db, "license_module"); n != 0 {
		t.Errorf("expected no license modules left, got %d", n)
	}
	if n := testutil.Count(t, db, "SELECT COUNT(*) FROM update_client WHERE client_id = 1"); n != 0 {
		t.Errorf("expected update targets of client 1 removed, got %d", n)
	}

	// updates and modules are catalog data and survive
	if n := countRows(t, db, "update_package"); n != 2 {
		t.Errorf("expected 2 updates, got %d", n)
	}
	if n := countRows(t, db, "module"); n != 2 {
		t.Errorf("expected 2 modules, got %d", n)
	}
}

// TestCascadeDeleteApplication verifies that deleting an application
// cascades to its licenses, modules, updates and their associations.
func TestCascadeDeleteApplication(t *testing.T) {
	db := testutil.NewTestDB(t)
	seed(t, db)

	svc := application.NewService(db)
	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("delete application: %v", err)
	}

	if n := countRows(t, db, "license"); n != 1 {
		t.Errorf("expected only the Billing license left, got %d", n)
	}
	if n := countRows(t, db, "module"); n != 1 {
		t.Errorf("expected only the Billing module left, got %d", n)
	}
	if n := countRows(t, db, "license_module"); n != 1 {
		t.Errorf("expected 1 license module left, got %d", n)
	}
	if n := countRows(t, db, "update_package"); n != 0 {
		t.Errorf("expected no updates left, got %d", n)
	}
	if n := countRows(t, db, "update_client"); n != 0 {
		t.Errorf("expected no update targets left, got %d", n)
	}
	if n := countRows(t, db, "client"); n != 2 {
		t.Errorf("expected clients untouched, got %d", n)
	}
}

// TestCascadeDeleteLicense verifies that deleting a license removes its
// module associations and nothing else.
func TestCascadeDeleteLicense(t *testing.T) {
	db := testutil.NewTestDB(t)
	seed(t, db)

	svc := license.NewService(db)
	testutil.Exec(t, db, `DELETE FROM license_module WHERE license_id = 1`)
	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("delete license: %v", err)
	}

	if n := countRows(t, db, "license"); n != 2 {
		t.Errorf("expected 2 licenses left, got %d", n)
	}
	if n := countRows(t, db, "module"); n != 2 {
		t.Errorf("expected modules untouched, got %d", n)
	}

	// raw delete still cascades associations
	testutil.Exec(t, db, `DELETE FROM license WHERE license_id = 3`)
	if n := countRows(t, db, "license_module"); n != 0 {
		t.Errorf("expected associations of license 3 removed, got %d", n)
	}
}

// TestAreaInUseIsRestricted verifies an area cannot be removed while
// applications reference it.
func TestAreaInUseIsRestricted(t *testing.T) {
	db := testutil.NewTestDB(t)
	seed(t, db)

	if _, err := db.Exec(`DELETE FROM area WHERE area_id = 1`); err == nil {
		t.Fatal("expected foreign key error deleting an area in use")
	}
	if n := countRows(t, db, "application"); n != 2 {
		t.Errorf("expected applications untouched, got %d", n)
	}
}

// TestBlockedLicenseMustBeInactive verifies the table rejects a license that is
// both blocked and active.
func TestBlockedLicenseMustBeInactive(t *testing.T) {
	db := testutil.NewTestDB(t)
	seed(t, db)

	if _, err := db.Exec(`UPDATE license SET active = 1, blocked = 1 WHERE license_id = 2`); err == nil {
		t.Fatal("expected check constraint error")
	}
}

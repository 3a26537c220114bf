// Package testutil opens migrated licserver databases and seeds rows for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/licserver/internal/sqlite"
)

// dsnOptions mirror the server DSN so every pooled connection enforces
// foreign keys and cascades behave as in production.
const dsnOptions = "?_foreign_keys=on&_journal_mode=DELETE"

// NewTestDB returns a migrated database in a per-test temporary directory.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	return NewTestDBAt(t, filepath.Join(t.TempDir(), "licserver.db"))
}

// NewTestDBAt opens and migrates the database file at dbPath. It is closed
// when the test ends.
func NewTestDBAt(t *testing.T, dbPath string) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", dbPath+dsnOptions)
	if err != nil {
		t.Fatalf("open %s: %v", dbPath, err)
	}
	t.Cleanup(func() { db.Close() })

	var fk int
	if err := db.Get(&fk, `PRAGMA foreign_keys;`); err != nil {
		t.Fatalf("read foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatal("sqlite build does not enforce foreign keys")
	}

	if err := sqlite.RunMigrations(db.DB); err != nil {
		t.Fatalf("migrate %s: %v", dbPath, err)
	}
	return db
}

package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"
)

// Exec runs one or more SQL statements, failing the test on error.
func Exec(t *testing.T, db *sqlx.DB, sql string, args ...any) {
	t.Helper()
	if _, err := db.Exec(sql, args...); err != nil {
		t.Fatalf("exec: %v", err)
	}
}

// Insert runs a single INSERT and returns the new row id.
func Insert(t *testing.T, db *sqlx.DB, sql string, args ...any) int64 {
	t.Helper()
	res, err := db.Exec(sql, args...)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return id
}

// Count returns the single integer a COUNT query yields.
func Count(t *testing.T, db *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.Get(&n, query, args...); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// Tenancy inserts a client and an application in a fresh area and returns their ids.
func Tenancy(t *testing.T, db *sqlx.DB, clientName, appName, kind string) (clientID, appID int64) {
	t.Helper()
	areaID := Insert(t, db, `INSERT INTO area (area_name) VALUES (?)`, appName+" area")
	clientID = Insert(t, db, `INSERT INTO client (client_name) VALUES (?)`, clientName)
	appID = Insert(t, db, `INSERT INTO application (application_name, area_id, kind) VALUES (?, ?, ?)`,
		appName, areaID, kind)
	return clientID, appID
}

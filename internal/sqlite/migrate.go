package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/GuiaBolso/darwin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// ApplicationID is the SQLite application_id for licserver databases.
// "LICS" in ASCII: L=0x4C, I=0x49, C=0x43, S=0x53
const ApplicationID = 0x4C494353

// ErrInvalidDatabase is returned when the database is not a valid licserver database.
var ErrInvalidDatabase = errors.New("not a valid 'licserver' database")

// defineMigrations returns a slice of database migrations
// Each migration is defined in a separate row (versioned by major db release)
// comments must only appear after sql on a line and cannot span lines (comments are stripped before checksum calc)
// *NEVER* change/remove a step once released! (because a checksum of the script is saved with the migration)
func defineMigrations() []darwin.Migration {
	m := []darwin.Migration{

		// Each database change release is given a major version number (1.xx, 2.xx) with minor numbers (x.01, x.02)
		// representing the actual migration steps within that release. Version numbers must be ascending.

		// 0x4C494353 = "LICS" in ASCII
		{Version: 1.00, Description: "Set application_id", Script: `
		PRAGMA application_id = 0x4C494353;`},

		{Version: 1.01, Description: "Create Table 'client'", Script: `
		CREATE TABLE IF NOT EXISTS client (
			client_id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_name VARCHAR(255) NOT NULL UNIQUE COLLATE NOCASE,
			contact_name VARCHAR(255) NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT ''
		);`},

		{Version: 1.02, Description: "Create Table 'area'", Script: `
		CREATE TABLE IF NOT EXISTS area (
			area_id INTEGER PRIMARY KEY AUTOINCREMENT,
			area_name VARCHAR(255) NOT NULL UNIQUE COLLATE NOCASE,
			internal INTEGER NOT NULL DEFAULT 0 CHECK (internal in (0,1))
		);`},

		{Version: 1.03, Description: "Create Table 'application'", Script: `
		CREATE TABLE IF NOT EXISTS application (
			application_id INTEGER PRIMARY KEY AUTOINCREMENT,
			application_name VARCHAR(255) NOT NULL UNIQUE COLLATE NOCASE,
			area_id INTEGER NOT NULL,
			kind VARCHAR(10) NOT NULL DEFAULT 'regular' CHECK (kind in ('regular','updater','manager')),
			slug VARCHAR(100) NOT NULL DEFAULT '',
			FOREIGN KEY (area_id) REFERENCES area (area_id)
		);`},

		{Version: 1.04, Description: "Create Index 'idx_application_area_id'", Script: `
		CREATE INDEX IF NOT EXISTS idx_application_area_id ON application (area_id ASC);`},

		{Version: 1.05, Description: "Create Table 'license'", Script: `
		CREATE TABLE IF NOT EXISTS license (
			license_id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			application_id INTEGER NOT NULL,
			api_key VARCHAR(64) NOT NULL COLLATE NOCASE,
			display_name VARCHAR(255) NOT NULL DEFAULT '',
			installed_version VARCHAR(50) NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1 CHECK (active in (0,1)),
			blocked INTEGER NOT NULL DEFAULT 0 CHECK (blocked in (0,1)),
			block_reason VARCHAR(255) NOT NULL DEFAULT '',
			block_date DATETIME,
			use_own_updater INTEGER CHECK (use_own_updater in (0,1)),
			frontend_path VARCHAR(255) NOT NULL DEFAULT '',
			api_path VARCHAR(255) NOT NULL DEFAULT '',
			api_pool_name VARCHAR(255) NOT NULL DEFAULT '',
			frontend_pool_name VARCHAR(255) NOT NULL DEFAULT '',
			management_url VARCHAR(255) NOT NULL DEFAULT '',
			database_name VARCHAR(128) NOT NULL DEFAULT '',
			CONSTRAINT ck_license_blocked_inactive CHECK (blocked = 0 OR active = 0),
			FOREIGN KEY (client_id) REFERENCES client (client_id) ON DELETE CASCADE,
			FOREIGN KEY (application_id) REFERENCES application (application_id) ON DELETE CASCADE
		);`},

		{Version: 1.06, Description: "Create Index 'idx_license_client_id'", Script: `
		CREATE INDEX IF NOT EXISTS idx_license_client_id ON license (client_id ASC);`},

		{Version: 1.07, Description: "Create Index 'idx_license_application_id'", Script: `
		CREATE INDEX IF NOT EXISTS idx_license_application_id ON license (application_id ASC);`},

		{Version: 1.08, Description: "Create Unique Index 'idx_license_api_key'", Script: `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_license_api_key ON license (api_key);`},

		{Version: 1.09, Description: "Create Table 'module'", Script: `
		CREATE TABLE IF NOT EXISTS module (
			module_id INTEGER PRIMARY KEY AUTOINCREMENT,
			application_id INTEGER NOT NULL,
			module_name VARCHAR(255) NOT NULL,
			FOREIGN KEY (application_id) REFERENCES application (application_id) ON DELETE CASCADE
		);`},

		{Version: 1.10, Description: "Create Unique Index 'idx_module_application_name'", Script: `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_module_application_name ON module (application_id, module_name COLLATE NOCASE);`},

		{Version: 1.11, Description: "Create Table 'license_module'", Script: `
		CREATE TABLE IF NOT EXISTS license_module (
			license_id INTEGER NOT NULL,
			module_id INTEGER NOT NULL,
			CONSTRAINT pk_license_module PRIMARY KEY (license_id, module_id),
			FOREIGN KEY (license_id) REFERENCES license (license_id) ON DELETE CASCADE,
			FOREIGN KEY (module_id) REFERENCES module (module_id) ON DELETE CASCADE
		);`},

		{Version: 1.12, Description: "Create Table 'update_package'", Script: `
		CREATE TABLE IF NOT EXISTS update_package (
			update_id INTEGER PRIMARY KEY AUTOINCREMENT,
			application_id INTEGER NOT NULL,
			version VARCHAR(50) NOT NULL,
			version_key VARCHAR(50) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 0 CHECK (active in (0,1)),
			mandatory INTEGER NOT NULL DEFAULT 1 CHECK (mandatory in (0,1)),
			release_date DATETIME NOT NULL,
			package_type INTEGER NOT NULL CHECK (package_type in (0,1,2)),
			file_name VARCHAR(255) NOT NULL DEFAULT '',
			file_size INTEGER NOT NULL DEFAULT 0,
			file_hash VARCHAR(128) NOT NULL DEFAULT '',
			api_file_name VARCHAR(255) NOT NULL DEFAULT '',
			api_file_size INTEGER NOT NULL DEFAULT 0,
			api_file_hash VARCHAR(128) NOT NULL DEFAULT '',
			frontend_file_name VARCHAR(255) NOT NULL DEFAULT '',
			frontend_file_size INTEGER NOT NULL DEFAULT 0,
			frontend_file_hash VARCHAR(128) NOT NULL DEFAULT '',
			FOREIGN KEY (application_id) REFERENCES application (application_id) ON DELETE CASCADE
		);`},

		{Version: 1.13, Description: "Create Unique Index 'idx_update_application_version'", Script: `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_update_application_version ON update_package (application_id, version_key);`},

		{Version: 1.14, Description: "Create Table 'update_client'", Script: `
		CREATE TABLE IF NOT EXISTS update_client (
			update_id INTEGER NOT NULL,
			client_id INTEGER NOT NULL,
			CONSTRAINT pk_update_client PRIMARY KEY (update_id, client_id),
			FOREIGN KEY (update_id) REFERENCES update_package (update_id) ON DELETE CASCADE,
			FOREIGN KEY (client_id) REFERENCES client (client_id) ON DELETE CASCADE
		);`},

		{Version: 1.15, Description: "Create Index 'idx_update_client_client_id'", Script: `
		CREATE INDEX IF NOT EXISTS idx_update_client_client_id ON update_client (client_id ASC);`},
	}
	return m
}

// changes returns a user-friendly display of database version changes
func changes(v1, v2 float64) string {
	if v1 != v2 {
		return fmt.Sprintf("DB Version: %.2f (migrated from %.2f to %.2f)", v2, v1, v2)
	}
	return fmt.Sprintf("DB Version: %.2f", v1)
}

// currentVersion reads from migration table to get the latest version and number of steps applied
func currentVersion(db *sql.DB) (count int, ver float64, err error) {
	// might not have any migrations yet...
	s := `select count(*) as n from sqlite_master where tbl_name = 'darwin_migrations';`
	err = db.QueryRow(s).Scan(&count)
	if err != nil || count == 0 {
		return 0, 0, err
	}

	s = `select count(*) as n, max(version) as ver from darwin_migrations;`
	err = db.QueryRow(s).Scan(&count, &ver)
	return count, ver, err
}

// minifiedMigrations returns our migrations with minified scripts so comments or formatting changes
// will not generate a new checksum
func minifiedMigrations() []darwin.Migration {
	migrations := defineMigrations()
	for i := range migrations {
		migrations[i].Script = minify(migrations[i].Script)
	}
	return migrations
}

// minify simplifies the script to keep certain changes (spaces, tabs, case and comments) from
// creating a new checksum
func minify(script string) string {
	b := strings.Builder{}
	s := strings.ToLower(strings.ReplaceAll(script, "/*", "--"))
	lines := strings.Split(s, "\n")
	for _, line := range lines {
		if i := strings.Index(line, "--"); i != -1 {
			line = line[0:i]
		}
		b.WriteString(strings.TrimSpace(line) + "\n")
	}
	result := strings.TrimSpace(strings.ReplaceAll(b.String(), "\t", " "))
	before := 0
	for len(result) != before {
		before = len(result)
		result = strings.ReplaceAll(result, "  ", " ")
	}
	return strings.TrimSpace(result)
}

// progress returns the steps attempted during this migration
func progress(ch <-chan darwin.MigrationInfo) string {
	var b strings.Builder

	for info := range ch {
		_, _ = fmt.Fprintf(&b, "v%.2f: \"%s\" (%s) Error: %v\n",
			info.Migration.Version, info.Migration.Description, info.Status.String(), info.Error)
	}
	return b.String()
}

// Schema returns the current sqlite definitions as a string for display (without comments)
func Schema() string {
	var b strings.Builder

	schema := defineMigrations()
	for _, m := range schema {
		_, _ = fmt.Fprintf(&b, "-- %s (%.2f)\n%s\n\n", m.Description, m.Version, m.Script)
	}
	return b.String()
}

// VerifyApplicationID checks that the database has the correct application_id.
// Returns ErrInvalidDatabase if the database belongs to a different application.
// Returns nil for empty databases (application_id = 0, no tables) or licserver databases.
func VerifyApplicationID(db *sql.DB) error {
	var appID int
	if err := db.QueryRow("PRAGMA application_id;").Scan(&appID); err != nil {
		return fmt.Errorf("read application_id: %w", err)
	}

	// Accept our application ID
	if appID == ApplicationID {
		return nil
	}

	// Reject non-zero application IDs that aren't ours
	if appID != 0 {
		return fmt.Errorf("%w (application_id 0x%X)", ErrInvalidDatabase, appID)
	}

	// appID is 0 - only accept if database is empty (no user tables)
	var tableCount int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check tables: %w", err)
	}
	if tableCount > 0 {
		return fmt.Errorf("%w (has tables but no application_id)", ErrInvalidDatabase)
	}

	return nil
}

// RunMigrations applies all migrations to an already-open *sql.DB.
// This is perfect for tests using :memory: SQLite.
func RunMigrations(db *sql.DB) error {
	// Verify this is a licserver database (or new) before migrating
	if err := VerifyApplicationID(db); err != nil {
		return err
	}

	count, v1, err := currentVersion(db)
	if err != nil {
		return err
	}

	migrations := minifiedMigrations()
	if count == len(migrations) && v1 == migrations[count-1].Version {
		log.Info().Str("db_version", fmt.Sprintf("%.2f", v1)).Msg("database is current, no migrations needed")
		return nil // already up to date
	}

	// setup for the migrations
	driver := darwin.NewGenericDriver(db, darwin.SqliteDialect{})
	infoChan := make(chan darwin.MigrationInfo, len(migrations))
	d := darwin.New(driver, migrations, infoChan)

	// perform the migrations
	var v2 float64
	if err := d.Migrate(); err != nil {
		close(infoChan)
		_, v2, _ = currentVersion(db)
		prog := progress(infoChan)
		log.Error().Err(err).
			Str("from", fmt.Sprintf("%.2f", v1)).
			Str("to", fmt.Sprintf("%.2f", v2)).
			Str("progress", prog).
			Msg("migration failed")
		return fmt.Errorf("migration error: %w\n%s", err, prog)
	}
	close(infoChan)

	_, v2, err = currentVersion(db)
	if err != nil {
		return err
	}

	log.Info().Msg(changes(v1, v2))
	return nil
}

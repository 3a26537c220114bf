// Package backup writes gzip-compressed SQL dumps of the licensing database
// next to the database file and keeps only the most recent ones.
package backup

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

const (
	suffix     = "_licdump.sql.gz"
	timeLayout = "2006-01-02_15.04.05"
)

type Service struct {
	db     *sqlx.DB
	dir    string
	keep   int
	logger zerolog.Logger
	now    func() time.Time
}

// NewService stores dumps in a "backups" directory beside dbPath. keep <= 0
// disables pruning.
func NewService(db *sqlx.DB, dbPath string, keep int, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		dir:    filepath.Join(filepath.Dir(dbPath), "backups"),
		keep:   keep,
		logger: logger.With().Str("component", "backup").Logger(),
		now:    time.Now,
	}
}

// Dir is where dumps are written.
func (s *Service) Dir() string {
	return s.dir
}

// Backup describes one dump on disk.
type Backup struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"-"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Create snapshots the database with VACUUM INTO, dumps the snapshot and
// prunes dumps beyond the retention count.
func (s *Service) Create(ctx context.Context) (*Backup, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	created := s.now()
	filename := created.Format(timeLayout) + suffix
	path := filepath.Join(s.dir, filename)

	snapshot := filepath.Join(s.dir, "snapshot.db")
	_ = os.Remove(snapshot)
	defer os.Remove(snapshot)

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, snapshot); err != nil {
		return nil, fmt.Errorf("vacuum into snapshot: %w", err)
	}

	snap, err := sqlx.Open("sqlite3", snapshot+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer snap.Close()

	if err := writeDump(ctx, snap, path, created); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat backup file: %w", err)
	}

	if err := s.prune(); err != nil {
		s.logger.Warn().Err(err).Msg("prune old backups")
	}

	s.logger.Info().Str("file", filename).Int64("size", info.Size()).Msg("backup created")
	return &Backup{Filename: filename, Path: path, Size: info.Size(), CreatedAt: created}, nil
}

// List returns the dumps on disk, newest first.
func (s *Service) List() ([]Backup, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []Backup{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	backups := []Backup{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		created, err := time.ParseInLocation(timeLayout, strings.TrimSuffix(e.Name(), suffix), time.Local)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		backups = append(backups, Backup{
			Filename:  e.Name(),
			Path:      filepath.Join(s.dir, e.Name()),
			Size:      info.Size(),
			CreatedAt: created,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Filename > backups[j].Filename
	})
	return backups, nil
}

func (s *Service) prune() error {
	if s.keep <= 0 {
		return nil
	}
	backups, err := s.List()
	if err != nil {
		return err
	}
	for _, b := range backups[min(s.keep, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			return fmt.Errorf("remove %s: %w", b.Filename, err)
		}
		s.logger.Debug().Str("file", b.Filename).Msg("backup pruned")
	}
	return nil
}

func writeDump(ctx context.Context, db *sqlx.DB, path string, created time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	w := bufio.NewWriter(gz)

	if err := dump(ctx, db, w, created); err != nil {
		return fmt.Errorf("generate dump: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush dump: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}
	return f.Close()
}

// dump streams schema objects and row inserts as a replayable script.
func dump(ctx context.Context, db *sqlx.DB, w io.Writer, created time.Time) error {
	fmt.Fprintf(w, "-- Licserver database backup\n-- Generated: %s\n", created.Format(time.RFC3339))
	fmt.Fprint(w, "PRAGMA foreign_keys=OFF;\nBEGIN TRANSACTION;\n\n")

	var objects []struct {
		SQL string `db:"sql"`
	}
	if err := db.SelectContext(ctx, &objects, schemaQuery); err != nil {
		return fmt.Errorf("query schema: %w", err)
	}
	for _, o := range objects {
		fmt.Fprintf(w, "%s;\n", o.SQL)
	}
	fmt.Fprintln(w)

	var tables []string
	if err := db.SelectContext(ctx, &tables, tablesQuery); err != nil {
		return fmt.Errorf("query tables: %w", err)
	}
	for _, table := range tables {
		if err := dumpRows(ctx, db, w, table); err != nil {
			return fmt.Errorf("dump %s: %w", table, err)
		}
	}

	_, err := fmt.Fprint(w, "COMMIT;\nPRAGMA journal_mode=WAL;\n")
	return err
}

func dumpRows(ctx context.Context, db *sqlx.DB, w io.Writer, table string) error {
	rows, err := db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %q", table))
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	for i, c := range columns {
		columns[i] = fmt.Sprintf("%q", c)
	}
	prefix := fmt.Sprintf("INSERT INTO %q (%s) VALUES (", table, strings.Join(columns, ", "))

	wrote := false
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return err
		}
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = literal(v)
		}
		fmt.Fprintf(w, "%s%s);\n", prefix, strings.Join(values, ", "))
		wrote = true
	}
	if wrote {
		fmt.Fprintln(w)
	}
	return rows.Err()
}

func literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return quote(string(val))
	case string:
		return quote(val)
	case int64, float64:
		return fmt.Sprintf("%v", val)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case time.Time:
		return quote(val.UTC().Format(time.RFC3339))
	default:
		return quote(fmt.Sprintf("%v", val))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

const schemaQuery = `
	SELECT sql
	FROM sqlite_master
	WHERE sql IS NOT NULL
	  AND name NOT LIKE 'sqlite_%'
	ORDER BY
		CASE type
			WHEN 'table' THEN 1
			WHEN 'index' THEN 2
			WHEN 'trigger' THEN 3
			WHEN 'view' THEN 4
		END,
		name`

const tablesQuery = `
	SELECT name
	FROM sqlite_master
	WHERE type = 'table'
	  AND name NOT LIKE 'sqlite_%'
	ORDER BY name`

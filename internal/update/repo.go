package update

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/licserver/internal/apperr"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Update, error)
	Find(ctx context.Context, applicationID int64, keyword string) ([]Update, error)
	ActiveForApplication(ctx context.Context, applicationID int64) ([]Update, error)

	Create(ctx context.Context, tx *sqlx.Tx, u *Update) (int64, error)
	Update(ctx context.Context, tx *sqlx.Tx, u *Update) error
	SetClients(ctx context.Context, tx *sqlx.Tx, id int64, clientIDs []int64) error
	Delete(ctx context.Context, tx *sqlx.Tx, id int64) error
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, id int64) (*Update, error) {
	var u Update
	err := r.db.GetContext(ctx, &u, getUpdateSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("update not found (%d)", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get update: %w", err)
	}

	one := []Update{u}
	if err := r.loadClients(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *repo) Find(ctx context.Context, applicationID int64, keyword string) ([]Update, error) {
	pattern := ""
	if keyword != "" {
		pattern = "%" + keyword + "%"
	}

	var out []Update
	err := r.db.SelectContext(ctx, &out, queryUpdatesSQL,
		applicationID, applicationID,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("find updates: %w", err)
	}
	if err := r.loadClients(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveForApplication returns every active update of the application with its
// targeting list loaded.
func (r *repo) ActiveForApplication(ctx context.Context, applicationID int64) ([]Update, error) {
	var out []Update
	err := r.db.SelectContext(ctx, &out, getActiveForApplicationSQL, applicationID)
	if err != nil {
		return nil, fmt.Errorf("get active updates: %w", err)
	}
	if err := r.loadClients(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadClients fills ClientIDs for all updates with a single query.
func (r *repo) loadClients(ctx context.Context, updates []Update) error {
	if len(updates) == 0 {
		return nil
	}

	ids := make([]int64, len(updates))
	for i := range updates {
		ids[i] = updates[i].UpdateID
		updates[i].ClientIDs = []int64{}
	}

	query, args, err := sqlx.In(getClientIDsSQL, ids)
	if err != nil {
		return fmt.Errorf("build client query: %w", err)
	}

	var rows []struct {
		UpdateID int64 `db:"update_id"`
		ClientID int64 `db:"client_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("get update clients: %w", err)
	}

	byUpdate := make(map[int64][]int64, len(updates))
	for _, row := range rows {
		byUpdate[row.UpdateID] = append(byUpdate[row.UpdateID], row.ClientID)
	}
	for i := range updates {
		if c, ok := byUpdate[updates[i].UpdateID]; ok {
			updates[i].ClientIDs = c
		}
	}
	return nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, u *Update) (int64, error) {
	res, err := tx.ExecContext(ctx, createUpdateSQL,
		u.ApplicationID,
		u.Version,
		u.VersionKey,
		u.Description,
		u.Active,
		u.Mandatory,
		u.ReleaseDate,
		u.PackageType,
		u.FileName,
		u.FileSize,
		u.FileHash,
		u.APIFileName,
		u.APIFileSize,
		u.APIFileHash,
		u.FrontendFileName,
		u.FrontendFileSize,
		u.FrontendFileHash,
	)
	if err != nil {
		return 0, fmt.Errorf("create update: %w", err)
	}
	return res.LastInsertId()
}

func (r *repo) Update(ctx context.Context, tx *sqlx.Tx, u *Update) error {
	res, err := tx.ExecContext(ctx, updateUpdateSQL,
		u.ApplicationID,
		u.Version,
		u.VersionKey,
		u.Description,
		u.Active,
		u.Mandatory,
		u.ReleaseDate,
		u.PackageType,
		u.FileName,
		u.FileSize,
		u.FileHash,
		u.APIFileName,
		u.APIFileSize,
		u.APIFileHash,
		u.FrontendFileName,
		u.FrontendFileSize,
		u.FrontendFileHash,
		u.UpdateID,
	)
	if err != nil {
		return fmt.Errorf("update update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound(fmt.Sprintf("update not found (%d)", u.UpdateID))
	}
	return nil
}

// SetClients replaces the targeting list.
func (r *repo) SetClients(ctx context.Context, tx *sqlx.Tx, id int64, clientIDs []int64) error {
	if _, err := tx.ExecContext(ctx, clearClientsSQL, id); err != nil {
		return fmt.Errorf("clear update clients: %w", err)
	}
	for _, c := range clientIDs {
		if _, err := tx.ExecContext(ctx, addClientSQL, id, c); err != nil {
			return fmt.Errorf("add update client %d: %w", c, err)
		}
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, deleteUpdateSQL, id)
	if err != nil {
		return fmt.Errorf("delete update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound(fmt.Sprintf("update not found (%d)", id))
	}
	return nil
}

package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/licserver/internal/apperr"
)

type Repository interface {
	GetAll(ctx context.Context) ([]Application, error)
	Get(ctx context.Context, id int64) (*Application, error)
	Create(ctx context.Context, tx *sqlx.Tx, a *Application) (int64, error)
	Update(ctx context.Context, tx *sqlx.Tx, a *Application) error
	Delete(ctx context.Context, tx *sqlx.Tx, id int64) error

	GetAreas(ctx context.Context) ([]Area, error)
	GetArea(ctx context.Context, id int64) (*Area, error)
	CreateArea(ctx context.Context, tx *sqlx.Tx, a *Area) (int64, error)
	UpdateArea(ctx context.Context, tx *sqlx.Tx, a *Area) error
	DeleteArea(ctx context.Context, tx *sqlx.Tx, id int64) error
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetAll(ctx context.Context) ([]Application, error) {
	var out []Application
	err := r.db.SelectContext(ctx, &out, getAllApplicationsSQL)
	if err != nil {
		return nil, fmt.Errorf("get all applications: %w", err)
	}
	return out, nil
}

func (r *repo) Get(ctx context.Context, id int64) (*Application, error) {
	var a Application
	err := r.db.GetContext(ctx, &a, getApplicationSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("application not found (%d)", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return &a, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, a *Application) (int64, error) {
	res, err := tx.ExecContext(ctx, createApplicationSQL,
		a.ApplicationName,
		a.AreaID,
		a.Kind,
		a.Slug,
	)
	if err != nil {
		return 0, fmt.Errorf("create application: %w", err)
	}
	return res.LastInsertId()
}

func (r *repo) Update(ctx context.Context, tx *sqlx.Tx, a *Application) error {
	res, err := tx.ExecContext(ctx, updateApplicationSQL,
		a.ApplicationName,
		a.AreaID,
		a.Kind,
		a.Slug,
		a.ApplicationID,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound(fmt.Sprintf("application not found (%d)", a.ApplicationID))
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, deleteApplicationSQL, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return nil
}

func (r *repo) GetAreas(ctx context.Context) ([]Area, error) {
	var out []Area
	err := r.db.SelectContext(ctx, &out, getAllAreasSQL)
	if err != nil {
		return nil, fmt.Errorf("get areas: %w", err)
	}
	return out, nil
}

func (r *repo) GetArea(ctx context.Context, id int64) (*Area, error) {
	var a Area
	err := r.db.GetContext(ctx, &a, getAreaSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("area not found (%d)", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get area: %w", err)
	}
	return &a, nil
}

func (r *repo) CreateArea(ctx context.Context, tx *sqlx.Tx, a *Area) (int64, error) {
	res, err := tx.ExecContext(ctx, createAreaSQL, a.AreaName, a.Internal)
	if err != nil {
		return 0, fmt.Errorf("create area: %w", err)
	}
	return res.LastInsertId()
}

func (r *repo) UpdateArea(ctx context.Context, tx *sqlx.Tx, a *Area) error {
	res, err := tx.ExecContext(ctx, updateAreaSQL, a.AreaName, a.Internal, a.AreaID)
	if err != nil {
		return fmt.Errorf("update area: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound(fmt.Sprintf("area not found (%d)", a.AreaID))
	}
	return nil
}

func (r *repo) DeleteArea(ctx context.Context, tx *sqlx.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, deleteAreaSQL, id)
	if err != nil {
		return fmt.Errorf("delete area: %w", err)
	}
	return nil
}

package module

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/licserver/internal/apperr"
)

type Repository interface {
	GetForApplication(ctx context.Context, applicationID int64) ([]Module, error)
	Get(ctx context.Context, id int64) (*Module, error)
	Create(ctx context.Context, tx *sqlx.Tx, m *Module) (int64, error)
	Delete(ctx context.Context, tx *sqlx.Tx, id int64) error

	GetForLicense(ctx context.Context, licenseID int64) ([]Module, error)
	LicenseApplication(ctx context.Context, licenseID int64) (int64, error)
	Enable(ctx context.Context, tx *sqlx.Tx, licenseID, moduleID int64) error
	Disable(ctx context.Context, tx *sqlx.Tx, licenseID, moduleID int64) error
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetForApplication(ctx context.Context, applicationID int64) ([]Module, error) {
	var out []Module
	err := r.db.SelectContext(ctx, &out, getModulesForApplicationSQL, applicationID)
	if err != nil {
		return nil, fmt.Errorf("get modules for application: %w", err)
	}
	return out, nil
}

func (r *repo) Get(ctx context.Context, id int64) (*Module, error) {
	var m Module
	err := r.db.GetContext(ctx, &m, getModuleSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("module not found (%d)", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get module: %w", err)
	}
	return &m, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, m *Module) (int64, error) {
	res, err := tx.ExecContext(ctx, createModuleSQL, m.ApplicationID, m.ModuleName)
	if err != nil {
		return 0, fmt.Errorf("create module: %w", err)
	}
	return res.LastInsertId()
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, deleteModuleSQL, id)
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	return nil
}

func (r *repo) GetForLicense(ctx context.Context, licenseID int64) ([]Module, error) {
	var out []Module
	err := r.db.SelectContext(ctx, &out, getModulesForLicenseSQL, licenseID)
	if err != nil {
		return nil, fmt.Errorf("get modules for license: %w", err)
	}
	return out, nil
}

func (r *repo) LicenseApplication(ctx context.Context, licenseID int64) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, getLicenseApplicationSQL, licenseID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound(fmt.Sprintf("license not found (%d)", licenseID))
	}
	if err != nil {
		return 0, fmt.Errorf("get license application: %w", err)
	}
	return id, nil
}

func (r *repo) Enable(ctx context.Context, tx *sqlx.Tx, licenseID, moduleID int64) error {
	_, err := tx.ExecContext(ctx, enableModuleSQL, licenseID, moduleID)
	if err != nil {
		return fmt.Errorf("enable module: %w", err)
	}
	return nil
}

func (r *repo) Disable(ctx context.Context, tx *sqlx.Tx, licenseID, moduleID int64) error {
	_, err := tx.ExecContext(ctx, disableModuleSQL, licenseID, moduleID)
	if err != nil {
		return fmt.Errorf("disable module: %w", err)
	}
	return nil
}

package license

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/licserver/internal/apperr"
)

type Repository interface {
	GetAll(ctx context.Context) ([]License, error)
	GetForClient(ctx context.Context, clientID int64) ([]License, error)
	Get(ctx context.Context, id int64) (*License, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*License, error)
	GetEntitled(ctx context.Context, clientID, applicationID int64) (*License, error)

	GetDetail(ctx context.Context, id int64) (*Detail, error)
	GetClientUpdater(ctx context.Context, clientID int64) (*Detail, error)
	GetCompanyRoster(ctx context.Context) ([]Detail, error)
	GetClientRoster(ctx context.Context, clientID int64) ([]Detail, error)
	CountModules(ctx context.Context, id int64) (int, error)

	Create(ctx context.Context, tx *sqlx.Tx, lic *License) (int64, error)
	Update(ctx context.Context, tx *sqlx.Tx, lic *License) error
	SetBlocked(ctx context.Context, tx *sqlx.Tx, id int64, blocked bool, reason string, at *time.Time) error
	SetInstalledVersion(ctx context.Context, tx *sqlx.Tx, id int64, version string) error
	Delete(ctx context.Context, tx *sqlx.Tx, id int64) error
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func notFound(id int64) error {
	return apperr.NotFound(fmt.Sprintf("license not found (%d)", id))
}

func (r *repo) GetAll(ctx context.Context) ([]License, error) {
	var out []License
	err := r.db.SelectContext(ctx, &out, getAllLicensesSQL)
	if err != nil {
		return nil, fmt.Errorf("get all licenses: %w", err)
	}
	return out, nil
}

func (r *repo) GetForClient(ctx context.Context, clientID int64) ([]License, error) {
	var out []License
	err := r.db.SelectContext(ctx, &out, getLicensesForClientSQL, clientID)
	if err != nil {
		return nil, fmt.Errorf("get licenses for client: %w", err)
	}
	return out, nil
}

func (r *repo) Get(ctx context.Context, id int64) (*License, error) {
	var lic License
	err := r.db.GetContext(ctx, &lic, getLicenseSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get license: %w", err)
	}
	return &lic, nil
}

func (r *repo) GetByAPIKey(ctx context.Context, apiKey string) (*License, error) {
	var lic License
	err := r.db.GetContext(ctx, &lic, getLicenseByAPIKeySQL, apiKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("license not found for api key")
	}
	if err != nil {
		return nil, fmt.Errorf("get license by api key: %w", err)
	}
	return &lic, nil
}

func (r *repo) GetEntitled(ctx context.Context, clientID, applicationID int64) (*License, error) {
	var lic License
	err := r.db.GetContext(ctx, &lic, getEntitledLicenseSQL, clientID, applicationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.CodeUnentitled,
			fmt.Sprintf("client %d holds no active license for application %d", clientID, applicationID))
	}
	if err != nil {
		return nil, fmt.Errorf("get entitled license: %w", err)
	}
	return &lic, nil
}

func (r *repo) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	var d Detail
	err := r.db.GetContext(ctx, &d, getDetailSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get license detail: %w", err)
	}
	return &d, nil
}

func (r *repo) GetClientUpdater(ctx context.Context, clientID int64) (*Detail, error) {
	var d Detail
	err := r.db.GetContext(ctx, &d, getClientUpdaterSQL, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("client %d has no updater license", clientID))
	}
	if err != nil {
		return nil, fmt.Errorf("get client updater: %w", err)
	}
	return &d, nil
}

func (r *repo) GetCompanyRoster(ctx context.Context) ([]Detail, error) {
	var out []Detail
	err := r.db.SelectContext(ctx, &out, getCompanyRosterSQL)
	if err != nil {
		return nil, fmt.Errorf("get company roster: %w", err)
	}
	return out, nil
}

func (r *repo) GetClientRoster(ctx context.Context, clientID int64) ([]Detail, error) {
	var out []Detail
	err := r.db.SelectContext(ctx, &out, getClientRosterSQL, clientID)
	if err != nil {
		return nil, fmt.Errorf("get client roster: %w", err)
	}
	return out, nil
}

func (r *repo) CountModules(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, countModulesSQL, id)
	if err != nil {
		return 0, fmt.Errorf("count license modules: %w", err)
	}
	return n, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, lic *License) (int64, error) {
	res, err := tx.ExecContext(ctx, createLicenseSQL,
		lic.ClientID,
		lic.ApplicationID,
		lic.APIKey,
		lic.DisplayName,
		lic.Active,
		lic.UseOwnUpdater,
		lic.FrontendPath,
		lic.APIPath,
		lic.APIPoolName,
		lic.FrontendPoolName,
		lic.ManagementURL,
		lic.DatabaseName,
	)
	if err != nil {
		return 0, fmt.Errorf("create license: %w", err)
	}
	return res.LastInsertId()
}

func (r *repo) Update(ctx context.Context, tx *sqlx.Tx, lic *License) error {
	res, err := tx.ExecContext(ctx, updateLicenseSQL,
		lic.DisplayName,
		lic.InstalledVersion,
		lic.Active,
		lic.UseOwnUpdater,
		lic.FrontendPath,
		lic.APIPath,
		lic.APIPoolName,
		lic.FrontendPoolName,
		lic.ManagementURL,
		lic.DatabaseName,
		lic.LicenseID,
	)
	if err != nil {
		return fmt.Errorf("update license: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(lic.LicenseID)
	}
	return nil
}

func (r *repo) SetBlocked(ctx context.Context, tx *sqlx.Tx, id int64, blocked bool, reason string, at *time.Time) error {
	res, err := tx.ExecContext(ctx, setBlockedSQL, blocked, !blocked, reason, at, id)
	if err != nil {
		return fmt.Errorf("set license blocked: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(id)
	}
	return nil
}

func (r *repo) SetInstalledVersion(ctx context.Context, tx *sqlx.Tx, id int64, version string) error {
	res, err := tx.ExecContext(ctx, setInstalledVersionSQL, version, id)
	if err != nil {
		return fmt.Errorf("set installed version: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(id)
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, deleteLicenseSQL, id)
	if err != nil {
		return fmt.Errorf("delete license: %w", err)
	}
	return nil
}

package module

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/sqlite"
)

type Service struct {
	repo Repository
	db   *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		db:   db,
		repo: New(db),
	}
}

func (s *Service) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Service) GetForApplication(ctx context.Context, applicationID int64) ([]Module, error) {
	return s.repo.GetForApplication(ctx, applicationID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Module, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, m *Module) (*Module, error) {
	m.ModuleName = strings.TrimSpace(m.ModuleName)
	if m.ModuleName == "" {
		return nil, apperr.Validation("module name is required")
	}

	var id int64
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.repo.Create(ctx, tx, m)
		return err
	})
	switch {
	case sqlite.IsUniqueConstraintError(err):
		return nil, apperr.Wrap(err, apperr.CodeConflict, "module already exists for this application")
	case sqlite.IsForeignKeyError(err):
		return nil, apperr.Wrap(err, apperr.CodeNotFound, "application not found")
	case err != nil:
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Delete removes a module and every license association to it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *Service) GetForLicense(ctx context.Context, licenseID int64) ([]Module, error) {
	return s.repo.GetForLicense(ctx, licenseID)
}

// Enable associates a module with a license of the same application.
func (s *Service) Enable(ctx context.Context, licenseID, moduleID int64) error {
	appID, err := s.repo.LicenseApplication(ctx, licenseID)
	if err != nil {
		return err
	}
	m, err := s.repo.Get(ctx, moduleID)
	if err != nil {
		return err
	}
	if m.ApplicationID != appID {
		return apperr.Validation(fmt.Sprintf("module %d does not belong to the license's application", moduleID))
	}

	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Enable(ctx, tx, licenseID, moduleID)
	})
}

func (s *Service) Disable(ctx context.Context, licenseID, moduleID int64) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Disable(ctx, tx, licenseID, moduleID)
	})
}

package application

import (
	"context"
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

func (s *Service) GetAll(ctx context.Context) ([]Application, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Application, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, a *Application) (*Application, error) {
	if err := s.prepare(a); err != nil {
		return nil, err
	}

	var id int64
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.repo.Create(ctx, tx, a)
		return err
	})
	if err != nil {
		return nil, classify(err, "application name already exists")
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, a *Application) error {
	if err := s.prepare(a); err != nil {
		return err
	}
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Update(ctx, tx, a)
	})
	return classify(err, "application name already exists")
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *Service) prepare(a *Application) error {
	a.ApplicationName = strings.TrimSpace(a.ApplicationName)
	if err := a.Validate(); err != nil {
		return apperr.Wrap(err, apperr.CodeValidation, err.Error())
	}
	a.Slug = Slugify(a.Slug, '-')
	return nil
}

func (s *Service) GetAreas(ctx context.Context) ([]Area, error) {
	return s.repo.GetAreas(ctx)
}

func (s *Service) GetArea(ctx context.Context, id int64) (*Area, error) {
	return s.repo.GetArea(ctx, id)
}

func (s *Service) CreateArea(ctx context.Context, a *Area) (*Area, error) {
	a.AreaName = strings.TrimSpace(a.AreaName)
	if a.AreaName == "" {
		return nil, apperr.Validation("area name is required")
	}

	var id int64
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.repo.CreateArea(ctx, tx, a)
		return err
	})
	if err != nil {
		return nil, classify(err, "area name already exists")
	}
	return s.repo.GetArea(ctx, id)
}

func (s *Service) UpdateArea(ctx context.Context, a *Area) error {
	a.AreaName = strings.TrimSpace(a.AreaName)
	if a.AreaName == "" {
		return apperr.Validation("area name is required")
	}
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.UpdateArea(ctx, tx, a)
	})
	return classify(err, "area name already exists")
}

// DeleteArea fails with a conflict while applications still reference the area.
func (s *Service) DeleteArea(ctx context.Context, id int64) error {
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.DeleteArea(ctx, tx, id)
	})
	if sqlite.IsForeignKeyError(err) {
		return apperr.Wrap(err, apperr.CodeConflict, "area is still used by applications")
	}
	return err
}

func classify(err error, msg string) error {
	switch {
	case sqlite.IsUniqueConstraintError(err):
		return apperr.Wrap(err, apperr.CodeConflict, msg)
	case sqlite.IsForeignKeyError(err):
		return apperr.Wrap(err, apperr.CodeNotFound, "referenced area not found")
	}
	return err
}

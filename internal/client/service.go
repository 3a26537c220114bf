package client

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

func (s *Service) GetAll(ctx context.Context) ([]Client, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, c *Client) (*Client, error) {
	c.ClientName = strings.TrimSpace(c.ClientName)
	if c.ClientName == "" {
		return nil, apperr.Validation("client name is required")
	}

	var id int64
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.repo.Create(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *Client) error {
	c.ClientName = strings.TrimSpace(c.ClientName)
	if c.ClientName == "" {
		return apperr.Validation("client name is required")
	}
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Update(ctx, tx, c)
	})
	return classify(err)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func classify(err error) error {
	if sqlite.IsUniqueConstraintError(err) {
		return apperr.Wrap(err, apperr.CodeConflict, "client name already exists")
	}
	return err
}

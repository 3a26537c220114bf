package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/licserver/internal/apperr"
)

type Repository interface {
	GetAll(ctx context.Context) ([]Client, error)
	Get(ctx context.Context, id int64) (*Client, error)
	Create(ctx context.Context, tx *sqlx.Tx, c *Client) (int64, error)
	Update(ctx context.Context, tx *sqlx.Tx, c *Client) error
	Delete(ctx context.Context, tx *sqlx.Tx, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetAll(ctx context.Context) ([]Client, error) {
	var out []Client
	err := r.db.SelectContext(ctx, &out, getAllClientsSQL)
	if err != nil {
		return nil, fmt.Errorf("get all clients: %w", err)
	}
	return out, nil
}

func (r *repo) Get(ctx context.Context, id int64) (*Client, error) {
	var c Client
	err := r.db.GetContext(ctx, &c, getClientSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("client not found (%d)", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, c *Client) (int64, error) {
	res, err := tx.ExecContext(ctx, createClientSQL,
		c.ClientName,
		c.ContactName,
		c.Email,
		c.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}
	return res.LastInsertId()
}

func (r *repo) Update(ctx context.Context, tx *sqlx.Tx, c *Client) error {
	res, err := tx.ExecContext(ctx, updateClientSQL,
		c.ClientName,
		c.ContactName,
		c.Email,
		c.Notes,
		c.ClientID,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound(fmt.Sprintf("client not found (%d)", c.ClientID))
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, deleteClientSQL, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

func (r *repo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, clientExistsSQL, id)
	if err != nil {
		return false, fmt.Errorf("client exists: %w", err)
	}
	return exists, nil
}

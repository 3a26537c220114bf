package license

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/sqlite"
	"winsbygroup.com/licserver/internal/vercmp"
)

type Service struct {
	repo Repository
	db   *sqlx.DB

	// licenses the server itself depends on; they can never be blocked
	protected map[int64]bool
	now       func() time.Time
}

type Option func(*Service)

// WithProtected marks licenses (typically the company Manager) that must stay unblocked.
func WithProtected(ids ...int64) Option {
	return func(s *Service) {
		for _, id := range ids {
			if id != 0 {
				s.protected[id] = true
			}
		}
	}
}

// WithClock overrides the time source used for block dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *sqlx.DB, opts ...Option) *Service {
	s := &Service{
		db:        db,
		repo:      New(db),
		protected: map[int64]bool{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
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

// Repository exposes the read model to collaborators that need joined views.
func (s *Service) Repository() Repository {
	return s.repo
}

func (s *Service) GetAll(ctx context.Context) ([]License, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) GetForClient(ctx context.Context, clientID int64) ([]License, error) {
	return s.repo.GetForClient(ctx, clientID)
}

func (s *Service) Get(ctx context.Context, id int64) (*License, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	return s.repo.GetDetail(ctx, id)
}

func (s *Service) GetByAPIKey(ctx context.Context, apiKey string) (*License, error) {
	return s.repo.GetByAPIKey(ctx, strings.TrimSpace(apiKey))
}

// Create stores a new license. An API key is generated when none is given.
func (s *Service) Create(ctx context.Context, lic *License) (*License, error) {
	if err := lic.Validate(); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeValidation, err.Error())
	}
	if strings.TrimSpace(lic.APIKey) == "" {
		lic.APIKey = uuid.NewString()
	}

	var id int64
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.repo.Create(ctx, tx, lic)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	return s.repo.Get(ctx, id)
}

// Update changes the editable fields. Block state, API key and installed
// version have their own operations.
func (s *Service) Update(ctx context.Context, lic *License) error {
	current, err := s.repo.Get(ctx, lic.LicenseID)
	if err != nil {
		return err
	}
	lic.Blocked = current.Blocked
	lic.InstalledVersion = current.InstalledVersion
	if err := lic.Validate(); err != nil {
		return apperr.Wrap(err, apperr.CodeValidation, err.Error())
	}

	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Update(ctx, tx, lic)
	})
	return classify(err)
}

// Delete removes an inactive license without module associations.
func (s *Service) Delete(ctx context.Context, id int64) error {
	lic, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if lic.Active {
		return apperr.Conflict(fmt.Sprintf("license %d is active; deactivate or block it before deleting", id))
	}
	n, err := s.repo.CountModules(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict(fmt.Sprintf("license %d still has %d module association(s)", id, n))
	}

	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Delete(ctx, tx, id)
	})
}

// ToggleBlockStatus blocks (deactivating) or unblocks (reactivating) a license.
func (s *Service) ToggleBlockStatus(ctx context.Context, id int64, block bool, reason string) (*License, error) {
	if block && s.protected[id] {
		return nil, apperr.Conflict(fmt.Sprintf("license %d is in use by this server and cannot be blocked", id))
	}

	var at *time.Time
	reason = strings.TrimSpace(reason)
	if block {
		now := s.now().UTC()
		at = &now
	} else {
		reason = ""
	}

	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.SetBlocked(ctx, tx, id, block, reason, at)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// UpdateInstalledVersion records the version a deployment reports after applying updates.
func (s *Service) UpdateInstalledVersion(ctx context.Context, id int64, version string) error {
	version = strings.TrimSpace(version)
	if !vercmp.IsValid(version) {
		return apperr.Wrap(ErrInvalidVersion, apperr.CodeValidation, ErrInvalidVersion.Error())
	}
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.SetInstalledVersion(ctx, tx, id, version)
	})
}

func classify(err error) error {
	switch {
	case sqlite.IsUniqueConstraintError(err):
		return apperr.Wrap(err, apperr.CodeConflict, "api key already in use")
	case sqlite.IsForeignKeyError(err):
		return apperr.Wrap(err, apperr.CodeNotFound, "client or application not found")
	}
	return err
}

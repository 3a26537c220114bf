package update

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/pkgstore"
	"winsbygroup.com/licserver/internal/sqlite"
	"winsbygroup.com/licserver/internal/vercmp"
)

type Service struct {
	repo   Repository
	db     *sqlx.DB
	store  pkgstore.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates the catalog service. store may be nil, in which case
// deleting an update leaves its files alone.
func NewService(db *sqlx.DB, store pkgstore.Store, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		repo:   New(db),
		store:  store,
		logger: logger.With().Str("component", "updates").Logger(),
		now:    time.Now,
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

func (s *Service) Get(ctx context.Context, id int64) (*Update, error) {
	return s.repo.Get(ctx, id)
}

// ActiveForApplication feeds the distribution engine.
func (s *Service) ActiveForApplication(ctx context.Context, applicationID int64) ([]Update, error) {
	return s.repo.ActiveForApplication(ctx, applicationID)
}

// Query filters the catalog in SQL, then orders and pages it here so that
// version ordering follows vercmp rather than string collation.
func (s *Service) Query(ctx context.Context, q Query) (*Page, error) {
	q = q.normalized()
	if _, err := ParseSort(string(q.Sort)); err != nil {
		return nil, err
	}
	all, err := s.repo.Find(ctx, q.ApplicationID, q.Keyword)
	if err != nil {
		return nil, err
	}
	p := q.apply(all)
	return &p, nil
}

// prepare applies the write rules shared by create and update.
func (s *Service) prepare(u *Update) error {
	u.Version = strings.TrimSpace(u.Version)
	if err := u.Validate(); err != nil {
		return apperr.Wrap(err, apperr.CodeValidation, err.Error())
	}
	u.VersionKey = vercmp.Canonical(u.Version)
	// every published update must be applied; callers cannot opt out
	u.Mandatory = true
	if u.ReleaseDate.IsZero() {
		u.ReleaseDate = s.now().UTC()
	}
	u.ClientIDs = dedupe(u.ClientIDs)
	return nil
}

func (s *Service) Create(ctx context.Context, u *Update) (*Update, error) {
	if err := s.prepare(u); err != nil {
		return nil, err
	}

	var id int64
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.repo.Create(ctx, tx, u)
		if err != nil {
			return err
		}
		return s.repo.SetClients(ctx, tx, id, u.ClientIDs)
	})
	if err != nil {
		return nil, classify(err, u)
	}

	s.logger.Info().
		Int64("update_id", id).
		Int64("application_id", u.ApplicationID).
		Str("version", u.Version).
		Int("targeted_clients", len(u.ClientIDs)).
		Msg("update created")

	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, u *Update) (*Update, error) {
	if err := s.prepare(u); err != nil {
		return nil, err
	}

	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.Update(ctx, tx, u); err != nil {
			return err
		}
		return s.repo.SetClients(ctx, tx, u.UpdateID, u.ClientIDs)
	})
	if err != nil {
		return nil, classify(err, u)
	}
	return s.repo.Get(ctx, u.UpdateID)
}

// Delete removes the update, its targeting list and its stored files.
func (s *Service) Delete(ctx context.Context, id int64) error {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	if s.store == nil {
		return nil
	}
	removed, err := pkgstore.DeleteAll(ctx, s.store, u.Files()...)
	if err != nil {
		// the row is gone; leftover files are an operator cleanup task
		s.logger.Warn().Err(err).Int64("update_id", id).Msg("update deleted but package files remain")
		return nil
	}
	s.logger.Info().
		Int64("update_id", id).
		Strs("files", removed).
		Msg("update deleted")
	return nil
}

// BulkFailure describes one id a bulk delete could not remove.
type BulkFailure struct {
	UpdateID int64  `json:"updateId"`
	Error    string `json:"error"`
}

// BulkResult reports which ids were deleted and which failed.
type BulkResult struct {
	Deleted []int64       `json:"deleted"`
	Failed  []BulkFailure `json:"failed"`
}

// DeleteMany deletes each id independently; a failure does not stop the batch.
func (s *Service) DeleteMany(ctx context.Context, ids []int64) BulkResult {
	res := BulkResult{Deleted: []int64{}, Failed: []BulkFailure{}}
	for _, id := range dedupe(ids) {
		if err := s.Delete(ctx, id); err != nil {
			res.Failed = append(res.Failed, BulkFailure{UpdateID: id, Error: err.Error()})
			continue
		}
		res.Deleted = append(res.Deleted, id)
	}
	return res
}

func classify(err error, u *Update) error {
	switch {
	case sqlite.IsUniqueConstraintError(err):
		return apperr.Wrap(err, apperr.CodeConflict,
			fmt.Sprintf("version %s already exists for application %d", u.Version, u.ApplicationID))
	case sqlite.IsForeignKeyError(err):
		return apperr.Wrap(err, apperr.CodeNotFound, "application or targeted client not found")
	}
	return err
}

func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != 0 && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

package distribution

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/metrics"
	"winsbygroup.com/licserver/internal/update"
)

// CheckRequest asks which updates a deployment must install. ClientID is
// optional; without it the legacy catalog-wide path is used.
type CheckRequest struct {
	ApplicationID    int64
	InstalledVersion string
	ClientID         *int64
}

// UpdateDTO is the part of an update an agent may see.
type UpdateDTO struct {
	UpdateID         int64     `json:"UpdateId"`
	ApplicationID    int64     `json:"ApplicationId"`
	Version          string    `json:"Version"`
	Description      string    `json:"Description"`
	Mandatory        bool      `json:"Mandatory"`
	ReleaseDate      time.Time `json:"ReleaseDate"`
	PackageType      int       `json:"PackageType"`
	FileName         string    `json:"FileName,omitempty"`
	FileSize         int64     `json:"FileSize,omitempty"`
	FileHash         string    `json:"FileHash,omitempty"`
	APIFileName      string    `json:"ApiFileName,omitempty"`
	APIFileSize      int64     `json:"ApiFileSize,omitempty"`
	APIFileHash      string    `json:"ApiFileHash,omitempty"`
	FrontendFileName string    `json:"FrontendFileName,omitempty"`
	FrontendFileSize int64     `json:"FrontendFileSize,omitempty"`
	FrontendFileHash string    `json:"FrontendFileHash,omitempty"`
}

// CheckResult is always well formed. Success is false only for internal
// failures; an unentitled client gets a successful empty result.
type CheckResult struct {
	Success         bool        `json:"Success"`
	Message         string      `json:"Message,omitempty"`
	HasUpdate       bool        `json:"HasUpdate"`
	Latest          *UpdateDTO  `json:"LatestUpdate"`
	RequiredUpdates []UpdateDTO `json:"RequiredUpdates"`
	Mandatory       bool        `json:"Mandatory"`
}

type Engine struct {
	gate    *Gate
	catalog *Catalog
	metrics *metrics.Metrics
	logger  zerolog.Logger

	resolve func([]update.Update, *int64) Resolution
}

func NewEngine(licenses LicenseFinder, updates UpdateSource, m *metrics.Metrics, logger zerolog.Logger) *Engine {
	return &Engine{
		gate:    NewGate(licenses),
		catalog: NewCatalog(updates),
		metrics: m,
		logger:  logger.With().Str("component", "distribution").Logger(),
		resolve: Resolve,
	}
}

// CheckForUpdate answers an agent's poll. It never returns an error and
// recovers from panics so the caller always has a result to serialize.
func (e *Engine) CheckForUpdate(ctx context.Context, req CheckRequest) (res CheckResult) {
	start := time.Now()
	outcome := metrics.OutcomeError

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Interface("panic", r).
				Int64("application_id", req.ApplicationID).
				Msg("update check panicked")
			res = failure("internal error while checking for updates")
			outcome = metrics.OutcomeError
		}
		e.metrics.ObserveUpdateCheck(outcome, start)
	}()

	if req.ApplicationID <= 0 {
		return failure("application id is required")
	}

	log := e.logger.With().
		Int64("application_id", req.ApplicationID).
		Str("installed_version", req.InstalledVersion).
		Logger()

	if req.ClientID != nil {
		log = log.With().Int64("client_id", *req.ClientID).Logger()
		if _, err := e.gate.Check(ctx, *req.ClientID, req.ApplicationID); err != nil {
			if apperr.HasCode(err, apperr.CodeUnentitled) {
				log.Debug().Msg("client not entitled; answering with no updates")
				outcome = metrics.OutcomeUnentitled
				return empty()
			}
			log.Error().Err(err).Msg("entitlement check failed")
			return failure(fmt.Sprintf("entitlement check failed: %v", err))
		}
	}

	candidates, err := e.catalog.Candidates(ctx, req.ApplicationID, req.InstalledVersion)
	if err != nil {
		log.Error().Err(err).Msg("catalog lookup failed")
		return failure(fmt.Sprintf("catalog lookup failed: %v", err))
	}

	resolution := e.resolve(candidates, req.ClientID)
	required := publishable(resolution.Required)

	res = empty()
	if len(required) > 0 {
		res.HasUpdate = true
		res.RequiredUpdates = required
		res.Latest = &required[len(required)-1]
		res.Mandatory = resolution.AnyMandatory
		outcome = metrics.OutcomeUpdate
	} else {
		outcome = metrics.OutcomeNone
	}

	log.Debug().
		Int("candidates", len(candidates)).
		Int("required", len(required)).
		Msg("update check resolved")
	return res
}

// publishable maps the resolution to DTOs, dropping updates that were
// deactivated after being resolved.
func publishable(required []update.Update) []UpdateDTO {
	out := make([]UpdateDTO, 0, len(required))
	for _, u := range required {
		if !u.Active {
			continue
		}
		out = append(out, toDTO(u))
	}
	return out
}

func toDTO(u update.Update) UpdateDTO {
	return UpdateDTO{
		UpdateID:         u.UpdateID,
		ApplicationID:    u.ApplicationID,
		Version:          u.Version,
		Description:      u.Description,
		Mandatory:        u.Mandatory,
		ReleaseDate:      u.ReleaseDate,
		PackageType:      int(u.PackageType),
		FileName:         u.FileName,
		FileSize:         u.FileSize,
		FileHash:         u.FileHash,
		APIFileName:      u.APIFileName,
		APIFileSize:      u.APIFileSize,
		APIFileHash:      u.APIFileHash,
		FrontendFileName: u.FrontendFileName,
		FrontendFileSize: u.FrontendFileSize,
		FrontendFileHash: u.FrontendFileHash,
	}
}

func empty() CheckResult {
	return CheckResult{Success: true, RequiredUpdates: []UpdateDTO{}}
}

func failure(msg string) CheckResult {
	return CheckResult{Success: false, Message: msg, RequiredUpdates: []UpdateDTO{}}
}

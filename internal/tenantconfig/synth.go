package tenantconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"winsbygroup.com/licserver/internal/application"
	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/license"
	"winsbygroup.com/licserver/internal/metrics"
	"winsbygroup.com/licserver/internal/module"
)

// Secrets embedded in synthesized documents. They come from server
// configuration and are never compiled in.
type Secrets struct {
	JWTKey           string
	EncryptionKey    string
	UpdaterSharedKey string
}

// Settings are the server-wide inputs of every document.
type Settings struct {
	LogLevel                 LogLevel
	AllowedIPs               []string
	BackupRetention          int
	CleanBeforeCopy          bool
	CheckUpdatesPath         string
	AllowedHosts             string
	ConnectionStringTemplate string
	JWTIssuer                string
	Secrets                  Secrets
}

// ModuleSource lists the modules enabled for a license.
type ModuleSource interface {
	GetForLicense(ctx context.Context, licenseID int64) ([]module.Module, error)
}

type Synthesizer struct {
	resolver *Resolver
	store    Store
	modules  ModuleSource
	settings Settings
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewSynthesizer(resolver *Resolver, store Store, modules ModuleSource, settings Settings, m *metrics.Metrics, logger zerolog.Logger) *Synthesizer {
	if len(settings.AllowedIPs) == 0 {
		settings.AllowedIPs = []string{"127.0.0.1", "::1"}
	}
	s := &Synthesizer{
		resolver: resolver,
		store:    store,
		modules:  modules,
		settings: settings,
		metrics:  m,
		logger:   logger.With().Str("component", "tenantconfig").Logger(),
	}
	s.warnEmptySecrets()
	return s
}

func (s *Synthesizer) warnEmptySecrets() {
	for name, v := range map[string]string{
		"jwt_key":            s.settings.Secrets.JWTKey,
		"encryption_key":     s.settings.Secrets.EncryptionKey,
		"updater_shared_key": s.settings.Secrets.UpdaterSharedKey,
	} {
		if v == "" {
			s.logger.Warn().Str("secret", name).Msg("secret is not configured; generated configs will carry an empty value")
		}
	}
}

// UpdaterConfig builds the document for the updater serving all given
// licenses. Every license must resolve to the same updater.
func (s *Synthesizer) UpdaterConfig(ctx context.Context, licenseIDs []int64) (doc *UpdaterConfig, err error) {
	defer func() { s.metrics.IncrementConfig("updater", err) }()

	if len(licenseIDs) == 0 {
		return nil, apperr.Validation("at least one license id is required")
	}

	var first *Topology
	var roster []license.Detail
	seen := map[int64]bool{}

	for _, id := range licenseIDs {
		t, err := s.resolver.Resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = t
		} else if t.Updater.LicenseID != first.Updater.LicenseID {
			return nil, apperr.Conflict(fmt.Sprintf(
				"license %d is served by updater license %d, license %d by updater license %d",
				licenseIDs[0], first.Updater.LicenseID, id, t.Updater.LicenseID))
		}
		for _, d := range t.Roster {
			if !seen[d.LicenseID] {
				seen[d.LicenseID] = true
				roster = append(roster, d)
			}
		}
	}

	doc = &UpdaterConfig{
		Logging:  Logging{LogLevel: s.settings.LogLevel},
		Updater:  s.updaterSection(first),
		Security: s.security(),
		Clients:  make([]ClientEntry, 0, len(roster)),
	}
	for i := range roster {
		doc.Clients = append(doc.Clients, clientEntry(&roster[i]))
	}

	s.logger.Debug().
		Int64("updater_license_id", first.Updater.LicenseID).
		Str("scope", first.Scope.String()).
		Int("clients", len(doc.Clients)).
		Msg("updater config synthesized")
	return doc, nil
}

// FrontendConfig builds the document a deployed frontend loads at startup.
func (s *Synthesizer) FrontendConfig(ctx context.Context, licenseID int64) (doc *FrontendConfig, err error) {
	defer func() { s.metrics.IncrementConfig("frontend", err) }()

	lic, err := s.store.GetDetail(ctx, licenseID)
	if err != nil {
		return nil, err
	}
	if err := requireEntitled(lic); err != nil {
		return nil, err
	}
	mgmt, err := s.resolver.ManagementBaseURL(ctx)
	if err != nil {
		return nil, err
	}

	apiURL, frontendURL := endpoints(lic, mgmt)
	return &FrontendConfig{
		APIURL:          apiURL,
		FrontendURL:     frontendURL,
		ManagementURL:   mgmt,
		ApplicationName: lic.ApplicationName,
		LicenseID:       lic.LicenseID,
		Version:         lic.InstalledVersion,
	}, nil
}

// APIConfig builds the appsettings document of a deployed API.
func (s *Synthesizer) APIConfig(ctx context.Context, licenseID int64) (doc *APIConfig, err error) {
	defer func() { s.metrics.IncrementConfig("api", err) }()

	t, err := s.resolver.Resolve(ctx, licenseID)
	if err != nil {
		return nil, err
	}
	lic := t.License
	if err := requireEntitled(lic); err != nil {
		return nil, err
	}

	mods, err := s.modules.GetForLicense(ctx, licenseID)
	if err != nil {
		return nil, err
	}

	apiURL, _ := endpoints(lic, t.ManagementBaseURL)
	dbName := DatabaseName(lic)

	return &APIConfig{
		Logging:      Logging{LogLevel: s.settings.LogLevel},
		AllowedHosts: s.settings.AllowedHosts,
		ConnectionStrings: ConnectionStrings{
			Default: strings.ReplaceAll(s.settings.ConnectionStringTemplate, "{database}", dbName),
		},
		JWT: JWT{
			Key:      s.settings.Secrets.JWTKey,
			Issuer:   s.settings.JWTIssuer,
			Audience: apiURL,
		},
		Encryption: Encryption{Key: s.settings.Secrets.EncryptionKey},
		Updater:    s.updaterSection(t),
		Application: ApplicationSection{
			LicenseID:       lic.LicenseID,
			ApplicationID:   lic.ApplicationID,
			ApplicationName: lic.ApplicationName,
			APIKey:          lic.APIKey,
			PublicURL:       apiURL,
			Modules:         module.Names(mods),
		},
	}, nil
}

// Authorize reports whether callerID may read the documents of licenseIDs.
func (s *Synthesizer) Authorize(ctx context.Context, callerID int64, licenseIDs ...int64) error {
	return s.resolver.Authorize(ctx, callerID, licenseIDs...)
}

// requireEntitled refuses deployment documents for blocked or inactive licenses.
func requireEntitled(lic *license.Detail) error {
	if lic.Blocked {
		return apperr.Conflict(fmt.Sprintf("license %d is blocked", lic.LicenseID))
	}
	if !lic.Active {
		return apperr.Conflict(fmt.Sprintf("license %d is not active", lic.LicenseID))
	}
	return nil
}

func (s *Synthesizer) updaterSection(t *Topology) UpdaterSection {
	return UpdaterSection{
		ManagementURL:    t.ManagementBaseURL,
		CheckUpdatesURL:  joinURL(t.ManagementBaseURL, s.settings.CheckUpdatesPath),
		APIKey:           t.Updater.APIKey,
		SharedKey:        s.settings.Secrets.UpdaterSharedKey,
		UpdaterLicenseID: t.Updater.LicenseID,
	}
}

func (s *Synthesizer) security() Security {
	ips := make([]string, len(s.settings.AllowedIPs))
	copy(ips, s.settings.AllowedIPs)
	return Security{
		AllowedIPs:      ips,
		BackupRetention: s.settings.BackupRetention,
		CleanBeforeCopy: s.settings.CleanBeforeCopy,
	}
}

func clientEntry(d *license.Detail) ClientEntry {
	e := ClientEntry{
		LicenseID:        d.LicenseID,
		ClientName:       d.ClientName,
		ApplicationID:    d.ApplicationID,
		ApplicationName:  d.ApplicationName,
		InstalledVersion: d.InstalledVersion,
		FrontendPath:     d.FrontendPath,
		APIPath:          d.APIPath,
	}
	if d.APIPoolName != "" || d.FrontendPoolName != "" {
		e.IIS = &IIS{APIPool: d.APIPoolName, FrontendPool: d.FrontendPoolName}
	}
	return e
}

// endpoints returns the externally visible API and frontend URLs of a
// license. The license's own management URL wins over the company one.
func endpoints(lic *license.Detail, companyBase string) (apiURL, frontendURL string) {
	base := lic.ManagementURL
	if base == "" {
		base = companyBase
	}

	switch lic.ApplicationKind {
	case application.KindManager:
		return joinURL(base, "api"), joinURL(base)
	case application.KindUpdater:
		return joinURL(base, "updater"), joinURL(base, "updater")
	default:
		seg := lic.Application().PathSegment()
		return joinURL(base, seg, "api"), joinURL(base, seg)
	}
}

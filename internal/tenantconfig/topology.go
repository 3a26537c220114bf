// Package tenantconfig resolves which updater serves a license and builds
// the configuration documents deployed agents download.
package tenantconfig

import (
	"context"
	"fmt"

	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/license"
)

// Store is the license read model the resolver needs.
type Store interface {
	GetDetail(ctx context.Context, id int64) (*license.Detail, error)
	GetClientUpdater(ctx context.Context, clientID int64) (*license.Detail, error)
	GetCompanyRoster(ctx context.Context) ([]license.Detail, error)
	GetClientRoster(ctx context.Context, clientID int64) ([]license.Detail, error)
}

// Company identifies the two well-known licenses the company runs itself.
type Company struct {
	ManagerLicenseID int64
	UpdaterLicenseID int64
}

// Scope says which roster an updater configuration covers.
type Scope int

const (
	ScopeCompanyUpdater Scope = iota
	ScopeClientUpdater
	ScopeSingleLicense
)

func (s Scope) String() string {
	switch s {
	case ScopeCompanyUpdater:
		return "company-updater"
	case ScopeClientUpdater:
		return "client-updater"
	case ScopeSingleLicense:
		return "single-license"
	}
	return fmt.Sprintf("Scope(%d)", int(s))
}

// Topology is the resolved updater wiring of one license.
type Topology struct {
	License *license.Detail
	// Updater is the license whose API key the updater authenticates with.
	Updater *license.Detail
	// ManagementBaseURL always comes from the company Manager license.
	ManagementBaseURL string
	Scope             Scope
	Roster            []license.Detail
}

type Resolver struct {
	store   Store
	company Company
}

func NewResolver(store Store, company Company) *Resolver {
	return &Resolver{store: store, company: company}
}

// Resolve determines the updater credential, management base URL and
// client roster for a license.
func (r *Resolver) Resolve(ctx context.Context, licenseID int64) (*Topology, error) {
	lic, err := r.store.GetDetail(ctx, licenseID)
	if err != nil {
		return nil, err
	}

	base, err := r.ManagementBaseURL(ctx)
	if err != nil {
		return nil, err
	}

	t := &Topology{License: lic, ManagementBaseURL: base}

	switch {
	case lic.IsUpdater() && lic.LicenseID == r.company.UpdaterLicenseID:
		t.Updater = lic
		t.Scope = ScopeCompanyUpdater
		if t.Roster, err = r.store.GetCompanyRoster(ctx); err != nil {
			return nil, err
		}

	case lic.IsUpdater():
		t.Updater = lic
		t.Scope = ScopeClientUpdater
		if t.Roster, err = r.store.GetClientRoster(ctx, lic.ClientID); err != nil {
			return nil, err
		}

	default:
		if t.Updater, err = r.updaterFor(ctx, lic); err != nil {
			return nil, err
		}
		t.Scope = ScopeSingleLicense
		t.Roster = []license.Detail{*lic}
	}

	if t.Updater.APIKey == "" {
		return nil, apperr.ConfigurationMissing(
			fmt.Sprintf("updater license %d has no API key", t.Updater.LicenseID))
	}
	return t, nil
}

// Authorize checks that the caller license may read the configuration of
// every given license: its own, or one it is the resolved updater for.
func (r *Resolver) Authorize(ctx context.Context, callerID int64, licenseIDs ...int64) error {
	for _, id := range licenseIDs {
		if id == callerID {
			continue
		}
		t, err := r.Resolve(ctx, id)
		if apperr.HasCode(err, apperr.CodeConfigurationMissing) {
			// the caller cannot be the updater of an unresolvable license
			return apperr.Forbidden(fmt.Sprintf("license %d may not read the configuration of license %d", callerID, id))
		}
		if err != nil {
			return err
		}
		if t.Updater.LicenseID != callerID {
			return apperr.Forbidden(fmt.Sprintf("license %d may not read the configuration of license %d", callerID, id))
		}
	}
	return nil
}

// updaterFor picks the updater serving a regular license.
func (r *Resolver) updaterFor(ctx context.Context, lic *license.Detail) (*license.Detail, error) {
	switch lic.UseOwnUpdater {
	case license.UpdaterOwn:
		u, err := r.store.GetClientUpdater(ctx, lic.ClientID)
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.ConfigurationMissing(fmt.Sprintf(
				"license %d uses its own updater but client %d has no active updater license",
				lic.LicenseID, lic.ClientID))
		}
		return u, err
	case license.UpdaterCompany, license.UpdaterUnspecified:
		return r.companyUpdater(ctx)
	}
	return nil, fmt.Errorf("license %d: unknown updater mode %s", lic.LicenseID, lic.UseOwnUpdater)
}

func (r *Resolver) companyUpdater(ctx context.Context) (*license.Detail, error) {
	if r.company.UpdaterLicenseID == 0 {
		return nil, apperr.ConfigurationMissing("company updater license is not configured")
	}
	u, err := r.store.GetDetail(ctx, r.company.UpdaterLicenseID)
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, apperr.ConfigurationMissing(fmt.Sprintf(
			"company updater license %d does not exist", r.company.UpdaterLicenseID))
	}
	return u, err
}

// ManagementBaseURL reads the base URL of the company Manager license.
func (r *Resolver) ManagementBaseURL(ctx context.Context) (string, error) {
	if r.company.ManagerLicenseID == 0 {
		return "", apperr.ConfigurationMissing("company manager license is not configured")
	}
	mgr, err := r.store.GetDetail(ctx, r.company.ManagerLicenseID)
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return "", apperr.ConfigurationMissing(fmt.Sprintf(
			"company manager license %d does not exist", r.company.ManagerLicenseID))
	}
	if err != nil {
		return "", err
	}
	if mgr.ManagementURL == "" {
		return "", apperr.ConfigurationMissing(fmt.Sprintf(
			"company manager license %d has no management URL", mgr.LicenseID))
	}
	return mgr.ManagementURL, nil
}

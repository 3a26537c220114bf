package license

import (
	"errors"
	"time"

	"winsbygroup.com/licserver/internal/application"
	"winsbygroup.com/licserver/internal/vercmp"
)

// Validation errors
var (
	ErrBlockedLicenseActive = errors.New("a blocked license cannot be active")
	ErrInvalidVersion       = errors.New("installed version must be dotted integers (e.g. 1.4.0)")
)

type License struct {
	LicenseID        int64       `db:"license_id" json:"licenseId"`
	ClientID         int64       `db:"client_id" json:"clientId"`
	ApplicationID    int64       `db:"application_id" json:"applicationId"`
	APIKey           string      `db:"api_key" json:"apiKey"`
	DisplayName      string      `db:"display_name" json:"displayName"`
	InstalledVersion string      `db:"installed_version" json:"installedVersion"`
	Active           bool        `db:"active" json:"active"`
	Blocked          bool        `db:"blocked" json:"blocked"`
	BlockReason      string      `db:"block_reason" json:"blockReason"`
	BlockDate        *time.Time  `db:"block_date" json:"blockDate,omitempty"`
	UseOwnUpdater    UpdaterMode `db:"use_own_updater" json:"useOwnUpdater"`
	FrontendPath     string      `db:"frontend_path" json:"frontendPath"`
	APIPath          string      `db:"api_path" json:"apiPath"`
	APIPoolName      string      `db:"api_pool_name" json:"apiPoolName"`
	FrontendPoolName string      `db:"frontend_pool_name" json:"frontendPoolName"`
	ManagementURL    string      `db:"management_url" json:"managementUrl"`
	DatabaseName     string      `db:"database_name" json:"databaseName"`
}

// Validate checks business rules for a license
func (l *License) Validate() error {
	if l.Blocked && l.Active {
		return ErrBlockedLicenseActive
	}
	if l.InstalledVersion != "" && !vercmp.IsValid(l.InstalledVersion) {
		return ErrInvalidVersion
	}
	return nil
}

// Entitled reports whether the license currently grants access.
func (l *License) Entitled() bool {
	return l.Active && !l.Blocked
}

// Detail is a license joined with the client, application and area it
// belongs to. Topology resolution and config synthesis work on it.
type Detail struct {
	License
	ClientName      string           `db:"client_name" json:"clientName"`
	ApplicationName string           `db:"application_name" json:"applicationName"`
	ApplicationKind application.Kind `db:"application_kind" json:"applicationKind"`
	ApplicationSlug string           `db:"application_slug" json:"applicationSlug"`
	AreaInternal    bool             `db:"area_internal" json:"areaInternal"`
}

func (d *Detail) IsUpdater() bool { return d.ApplicationKind == application.KindUpdater }
func (d *Detail) IsManager() bool { return d.ApplicationKind == application.KindManager }

// Application returns the application fields carried by the detail row.
func (d *Detail) Application() *application.Application {
	return &application.Application{
		ApplicationID:   d.ApplicationID,
		ApplicationName: d.ApplicationName,
		Kind:            d.ApplicationKind,
		Slug:            d.ApplicationSlug,
	}
}

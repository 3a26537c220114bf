package tenantconfig

// The documents below are consumed by deployed agents that bind them to
// their own settings classes, so field names are PascalCase.

type LogLevel struct {
	Default                  string `json:"Default" yaml:"default"`
	Microsoft                string `json:"Microsoft" yaml:"microsoft"`
	MicrosoftHostingLifetime string `json:"Microsoft.Hosting.Lifetime" yaml:"microsoft_hosting_lifetime"`
}

type Logging struct {
	LogLevel LogLevel `json:"LogLevel"`
}

type UpdaterSection struct {
	ManagementURL    string `json:"ManagementUrl"`
	CheckUpdatesURL  string `json:"CheckUpdatesUrl"`
	APIKey           string `json:"ApiKey"`
	SharedKey        string `json:"SharedKey"`
	UpdaterLicenseID int64  `json:"UpdaterLicenseId"`
}

type Security struct {
	AllowedIPs      []string `json:"AllowedIPs"`
	BackupRetention int      `json:"BackupRetention"`
	CleanBeforeCopy bool     `json:"CleanBeforeCopy"`
}

type IIS struct {
	APIPool      string `json:"ApiPool"`
	FrontendPool string `json:"FrontendPool"`
}

// ClientEntry is one deployment an updater instance maintains.
type ClientEntry struct {
	LicenseID        int64  `json:"LicenseId"`
	ClientName       string `json:"ClientName"`
	ApplicationID    int64  `json:"ApplicationId"`
	ApplicationName  string `json:"ApplicationName"`
	InstalledVersion string `json:"InstalledVersion"`
	FrontendPath     string `json:"FrontendPath"`
	APIPath          string `json:"ApiPath"`
	IIS              *IIS   `json:"Iis,omitempty"`
}

type UpdaterConfig struct {
	Logging  Logging        `json:"Logging"`
	Updater  UpdaterSection `json:"Updater"`
	Security Security       `json:"Security"`
	Clients  []ClientEntry  `json:"Clients"`
}

type FrontendConfig struct {
	APIURL          string `json:"ApiUrl"`
	FrontendURL     string `json:"FrontendUrl"`
	ManagementURL   string `json:"ManagementUrl"`
	ApplicationName string `json:"ApplicationName"`
	LicenseID       int64  `json:"LicenseId"`
	Version         string `json:"Version"`
}

type ConnectionStrings struct {
	Default string `json:"Default"`
}

type JWT struct {
	Key      string `json:"Key"`
	Issuer   string `json:"Issuer"`
	Audience string `json:"Audience"`
}

type Encryption struct {
	Key string `json:"Key"`
}

type ApplicationSection struct {
	LicenseID       int64    `json:"LicenseId"`
	ApplicationID   int64    `json:"ApplicationId"`
	ApplicationName string   `json:"ApplicationName"`
	APIKey          string   `json:"ApiKey"`
	PublicURL       string   `json:"PublicUrl"`
	Modules         []string `json:"Modules"`
}

type APIConfig struct {
	Logging           Logging            `json:"Logging"`
	AllowedHosts      string             `json:"AllowedHosts"`
	ConnectionStrings ConnectionStrings  `json:"ConnectionStrings"`
	JWT               JWT                `json:"Jwt"`
	Encryption        Encryption         `json:"Encryption"`
	Updater           UpdaterSection     `json:"Updater"`
	Application       ApplicationSection `json:"Application"`
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"winsbygroup.com/licserver/internal/pkgstore"
)

// Config holds all configuration values
type Config struct {
	Addr         string        `yaml:"addr"`
	DBPath       string        `yaml:"db_path"`
	AdminAPIKey  string        `yaml:"admin_api_key"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"` // "console" or "json"
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	BackupKeep   int           `yaml:"backup_keep"` // database dumps kept in <db dir>/backups; 0 keeps all

	Company      Company      `yaml:"company"`
	Secrets      Secrets      `yaml:"secrets"`
	Agent        Agent        `yaml:"agent"`
	RateLimit    RateLimit    `yaml:"rate_limit"`
	PackageStore PackageStore `yaml:"package_store"`

	DBPathSource string `yaml:"-"` // where DBPath was set from: "default", "yaml file", or "env var"
	DemoMode     bool   `yaml:"-"` // load sample data on new database (set via --demo flag)
}

// Company names the licenses the company runs itself.
type Company struct {
	ManagerLicenseID int64 `yaml:"manager_license_id"`
	UpdaterLicenseID int64 `yaml:"updater_license_id"`
}

// Secrets are embedded in synthesized agent configuration.
type Secrets struct {
	JWTKey           string `yaml:"jwt_key"`
	EncryptionKey    string `yaml:"encryption_key"`
	UpdaterSharedKey string `yaml:"updater_shared_key"`
}

// AgentLogLevels are the log levels written into agent configuration.
type AgentLogLevels struct {
	Default                  string `yaml:"default"`
	Microsoft                string `yaml:"microsoft"`
	MicrosoftHostingLifetime string `yaml:"microsoft_hosting_lifetime"`
}

// Agent holds the defaults of synthesized agent configuration.
type Agent struct {
	LogLevel                 AgentLogLevels `yaml:"log_level"`
	AllowedIPs               []string       `yaml:"allowed_ips"`
	BackupRetention          int            `yaml:"backup_retention"`
	CleanBeforeCopy          bool           `yaml:"clean_before_copy"`
	CheckUpdatesPath         string         `yaml:"check_updates_path"`
	AllowedHosts             string         `yaml:"allowed_hosts"`
	ConnectionStringTemplate string         `yaml:"connection_string_template"`
	JWTIssuer                string         `yaml:"jwt_issuer"`
}

// RateLimit throttles the agent API per client IP. Rate uses the
// "<limit>-<period>" notation, e.g. "120-M".
type RateLimit struct {
	Enabled            bool   `yaml:"enabled"`
	Rate               string `yaml:"rate"`
	TrustForwardHeader bool   `yaml:"trust_forward_header"`
}

// PackageStore selects where update binaries live.
type PackageStore struct {
	Kind string            `yaml:"kind"` // "local", "s3" or "none"
	Dir  string            `yaml:"dir"`
	S3   pkgstore.S3Config `yaml:"s3"`
}

// Load loads configuration from YAML file and overrides with env vars if present
func Load(path string) (*Config, error) {
	cfg := defaults()

	// Load from YAML if file exists
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		prevDBPath := cfg.DBPath
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if cfg.DBPath != prevDBPath {
			cfg.DBPathSource = "yaml file"
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Addr:         ":8080",
		DBPath:       "./licserver.db",
		DBPathSource: "default",
		LogLevel:     "info",
		LogFormat:    "console",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		BackupKeep:   7,
		Agent: Agent{
			LogLevel: AgentLogLevels{
				Default:                  "Information",
				Microsoft:                "Warning",
				MicrosoftHostingLifetime: "Information",
			},
			AllowedIPs:               []string{"127.0.0.1", "::1"},
			BackupRetention:          5,
			CleanBeforeCopy:          true,
			CheckUpdatesPath:         "/api/v1/updates/check",
			AllowedHosts:             "*",
			ConnectionStringTemplate: "Server=localhost;Database={database};Trusted_Connection=True;TrustServerCertificate=True",
			JWTIssuer:                "licserver",
		},
		RateLimit: RateLimit{
			Enabled: true,
			Rate:    "120-M",
		},
		PackageStore: PackageStore{
			Kind: "local",
			Dir:  "./packages",
		},
	}
}

// applyEnv overrides with environment variables
func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
		cfg.DBPathSource = "env var"
	}
	if v := os.Getenv("ADMIN_API_KEY"); v != "" {
		cfg.AdminAPIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	if v := os.Getenv("JWT_KEY"); v != "" {
		cfg.Secrets.JWTKey = v
	}
	if v := os.Getenv("ENCRYPTION_KEY"); v != "" {
		cfg.Secrets.EncryptionKey = v
	}
	if v := os.Getenv("UPDATER_SHARED_KEY"); v != "" {
		cfg.Secrets.UpdaterSharedKey = v
	}

	if err := envInt64("MANAGER_LICENSE_ID", &cfg.Company.ManagerLicenseID); err != nil {
		return err
	}
	if err := envInt64("UPDATER_LICENSE_ID", &cfg.Company.UpdaterLicenseID); err != nil {
		return err
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		cfg.RateLimit.Rate = v
	}

	if v := os.Getenv("PACKAGE_STORE_DIR"); v != "" {
		cfg.PackageStore.Dir = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.PackageStore.Kind = "s3"
		cfg.PackageStore.S3.Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.PackageStore.S3.Region = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.PackageStore.S3.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY_ID"); v != "" {
		cfg.PackageStore.S3.AccessKeyID = v
	}
	if v := os.Getenv("S3_SECRET_ACCESS_KEY"); v != "" {
		cfg.PackageStore.S3.SecretAccessKey = v
	}
	return nil
}

func envInt64(name string, dst *int64) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return fmt.Errorf("%s must be a license id, got %q", name, v)
	}
	*dst = n
	return nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.AdminAPIKey == "" {
		errs = append(errs, errors.New("ADMIN_API_KEY must be set"))
	}
	switch c.PackageStore.Kind {
	case "local":
		if c.PackageStore.Dir == "" {
			errs = append(errs, errors.New("package_store.dir is required for the local store"))
		}
	case "s3":
		if err := c.PackageStore.S3.Validate(); err != nil {
			errs = append(errs, err)
		}
	case "none", "":
	default:
		errs = append(errs, fmt.Errorf("unknown package_store.kind %q", c.PackageStore.Kind))
	}
	return errors.Join(errs...)
}

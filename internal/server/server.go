package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	mwecho "github.com/labstack/echo/v4/middleware"
	mwsvc "winsbygroup.com/licserver/internal/middleware"

	"winsbygroup.com/licserver/internal/application"
	"winsbygroup.com/licserver/internal/backup"
	"winsbygroup.com/licserver/internal/client"
	"winsbygroup.com/licserver/internal/config"
	"winsbygroup.com/licserver/internal/demodata"
	"winsbygroup.com/licserver/internal/distribution"
	"winsbygroup.com/licserver/internal/license"
	"winsbygroup.com/licserver/internal/metrics"
	"winsbygroup.com/licserver/internal/module"
	"winsbygroup.com/licserver/internal/pkgstore"
	"winsbygroup.com/licserver/internal/sqlite"
	"winsbygroup.com/licserver/internal/tenantconfig"
	"winsbygroup.com/licserver/internal/update"

	adminhttp "winsbygroup.com/licserver/internal/http/admin"
	agenthttp "winsbygroup.com/licserver/internal/http/agent"
)

type Server struct {
	Echo     *echo.Echo
	HTTP     *http.Server
	DB       *sqlx.DB
	Registry *prometheus.Registry
}

// Close releases the database.
func (s *Server) Close() error {
	return s.DB.Close()
}

func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	//
	// Validate required settings
	//
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	//
	// Database
	//
	db, isNewDB, err := openDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Load demo data if requested and database is new
	if cfg.DemoMode && isNewDB {
		if err := demodata.Load(db.DB); err != nil {
			db.Close()
			return nil, errors.New("failed to load demo data: " + err.Error())
		}
		logger.Info().Msg("demo data loaded")
	}

	company := tenantconfig.Company{
		ManagerLicenseID: cfg.Company.ManagerLicenseID,
		UpdaterLicenseID: cfg.Company.UpdaterLicenseID,
	}
	if cfg.DemoMode && company.ManagerLicenseID == 0 && company.UpdaterLicenseID == 0 {
		company = tenantconfig.Company{
			ManagerLicenseID: demodata.ManagerLicenseID,
			UpdaterLicenseID: demodata.UpdaterLicenseID,
		}
	}
	if company.ManagerLicenseID == 0 || company.UpdaterLicenseID == 0 {
		logger.Warn().
			Int64("manager_license_id", company.ManagerLicenseID).
			Int64("updater_license_id", company.UpdaterLicenseID).
			Msg("company licenses not configured; configuration endpoints will answer 422")
	}

	//
	// Package store
	//
	store, err := openPackageStore(ctx, cfg.PackageStore)
	if err != nil {
		db.Close()
		return nil, err
	}
	if store != nil {
		logger.Info().Str("kind", store.Kind()).Msg("package store ready")
	}

	//
	// Metrics
	//
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	//
	// Domain services
	//
	clientSvc := client.NewService(db)
	applicationSvc := application.NewService(db)
	licenseSvc := license.NewService(db, license.WithProtected(company.ManagerLicenseID, company.UpdaterLicenseID))
	moduleSvc := module.NewService(db)
	updateSvc := update.NewService(db, store, logger)

	engine := distribution.NewEngine(licenseSvc.Repository(), updateSvc, m, logger)
	resolver := tenantconfig.NewResolver(licenseSvc.Repository(), company)
	synth := tenantconfig.NewSynthesizer(resolver, licenseSvc.Repository(), moduleSvc, agentSettings(cfg), m, logger)

	//
	// Handlers
	//
	agentHandler := agenthttp.NewHandler(engine, synth, licenseSvc, m)

	adminSvc := adminhttp.NewService(
		clientSvc,
		applicationSvc,
		licenseSvc,
		moduleSvc,
		updateSvc,
	)
	backups := backup.NewService(db, cfg.DBPath, cfg.BackupKeep, logger)
	adminHandler := adminhttp.NewHandler(adminSvc, backups)

	//
	// Echo
	//
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Health endpoints
	e.GET("/livez", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.GET("/readyz", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return c.String(http.StatusServiceUnavailable, "DB not ready")
		}
		return c.String(http.StatusOK, "Ready")
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Middleware
	e.Use(mwecho.Recover())
	e.Use(mwecho.RequestID())
	e.Use(mwsvc.RequestLogger(logger))
	e.Use(mwsvc.Version())

	// Agent API
	agentGroup := e.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		limit, err := mwsvc.RateLimit(cfg.RateLimit.Rate, cfg.RateLimit.TrustForwardHeader, m.IncrementRateLimited)
		if err != nil {
			db.Close()
			return nil, err
		}
		agentGroup.Use(limit)
	}
	agenthttp.RegisterRoutes(agentGroup, agentHandler, mwsvc.LicenseKeyAuth(licenseSvc))

	// Admin API
	adminGroup := e.Group("/api/admin")
	adminGroup.Use(mwsvc.AdminAPIKeyAuth(cfg.AdminAPIKey))
	adminhttp.RegisterRoutes(adminGroup, adminHandler)

	//
	// HTTP server
	//
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		Echo:     e,
		HTTP:     srv,
		DB:       db,
		Registry: reg,
	}, nil
}

// openDatabase opens (creating if needed) and migrates the SQLite database.
func openDatabase(cfg *config.Config, logger zerolog.Logger) (*sqlx.DB, bool, error) {
	isNewDB := false
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		isNewDB = true
		logger.Info().Str("path", cfg.DBPath).Str("source", cfg.DBPathSource).Msg("creating database")
	} else {
		logger.Info().Str("path", cfg.DBPath).Str("source", cfg.DBPathSource).Msg("opening database")
	}

	// pragmas in the DSN apply to every pooled connection
	db, err := sqlx.Connect("sqlite3", cfg.DBPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, false, err
	}

	if err := prepareDatabase(db); err != nil {
		db.Close()
		return nil, false, err
	}
	return db, isNewDB, nil
}

func prepareDatabase(db *sqlx.DB) error {
	// WAL mode is only required once after creating the database, but
	// doesn't hurt to set it each time
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return err
	}

	// Verify foreign keys are supported and enabled
	var fkEnabled int
	if err := db.QueryRow(`PRAGMA foreign_keys;`).Scan(&fkEnabled); err != nil {
		return errors.New("SQLite foreign key support check failed: " + err.Error())
	}
	if fkEnabled != 1 {
		return errors.New("SQLite foreign keys not supported (requires SQLite 3.6.19+ compiled without SQLITE_OMIT_FOREIGN_KEY)")
	}

	return sqlite.RunMigrations(db.DB)
}

// openPackageStore returns nil for kind "none": updates are then deleted
// without touching any files.
func openPackageStore(ctx context.Context, cfg config.PackageStore) (pkgstore.Store, error) {
	switch cfg.Kind {
	case "local":
		s, err := pkgstore.NewLocal(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("package store: %w", err)
		}
		return s, nil
	case "s3":
		s, err := pkgstore.NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("package store: %w", err)
		}
		return s, nil
	}
	return nil, nil
}

func agentSettings(cfg *config.Config) tenantconfig.Settings {
	a := cfg.Agent
	return tenantconfig.Settings{
		LogLevel: tenantconfig.LogLevel{
			Default:                  a.LogLevel.Default,
			Microsoft:                a.LogLevel.Microsoft,
			MicrosoftHostingLifetime: a.LogLevel.MicrosoftHostingLifetime,
		},
		AllowedIPs:               a.AllowedIPs,
		BackupRetention:          a.BackupRetention,
		CleanBeforeCopy:          a.CleanBeforeCopy,
		CheckUpdatesPath:         a.CheckUpdatesPath,
		AllowedHosts:             a.AllowedHosts,
		ConnectionStringTemplate: a.ConnectionStringTemplate,
		JWTIssuer:                a.JWTIssuer,
		Secrets: tenantconfig.Secrets{
			JWTKey:           cfg.Secrets.JWTKey,
			EncryptionKey:    cfg.Secrets.EncryptionKey,
			UpdaterSharedKey: cfg.Secrets.UpdaterSharedKey,
		},
	}
}

package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"winsbygroup.com/licserver/internal/config"
	"winsbygroup.com/licserver/internal/distribution"
	"winsbygroup.com/licserver/internal/server"
	"winsbygroup.com/licserver/internal/tenantconfig"
)

func demoConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg, err := config.Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.DBPath = filepath.Join(dir, "licserver.db")
	cfg.AdminAPIKey = "admin-secret"
	cfg.DemoMode = true
	cfg.PackageStore.Dir = filepath.Join(dir, "packages")
	cfg.Secrets.UpdaterSharedKey = "shared"
	return cfg
}

func build(t *testing.T, cfg *config.Config) *server.Server {
	t.Helper()
	srv, err := server.Build(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func get(t *testing.T, srv *server.Server, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, req)
	return rec
}

func TestBuildRequiresAdminKey(t *testing.T) {
	cfg := demoConfig(t)
	cfg.AdminAPIKey = ""

	if _, err := server.Build(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error without admin key")
	}
}

func TestBuildRejectsBadRate(t *testing.T) {
	cfg := demoConfig(t)
	cfg.RateLimit.Rate = "fast"

	if _, err := server.Build(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for malformed rate limit")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := build(t, demoConfig(t))

	if rec := get(t, srv, "/livez"); rec.Code != http.StatusOK {
		t.Errorf("livez: expected 200, got %d", rec.Code)
	}
	if rec := get(t, srv, "/readyz"); rec.Code != http.StatusOK || rec.Body.String() != "Ready" {
		t.Errorf("readyz: expected Ready, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestDemoServer(t *testing.T) {
	srv := build(t, demoConfig(t))

	t.Run("Acme receives the global and its targeted update", func(t *testing.T) {
		rec := get(t, srv, "/api/v1/updates/check?applicationId=3&version=1.0.0&clientId=2")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var res distribution.CheckResult
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(res.RequiredUpdates) != 2 || res.Latest == nil || res.Latest.Version != "1.2.0" {
			t.Errorf("expected 1.1.0 and 1.2.0, got %+v", res.RequiredUpdates)
		}
	})

	t.Run("company defaults to the demo licenses", func(t *testing.T) {
		rec := get(t, srv, "/api/v1/config/api/5", "X-License-Key", "demo-beta-fleet-key")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var doc tenantconfig.APIConfig
		if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if doc.Updater.APIKey != "demo-company-updater-key" || doc.Updater.SharedKey != "shared" {
			t.Errorf("unexpected updater section %+v", doc.Updater)
		}
		if !strings.Contains(doc.ConnectionStrings.Default, "beta_fleet") {
			t.Errorf("expected explicit database name, got %q", doc.ConnectionStrings.Default)
		}
	})

	t.Run("admin API requires the key", func(t *testing.T) {
		if rec := get(t, srv, "/api/admin/clients"); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		rec := get(t, srv, "/api/admin/clients", "X-API-Key", "admin-secret")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Beta Transport") {
			t.Errorf("expected demo clients, got %s", rec.Body.String())
		}
	})

	t.Run("version header", func(t *testing.T) {
		rec := get(t, srv, "/livez")
		if rec.Header().Get("X-Licserver-Version") == "" {
			t.Error("expected version header")
		}
	})

	t.Run("metrics expose update checks", func(t *testing.T) {
		rec := get(t, srv, "/metrics")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body, _ := io.ReadAll(rec.Body)
		if !strings.Contains(string(body), `licserver_update_checks_total{outcome="update"} 1`) {
			t.Errorf("expected update check counter in metrics output")
		}
		if !strings.Contains(string(body), "licserver_config_requests_total") {
			t.Errorf("expected config counter in metrics output")
		}
	})
}

func TestRateLimitedAgentAPI(t *testing.T) {
	cfg := demoConfig(t)
	cfg.RateLimit.Rate = "1-M"
	srv := build(t, cfg)

	if rec := get(t, srv, "/api/v1/updates/check?applicationId=3"); rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}
	if rec := get(t, srv, "/api/v1/updates/check?applicationId=3"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}

	// admin and health endpoints are not limited
	if rec := get(t, srv, "/livez"); rec.Code != http.StatusOK {
		t.Errorf("expected livez to pass, got %d", rec.Code)
	}

	rec := get(t, srv, "/metrics")
	if !strings.Contains(rec.Body.String(), "licserver_rate_limited_total 1") {
		t.Error("expected rate limited counter to be 1")
	}
}

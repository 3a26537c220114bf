package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/license"
	"winsbygroup.com/licserver/internal/middleware"
)

// Helper to create echo context with request/response
func newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// Dummy handler that returns 200 OK
func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func expectStatus(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != want {
		t.Errorf("expected status %d, got %d", want, httpErr.Code)
	}
}

// ============================================================================
// AdminAPIKeyAuth Tests
// ============================================================================

func TestAdminAPIKeyAuth(t *testing.T) {
	const testAPIKey = "test-admin-key-12345"

	t.Run("allows request with valid API key", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/api/admin/clients")
		c.Request().Header.Set("X-API-Key", testAPIKey)

		handler := middleware.AdminAPIKeyAuth(testAPIKey)(okHandler)

		if err := handler(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("rejects request with invalid API key", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/api/admin/clients")
		c.Request().Header.Set("X-API-Key", "wrong-key")

		err := middleware.AdminAPIKeyAuth(testAPIKey)(okHandler)(c)
		expectStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("rejects request with missing API key", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/api/admin/clients")

		err := middleware.AdminAPIKeyAuth(testAPIKey)(okHandler)(c)
		expectStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("rejects every request when no key is configured", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/api/admin/clients")
		c.Request().Header.Set("X-API-Key", "")

		err := middleware.AdminAPIKeyAuth("")(okHandler)(c)
		expectStatus(t, err, http.StatusUnauthorized)
	})
}

// ============================================================================
// LicenseKeyAuth Tests
// ============================================================================

type keyLookup map[string]*license.License

func (k keyLookup) GetByAPIKey(_ context.Context, key string) (*license.License, error) {
	if lic, ok := k[key]; ok {
		return lic, nil
	}
	return nil, apperr.NotFound("license not found")
}

func TestLicenseKeyAuth(t *testing.T) {
	lookup := keyLookup{
		"active-key":   {LicenseID: 4, APIKey: "active-key", Active: true},
		"inactive-key": {LicenseID: 5, APIKey: "inactive-key"},
		"blocked-key":  {LicenseID: 6, APIKey: "blocked-key", Blocked: true},
	}

	t.Run("attaches license for valid key", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/api/v1/config/frontend/4")
		c.Request().Header.Set("X-License-Key", "active-key")

		var seen *license.License
		handler := middleware.LicenseKeyAuth(lookup)(func(c echo.Context) error {
			seen, _ = middleware.AuthenticatedLicense(c)
			return okHandler(c)
		})

		if err := handler(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if seen == nil || seen.LicenseID != 4 {
			t.Errorf("expected license 4 in context, got %+v", seen)
		}
	})

	t.Run("rejects missing key", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/api/v1/config/frontend/4")
		err := middleware.LicenseKeyAuth(lookup)(okHandler)(c)
		expectStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("rejects unknown key", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/api/v1/config/frontend/4")
		c.Request().Header.Set("X-License-Key", "nope")
		err := middleware.LicenseKeyAuth(lookup)(okHandler)(c)
		expectStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("rejects inactive and blocked licenses", func(t *testing.T) {
		for _, key := range []string{"inactive-key", "blocked-key"} {
			c, _ := newContext(http.MethodGet, "/api/v1/config/frontend/4")
			c.Request().Header.Set("X-License-Key", key)
			err := middleware.LicenseKeyAuth(lookup)(okHandler)(c)
			expectStatus(t, err, http.StatusUnauthorized)
		}
	})

	t.Run("no license outside the middleware", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/")
		if _, ok := middleware.AuthenticatedLicense(c); ok {
			t.Error("expected no license in a bare context")
		}
	})
}

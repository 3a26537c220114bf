package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/licserver/internal/license"
)

const (
	LicenseKeyHeader  = "X-License-Key"
	AdminAPIKeyHeader = "X-API-Key"

	licenseContextKey = "license"
)

// LicenseLookup resolves a license by its API key.
type LicenseLookup interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*license.License, error)
}

// LicenseKeyAuth validates the X-License-Key header against the license
// table. Only active, unblocked licenses authenticate. Used for AGENT endpoints.
func LicenseKeyAuth(licenses LicenseLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := strings.TrimSpace(c.Request().Header.Get(LicenseKeyHeader))
			if key == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing license key")
			}

			lic, err := licenses.GetByAPIKey(c.Request().Context(), key)
			if err != nil || !lic.Entitled() {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid license key")
			}

			// Attach to context
			c.Set(licenseContextKey, lic)
			return next(c)
		}
	}
}

// AuthenticatedLicense returns the license attached by LicenseKeyAuth.
func AuthenticatedLicense(c echo.Context) (*license.License, bool) {
	lic, ok := c.Get(licenseContextKey).(*license.License)
	return lic, ok && lic != nil
}

// AdminAPIKeyAuth validates the X-API-Key header against the configured
// admin key. Used for ADMIN API endpoints. Returns 401 if authentication fails.
func AdminAPIKeyAuth(adminKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if adminKey == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "ADMIN_API_KEY not configured")
			}

			key := c.Request().Header.Get(AdminAPIKeyHeader)
			if key == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing admin API key")
			}

			if !constantEqual(adminKey, key) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid admin API key")
			}

			return next(c)
		}
	}
}

// constantEqual provides constant-time string equality to avoid timing attacks.
func constantEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

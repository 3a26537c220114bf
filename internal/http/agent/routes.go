package agent

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires all agent-facing endpoints under the given Echo group.
// The licKeyAuth middleware is applied only to endpoints that require license key validation.
func RegisterRoutes(g *echo.Group, h *Handler, licKeyAuth echo.MiddlewareFunc) {

	// Update check (public, entitlement is decided per client id)
	g.GET("/updates/check", h.timed("updates_check", h.CheckForUpdate))

	// Installed version report (key must belong to the license)
	g.PUT("/licenses/:id/installed-version", h.timed("installed_version", h.UpdateInstalledVersion), licKeyAuth)

	// Synthesized deployment configuration
	g.GET("/config/updater", h.timed("config_updater", h.UpdaterConfig), licKeyAuth)
	g.GET("/config/frontend/:licenseId", h.timed("config_frontend", h.FrontendConfig), licKeyAuth)
	g.GET("/config/api/:licenseId", h.timed("config_api", h.APIConfig), licKeyAuth)
}

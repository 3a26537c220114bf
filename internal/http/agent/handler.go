package agent

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/distribution"
	"winsbygroup.com/licserver/internal/license"
	"winsbygroup.com/licserver/internal/metrics"
	"winsbygroup.com/licserver/internal/middleware"
	"winsbygroup.com/licserver/internal/tenantconfig"
)

type Handler struct {
	Engine      *distribution.Engine
	Synthesizer *tenantconfig.Synthesizer
	Licenses    *license.Service
	Metrics     *metrics.Metrics
}

func NewHandler(e *distribution.Engine, s *tenantconfig.Synthesizer, l *license.Service, m *metrics.Metrics) *Handler {
	return &Handler{
		Engine:      e,
		Synthesizer: s,
		Licenses:    l,
		Metrics:     m,
	}
}

// timed records the latency of an endpoint under the given name.
func (h *Handler) timed(name string, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		defer func() { h.Metrics.ObserveEndpointLatency(name, time.Since(start)) }()
		return next(c)
	}
}

// GET /updates/check?applicationId=&version=&clientId=
func (h *Handler) CheckForUpdate(c echo.Context) error {
	appID, err := strconv.ParseInt(c.QueryParam("applicationId"), 10, 64)
	if err != nil || appID <= 0 {
		return c.JSON(http.StatusBadRequest, distribution.CheckResult{
			Message:         "applicationId must be a positive integer",
			RequiredUpdates: []distribution.UpdateDTO{},
		})
	}

	req := distribution.CheckRequest{
		ApplicationID:    appID,
		InstalledVersion: strings.TrimSpace(c.QueryParam("version")),
	}
	if raw := c.QueryParam("clientId"); raw != "" {
		clientID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || clientID <= 0 {
			return c.JSON(http.StatusBadRequest, distribution.CheckResult{
				Message:         "clientId must be a positive integer",
				RequiredUpdates: []distribution.UpdateDTO{},
			})
		}
		req.ClientID = &clientID
	}

	res := h.Engine.CheckForUpdate(c.Request().Context(), req)
	if !res.Success {
		return c.JSON(http.StatusInternalServerError, res)
	}
	return c.JSON(http.StatusOK, res)
}

type installedVersionRequest struct {
	Version string `json:"version"`
}

// PUT /licenses/:id/installed-version
// The caller must authenticate with the API key of the license it reports for.
func (h *Handler) UpdateInstalledVersion(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid license id",
		})
	}

	caller, ok := middleware.AuthenticatedLicense(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "invalid license context",
		})
	}
	if caller.LicenseID != id {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "license key does not belong to this license",
		})
	}

	var req installedVersionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := h.Licenses.UpdateInstalledVersion(c.Request().Context(), id, req.Version); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /config/updater?licenseIds=1,2
func (h *Handler) UpdaterConfig(c echo.Context) error {
	ids, err := parseIDs(c.QueryParam("licenseIds"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	caller, ok := middleware.AuthenticatedLicense(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "invalid license context",
		})
	}
	if err := h.Synthesizer.Authorize(c.Request().Context(), caller.LicenseID, ids...); err != nil {
		return respondError(c, err)
	}

	doc, err := h.Synthesizer.UpdaterConfig(c.Request().Context(), ids)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// GET /config/frontend/:licenseId
// A license reads its own documents; an updater also reads those of the
// licenses it serves.
func (h *Handler) FrontendConfig(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("licenseId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid license id",
		})
	}

	caller, ok := middleware.AuthenticatedLicense(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "invalid license context",
		})
	}
	if err := h.Synthesizer.Authorize(c.Request().Context(), caller.LicenseID, id); err != nil {
		return respondError(c, err)
	}

	doc, err := h.Synthesizer.FrontendConfig(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// GET /config/api/:licenseId
func (h *Handler) APIConfig(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("licenseId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid license id",
		})
	}

	caller, ok := middleware.AuthenticatedLicense(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "invalid license context",
		})
	}
	if err := h.Synthesizer.Authorize(c.Request().Context(), caller.LicenseID, id); err != nil {
		return respondError(c, err)
	}

	doc, err := h.Synthesizer.APIConfig(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// parseIDs reads a comma separated list of license ids.
func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperr.Validation("licenseIds must be a comma separated list of license ids")
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, apperr.Validation("licenseIds is required")
	}
	return ids, nil
}

func respondError(c echo.Context, err error) error {
	code := apperr.CodeOf(err)
	msg := err.Error()
	if code == apperr.CodeInternal {
		c.Logger().Error(err)
		msg = "internal error"
	}
	return c.JSON(apperr.HTTPStatus(code), map[string]string{
		"error": msg,
		"code":  string(code),
	})
}

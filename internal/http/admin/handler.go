package admin

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/backup"
	"winsbygroup.com/licserver/internal/update"
)

type Handler struct {
	svc     *Service
	backups *backup.Service
}

func NewHandler(svc *Service, backups *backup.Service) *Handler {
	return &Handler{svc: svc, backups: backups}
}

// paramID reads a positive integer path parameter.
func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
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

func badRequest(c echo.Context) error {
	return respondError(c, apperr.Validation("invalid request body"))
}

// Clients

func (h *Handler) GetClients(c echo.Context) error {
	out, err := h.svc.GetClients(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetClient(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.GetClient(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateClient(c echo.Context) error {
	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	out, err := h.svc.CreateClient(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) UpdateClient(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := h.svc.UpdateClient(c.Request().Context(), id, &req); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteClient(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.DeleteClient(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Areas

func (h *Handler) GetAreas(c echo.Context) error {
	out, err := h.svc.GetAreas(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetArea(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.GetArea(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateArea(c echo.Context) error {
	var req AreaRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	out, err := h.svc.CreateArea(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) UpdateArea(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req AreaRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := h.svc.UpdateArea(c.Request().Context(), id, &req); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteArea(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.DeleteArea(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Applications

func (h *Handler) GetApplications(c echo.Context) error {
	out, err := h.svc.GetApplications(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetApplication(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.GetApplication(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateApplication(c echo.Context) error {
	var req ApplicationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	out, err := h.svc.CreateApplication(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) UpdateApplication(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req ApplicationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := h.svc.UpdateApplication(c.Request().Context(), id, &req); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteApplication(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.DeleteApplication(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Modules

func (h *Handler) GetModules(c echo.Context) error {
	appID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.GetModules(c.Request().Context(), appID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateModule(c echo.Context) error {
	appID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req ModuleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	out, err := h.svc.CreateModule(c.Request().Context(), appID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) DeleteModule(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.DeleteModule(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetLicenseModules(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.GetLicenseModules(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) EnableModule(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	moduleID, err := paramID(c, "moduleId")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.EnableModule(c.Request().Context(), id, moduleID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DisableModule(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	moduleID, err := paramID(c, "moduleId")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.DisableModule(c.Request().Context(), id, moduleID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Licenses

func (h *Handler) GetLicenses(c echo.Context) error {
	var clientID int64
	if raw := c.QueryParam("clientId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return respondError(c, apperr.Validation("invalid clientId"))
		}
		clientID = id
	}
	out, err := h.svc.GetLicenses(c.Request().Context(), clientID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetLicense(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.GetLicense(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateLicense(c echo.Context) error {
	var req LicenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	out, err := h.svc.CreateLicense(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) UpdateLicense(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req LicenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	out, err := h.svc.UpdateLicense(c.Request().Context(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteLicense(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.DeleteLicense(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ToggleBlockStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req BlockRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	out, err := h.svc.ToggleBlockStatus(c.Request().Context(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) UpdateInstalledVersion(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req InstalledVersionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := h.svc.UpdateInstalledVersion(c.Request().Context(), id, &req); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Updates

// GetUpdates answers GET /updates?applicationId=&q=&sort=&desc=&page=&pageSize=
func (h *Handler) GetUpdates(c echo.Context) error {
	q, err := parseQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.QueryUpdates(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func parseQuery(c echo.Context) (update.Query, error) {
	var q update.Query
	var err error

	if q.Sort, err = update.ParseSort(c.QueryParam("sort")); err != nil {
		return q, err
	}
	q.Keyword = c.QueryParam("q")

	if raw := c.QueryParam("applicationId"); raw != "" {
		if q.ApplicationID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return q, apperr.Validation("invalid applicationId")
		}
	}
	if raw := c.QueryParam("page"); raw != "" {
		if q.Page, err = strconv.Atoi(raw); err != nil {
			return q, apperr.Validation("invalid page")
		}
	}
	if raw := c.QueryParam("pageSize"); raw != "" {
		if q.PageSize, err = strconv.Atoi(raw); err != nil {
			return q, apperr.Validation("invalid pageSize")
		}
	}
	if raw := c.QueryParam("desc"); raw != "" {
		if q.Desc, err = strconv.ParseBool(raw); err != nil {
			return q, apperr.Validation("invalid desc")
		}
	}
	return q, nil
}

func (h *Handler) GetUpdate(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.GetUpdate(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateUpdate(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	out, err := h.svc.CreateUpdate(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) UpdateUpdate(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	out, err := h.svc.UpdateUpdate(c.Request().Context(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteUpdate(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.DeleteUpdate(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteUpdates removes several updates; the response lists per-id failures.
func (h *Handler) DeleteUpdates(c echo.Context) error {
	var req BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if len(req.IDs) == 0 {
		return respondError(c, apperr.Validation("ids is required"))
	}
	return c.JSON(http.StatusOK, h.svc.DeleteUpdates(c.Request().Context(), &req))
}

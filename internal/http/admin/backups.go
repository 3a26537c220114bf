package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Backups

func (h *Handler) GetBackups(c echo.Context) error {
	out, err := h.backups.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateBackup(c echo.Context) error {
	out, err := h.backups.Create(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

package admin

import "github.com/labstack/echo/v4"

func RegisterRoutes(g *echo.Group, h *Handler) {

	// Clients
	g.GET("/clients", h.GetClients)
	g.GET("/clients/:id", h.GetClient)
	g.POST("/clients", h.CreateClient)
	g.PUT("/clients/:id", h.UpdateClient)
	g.DELETE("/clients/:id", h.DeleteClient)

	// Areas
	g.GET("/areas", h.GetAreas)
	g.GET("/areas/:id", h.GetArea)
	g.POST("/areas", h.CreateArea)
	g.PUT("/areas/:id", h.UpdateArea)
	g.DELETE("/areas/:id", h.DeleteArea)

	// Applications
	g.GET("/applications", h.GetApplications)
	g.GET("/applications/:id", h.GetApplication)
	g.POST("/applications", h.CreateApplication)
	g.PUT("/applications/:id", h.UpdateApplication)
	g.DELETE("/applications/:id", h.DeleteApplication)

	// Modules (per application)
	g.GET("/applications/:id/modules", h.GetModules)
	g.POST("/applications/:id/modules", h.CreateModule)
	g.DELETE("/modules/:id", h.DeleteModule)

	// Licenses
	g.GET("/licenses", h.GetLicenses)
	g.GET("/licenses/:id", h.GetLicense)
	g.POST("/licenses", h.CreateLicense)
	g.PUT("/licenses/:id", h.UpdateLicense)
	g.DELETE("/licenses/:id", h.DeleteLicense)
	g.PUT("/licenses/:id/block", h.ToggleBlockStatus)
	g.PUT("/licenses/:id/installed-version", h.UpdateInstalledVersion)

	// License modules
	g.GET("/licenses/:id/modules", h.GetLicenseModules)
	g.PUT("/licenses/:id/modules/:moduleId", h.EnableModule)
	g.DELETE("/licenses/:id/modules/:moduleId", h.DisableModule)

	// Updates
	g.GET("/updates", h.GetUpdates)
	g.GET("/updates/:id", h.GetUpdate)
	g.POST("/updates", h.CreateUpdate)
	g.PUT("/updates/:id", h.UpdateUpdate)
	g.DELETE("/updates/:id", h.DeleteUpdate)
	g.POST("/updates/delete", h.DeleteUpdates)

	// Backups
	g.GET("/backups", h.GetBackups)
	g.POST("/backups", h.CreateBackup)
}

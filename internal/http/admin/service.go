package admin

import (
	"context"

	"winsbygroup.com/licserver/internal/application"
	"winsbygroup.com/licserver/internal/client"
	"winsbygroup.com/licserver/internal/license"
	"winsbygroup.com/licserver/internal/module"
	"winsbygroup.com/licserver/internal/update"
)

type Service struct {
	clients      *client.Service
	applications *application.Service
	licenses     *license.Service
	modules      *module.Service
	updates      *update.Service
}

func NewService(
	c *client.Service,
	a *application.Service,
	lic *license.Service,
	m *module.Service,
	u *update.Service,
) *Service {
	return &Service{
		clients:      c,
		applications: a,
		licenses:     lic,
		modules:      m,
		updates:      u,
	}
}

// -------------------------
// Clients
// -------------------------

func (s *Service) GetClients(ctx context.Context) ([]client.Client, error) {
	return s.clients.GetAll(ctx)
}

func (s *Service) GetClient(ctx context.Context, id int64) (*client.Client, error) {
	return s.clients.Get(ctx, id)
}

func (s *Service) CreateClient(ctx context.Context, req *ClientRequest) (*client.Client, error) {
	return s.clients.Create(ctx, &client.Client{
		ClientName:  req.ClientName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Notes:       req.Notes,
	})
}

func (s *Service) UpdateClient(ctx context.Context, id int64, req *ClientRequest) error {
	return s.clients.Update(ctx, &client.Client{
		ClientID:    id,
		ClientName:  req.ClientName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Notes:       req.Notes,
	})
}

func (s *Service) DeleteClient(ctx context.Context, id int64) error {
	return s.clients.Delete(ctx, id)
}

// -------------------------
// Areas
// -------------------------

func (s *Service) GetAreas(ctx context.Context) ([]application.Area, error) {
	return s.applications.GetAreas(ctx)
}

func (s *Service) GetArea(ctx context.Context, id int64) (*application.Area, error) {
	return s.applications.GetArea(ctx, id)
}

func (s *Service) CreateArea(ctx context.Context, req *AreaRequest) (*application.Area, error) {
	return s.applications.CreateArea(ctx, &application.Area{AreaName: req.AreaName, Internal: req.Internal})
}

func (s *Service) UpdateArea(ctx context.Context, id int64, req *AreaRequest) error {
	return s.applications.UpdateArea(ctx, &application.Area{AreaID: id, AreaName: req.AreaName, Internal: req.Internal})
}

func (s *Service) DeleteArea(ctx context.Context, id int64) error {
	return s.applications.DeleteArea(ctx, id)
}

// -------------------------
// Applications
// -------------------------

func (s *Service) GetApplications(ctx context.Context) ([]application.Application, error) {
	return s.applications.GetAll(ctx)
}

func (s *Service) GetApplication(ctx context.Context, id int64) (*application.Application, error) {
	return s.applications.Get(ctx, id)
}

func (s *Service) CreateApplication(ctx context.Context, req *ApplicationRequest) (*application.Application, error) {
	return s.applications.Create(ctx, &application.Application{
		ApplicationName: req.ApplicationName,
		AreaID:          req.AreaID,
		Kind:            req.Kind,
		Slug:            req.Slug,
	})
}

func (s *Service) UpdateApplication(ctx context.Context, id int64, req *ApplicationRequest) error {
	return s.applications.Update(ctx, &application.Application{
		ApplicationID:   id,
		ApplicationName: req.ApplicationName,
		AreaID:          req.AreaID,
		Kind:            req.Kind,
		Slug:            req.Slug,
	})
}

func (s *Service) DeleteApplication(ctx context.Context, id int64) error {
	return s.applications.Delete(ctx, id)
}

// -------------------------
// Modules
// -------------------------

func (s *Service) GetModules(ctx context.Context, applicationID int64) ([]module.Module, error) {
	if _, err := s.applications.Get(ctx, applicationID); err != nil {
		return nil, err
	}
	return s.modules.GetForApplication(ctx, applicationID)
}

func (s *Service) CreateModule(ctx context.Context, applicationID int64, req *ModuleRequest) (*module.Module, error) {
	return s.modules.Create(ctx, &module.Module{ApplicationID: applicationID, ModuleName: req.ModuleName})
}

func (s *Service) DeleteModule(ctx context.Context, id int64) error {
	return s.modules.Delete(ctx, id)
}

func (s *Service) GetLicenseModules(ctx context.Context, licenseID int64) ([]module.Module, error) {
	if _, err := s.licenses.Get(ctx, licenseID); err != nil {
		return nil, err
	}
	return s.modules.GetForLicense(ctx, licenseID)
}

func (s *Service) EnableModule(ctx context.Context, licenseID, moduleID int64) error {
	return s.modules.Enable(ctx, licenseID, moduleID)
}

func (s *Service) DisableModule(ctx context.Context, licenseID, moduleID int64) error {
	return s.modules.Disable(ctx, licenseID, moduleID)
}

// -------------------------
// Licenses
// -------------------------

func (s *Service) GetLicenses(ctx context.Context, clientID int64) ([]license.License, error) {
	if clientID > 0 {
		return s.licenses.GetForClient(ctx, clientID)
	}
	return s.licenses.GetAll(ctx)
}

func (s *Service) GetLicense(ctx context.Context, id int64) (*license.License, error) {
	return s.licenses.Get(ctx, id)
}

func (s *Service) CreateLicense(ctx context.Context, req *LicenseRequest) (*license.License, error) {
	lic := licenseFromRequest(req)
	lic.Active = req.Active == nil || *req.Active
	return s.licenses.Create(ctx, lic)
}

func (s *Service) UpdateLicense(ctx context.Context, id int64, req *LicenseRequest) (*license.License, error) {
	current, err := s.licenses.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	lic := licenseFromRequest(req)
	lic.LicenseID = id
	lic.Active = current.Active
	if req.Active != nil {
		lic.Active = *req.Active
	}
	if lic.APIKey == "" {
		lic.APIKey = current.APIKey
	}
	if lic.ClientID == 0 {
		lic.ClientID = current.ClientID
	}
	if lic.ApplicationID == 0 {
		lic.ApplicationID = current.ApplicationID
	}

	if err := s.licenses.Update(ctx, lic); err != nil {
		return nil, err
	}
	return s.licenses.Get(ctx, id)
}

func (s *Service) DeleteLicense(ctx context.Context, id int64) error {
	return s.licenses.Delete(ctx, id)
}

func (s *Service) ToggleBlockStatus(ctx context.Context, id int64, req *BlockRequest) (*license.License, error) {
	return s.licenses.ToggleBlockStatus(ctx, id, req.Block, req.Reason)
}

func (s *Service) UpdateInstalledVersion(ctx context.Context, id int64, req *InstalledVersionRequest) error {
	return s.licenses.UpdateInstalledVersion(ctx, id, req.Version)
}

func licenseFromRequest(req *LicenseRequest) *license.License {
	return &license.License{
		ClientID:         req.ClientID,
		ApplicationID:    req.ApplicationID,
		APIKey:           req.APIKey,
		DisplayName:      req.DisplayName,
		InstalledVersion: req.InstalledVersion,
		UseOwnUpdater:    req.UseOwnUpdater,
		FrontendPath:     req.FrontendPath,
		APIPath:          req.APIPath,
		APIPoolName:      req.APIPoolName,
		FrontendPoolName: req.FrontendPoolName,
		ManagementURL:    req.ManagementURL,
		DatabaseName:     req.DatabaseName,
	}
}

// -------------------------
// Updates
// -------------------------

func (s *Service) QueryUpdates(ctx context.Context, q update.Query) (*update.Page, error) {
	return s.updates.Query(ctx, q)
}

func (s *Service) GetUpdate(ctx context.Context, id int64) (*update.Update, error) {
	return s.updates.Get(ctx, id)
}

func (s *Service) CreateUpdate(ctx context.Context, req *UpdateRequest) (*update.Update, error) {
	return s.updates.Create(ctx, updateFromRequest(req))
}

func (s *Service) UpdateUpdate(ctx context.Context, id int64, req *UpdateRequest) (*update.Update, error) {
	u := updateFromRequest(req)
	u.UpdateID = id
	return s.updates.Update(ctx, u)
}

func (s *Service) DeleteUpdate(ctx context.Context, id int64) error {
	return s.updates.Delete(ctx, id)
}

func (s *Service) DeleteUpdates(ctx context.Context, req *BulkDeleteRequest) update.BulkResult {
	return s.updates.DeleteMany(ctx, req.IDs)
}

func updateFromRequest(req *UpdateRequest) *update.Update {
	u := &update.Update{
		ApplicationID:    req.ApplicationID,
		Version:          req.Version,
		Description:      req.Description,
		Active:           req.Active,
		PackageType:      req.PackageType,
		FileName:         req.FileName,
		FileSize:         req.FileSize,
		FileHash:         req.FileHash,
		APIFileName:      req.APIFileName,
		APIFileSize:      req.APIFileSize,
		APIFileHash:      req.APIFileHash,
		FrontendFileName: req.FrontendFileName,
		FrontendFileSize: req.FrontendFileSize,
		FrontendFileHash: req.FrontendFileHash,
		ClientIDs:        req.ClientIDs,
	}
	if req.ReleaseDate != nil {
		u.ReleaseDate = *req.ReleaseDate
	}
	return u
}

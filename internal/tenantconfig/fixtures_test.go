package tenantconfig

import (
	"context"
	"fmt"
	"sort"

	"winsbygroup.com/licserver/internal/application"
	"winsbygroup.com/licserver/internal/apperr"
	"winsbygroup.com/licserver/internal/license"
	"winsbygroup.com/licserver/internal/module"
)

const (
	managerID       = int64(1)
	companyUpdater  = int64(2)
	acmeUpdater     = int64(3)
	acmeFleet       = int64(4)
	betaFleet       = int64(5)
	acmeInternalApp = int64(6)

	managerURL = "https://manage.winsby.example"
)

type memStore struct {
	licenses map[int64]license.Detail
}

func detail(id, clientID int64, clientName, appName string, kind application.Kind, key string) license.Detail {
	return license.Detail{
		License: license.License{
			LicenseID:        id,
			ClientID:         clientID,
			ApplicationID:    id * 100,
			APIKey:           key,
			InstalledVersion: "1.0.0",
			Active:           true,
		},
		ClientName:      clientName,
		ApplicationName: appName,
		ApplicationKind: kind,
	}
}

// fleet builds a company with a Manager and an Updater, a client (Acme)
// running its own updater and a client (Beta) served by the company.
func fleet() *memStore {
	s := &memStore{licenses: map[int64]license.Detail{}}
	add := func(d license.Detail) { s.licenses[d.LicenseID] = d }

	m := detail(managerID, 1, "Winsby", "Manager", application.KindManager, "key-manager")
	m.ManagementURL = managerURL + "/"
	add(m)

	add(detail(companyUpdater, 1, "Winsby", "Updater", application.KindUpdater, "key-company-updater"))

	au := detail(acmeUpdater, 2, "Acme", "Updater", application.KindUpdater, "key-acme-updater")
	au.AreaInternal = true
	add(au)

	af := detail(acmeFleet, 2, "Acme", "Fleet", application.KindRegular, "key-acme-fleet")
	af.UseOwnUpdater = license.UpdaterOwn
	af.FrontendPath = `C:\inetpub\fleet`
	af.APIPath = `C:\inetpub\fleet-api`
	add(af)

	bf := detail(betaFleet, 3, "Beta Logística", "Fleet", application.KindRegular, "key-beta-fleet")
	bf.UseOwnUpdater = license.UpdaterCompany
	bf.ManagementURL = "https://beta.example"
	bf.APIPoolName = "Beta Fleet API"
	bf.FrontendPoolName = "Beta Fleet Web"
	add(bf)

	ai := detail(acmeInternalApp, 2, "Acme", "Reports", application.KindRegular, "key-acme-reports")
	ai.UseOwnUpdater = license.UpdaterOwn
	ai.AreaInternal = true
	add(ai)

	return s
}

func (s *memStore) sorted() []license.Detail {
	var out []license.Detail
	for _, d := range s.licenses {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LicenseID < out[j].LicenseID })
	return out
}

func (s *memStore) GetDetail(_ context.Context, id int64) (*license.Detail, error) {
	d, ok := s.licenses[id]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("license not found (%d)", id))
	}
	return &d, nil
}

func (s *memStore) GetClientUpdater(_ context.Context, clientID int64) (*license.Detail, error) {
	for _, d := range s.sorted() {
		if d.ClientID == clientID && d.IsUpdater() && d.Active {
			return &d, nil
		}
	}
	return nil, apperr.NotFound("no updater")
}

func (s *memStore) GetCompanyRoster(context.Context) ([]license.Detail, error) {
	var out []license.Detail
	for _, d := range s.sorted() {
		if d.Active && !d.IsUpdater() && !d.UseOwnUpdater.UsesOwnUpdater() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memStore) GetClientRoster(_ context.Context, clientID int64) ([]license.Detail, error) {
	var out []license.Detail
	for _, d := range s.sorted() {
		if d.ClientID == clientID && d.Active && !d.IsUpdater() && !d.AreaInternal && d.UseOwnUpdater == license.UpdaterOwn {
			out = append(out, d)
		}
	}
	return out, nil
}

type memModules map[int64][]module.Module

func (m memModules) GetForLicense(_ context.Context, licenseID int64) ([]module.Module, error) {
	return m[licenseID], nil
}

func rosterIDs(ds []license.Detail) []int64 {
	out := make([]int64, len(ds))
	for i, d := range ds {
		out[i] = d.LicenseID
	}
	return out
}

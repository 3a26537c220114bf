package application

import "fmt"

// Kind distinguishes the two company tooling applications from line-of-business ones.
type Kind string

const (
	KindRegular Kind = "regular"
	KindUpdater Kind = "updater"
	KindManager Kind = "manager"
)

func (k Kind) Valid() bool {
	switch k {
	case KindRegular, KindUpdater, KindManager:
		return true
	}
	return false
}

type Application struct {
	ApplicationID   int64  `db:"application_id" json:"applicationId"`
	ApplicationName string `db:"application_name" json:"applicationName"`
	AreaID          int64  `db:"area_id" json:"areaId"`
	Kind            Kind   `db:"kind" json:"kind"`
	Slug            string `db:"slug" json:"slug"`
}

// PathSegment is the URL segment under which a regular application is exposed.
func (a *Application) PathSegment() string {
	if a.Slug != "" {
		return a.Slug
	}
	return Slugify(a.ApplicationName, '-')
}

func (a *Application) Validate() error {
	if a.ApplicationName == "" {
		return fmt.Errorf("application name is required")
	}
	if a.AreaID == 0 {
		return fmt.Errorf("area is required")
	}
	if a.Kind == "" {
		a.Kind = KindRegular
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("unknown application kind %q", a.Kind)
	}
	return nil
}

// Area groups applications. Applications in an internal area are company
// tooling and never appear in a client-owned updater roster.
type Area struct {
	AreaID   int64  `db:"area_id" json:"areaId"`
	AreaName string `db:"area_name" json:"areaName"`
	Internal bool   `db:"internal" json:"internal"`
}

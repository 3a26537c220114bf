package admin

import (
	"time"

	"winsbygroup.com/licserver/internal/application"
	"winsbygroup.com/licserver/internal/license"
	"winsbygroup.com/licserver/internal/update"
)

// -------------------------
// Client DTOs
// -------------------------

type ClientRequest struct {
	ClientName  string `json:"clientName"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Notes       string `json:"notes"`
}

// -------------------------
// Area / Application DTOs
// -------------------------

type AreaRequest struct {
	AreaName string `json:"areaName"`
	Internal bool   `json:"internal"`
}

type ApplicationRequest struct {
	ApplicationName string           `json:"applicationName"`
	AreaID          int64            `json:"areaId"`
	Kind            application.Kind `json:"kind"`
	Slug            string           `json:"slug"`
}

type ModuleRequest struct {
	ModuleName string `json:"moduleName"`
}

// -------------------------
// License DTOs
// -------------------------

// LicenseRequest creates or updates a license. An empty APIKey on create
// generates a new key; on update it keeps the current one. InstalledVersion
// only seeds a new license; afterwards it moves through installed-version.
type LicenseRequest struct {
	ClientID         int64               `json:"clientId"`
	ApplicationID    int64               `json:"applicationId"`
	APIKey           string              `json:"apiKey"`
	DisplayName      string              `json:"displayName"`
	InstalledVersion string              `json:"installedVersion"`
	Active           *bool               `json:"active"`
	UseOwnUpdater    license.UpdaterMode `json:"useOwnUpdater"`
	FrontendPath     string              `json:"frontendPath"`
	APIPath          string              `json:"apiPath"`
	APIPoolName      string              `json:"apiPoolName"`
	FrontendPoolName string              `json:"frontendPoolName"`
	ManagementURL    string              `json:"managementUrl"`
	DatabaseName     string              `json:"databaseName"`
}

type BlockRequest struct {
	Block  bool   `json:"block"`
	Reason string `json:"reason"`
}

type InstalledVersionRequest struct {
	Version string `json:"version"`
}

// -------------------------
// Update DTOs
// -------------------------

type UpdateRequest struct {
	ApplicationID    int64              `json:"applicationId"`
	Version          string             `json:"version"`
	Description      string             `json:"description"`
	Active           bool               `json:"active"`
	ReleaseDate      *time.Time         `json:"releaseDate"`
	PackageType      update.PackageType `json:"packageType"`
	FileName         string             `json:"fileName"`
	FileSize         int64              `json:"fileSize"`
	FileHash         string             `json:"fileHash"`
	APIFileName      string             `json:"apiFileName"`
	APIFileSize      int64              `json:"apiFileSize"`
	APIFileHash      string             `json:"apiFileHash"`
	FrontendFileName string             `json:"frontendFileName"`
	FrontendFileSize int64              `json:"frontendFileSize"`
	FrontendFileHash string             `json:"frontendFileHash"`
	ClientIDs        []int64            `json:"clientIds"`
}

type BulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

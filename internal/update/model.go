package update

import (
	"errors"
	"fmt"
	"time"

	"winsbygroup.com/licserver/internal/vercmp"
)

// PackageType says which deployable components an update carries.
type PackageType int

const (
	PackageAPI      PackageType = 0
	PackageFrontend PackageType = 1
	PackageBoth     PackageType = 2
)

func (p PackageType) Valid() bool {
	return p == PackageAPI || p == PackageFrontend || p == PackageBoth
}

func (p PackageType) CoversAPI() bool      { return p == PackageAPI || p == PackageBoth }
func (p PackageType) CoversFrontend() bool { return p == PackageFrontend || p == PackageBoth }

func (p PackageType) String() string {
	switch p {
	case PackageAPI:
		return "api"
	case PackageFrontend:
		return "frontend"
	case PackageBoth:
		return "both"
	}
	return fmt.Sprintf("PackageType(%d)", int(p))
}

// Validation errors
var (
	ErrInvalidVersion     = errors.New("version must be dotted integers (e.g. 1.4.0)")
	ErrInvalidPackageType = errors.New("package type must be 0 (api), 1 (frontend) or 2 (both)")
	ErrMissingAPIFile     = errors.New("an api package requires the api file")
	ErrMissingFrontend    = errors.New("a frontend package requires the frontend file")
	ErrMissingBothFiles   = errors.New("a combined package requires both api and frontend files or the legacy file")
	ErrApplicationMissing = errors.New("application is required")
)

// Update is one distributable package. It owns its client targeting list:
// an empty ClientIDs means the update applies to every entitled client.
type Update struct {
	UpdateID      int64       `db:"update_id" json:"updateId"`
	ApplicationID int64       `db:"application_id" json:"applicationId"`
	Version       string      `db:"version" json:"version"`
	VersionKey    string      `db:"version_key" json:"-"`
	Description   string      `db:"description" json:"description"`
	Active        bool        `db:"active" json:"active"`
	Mandatory     bool        `db:"mandatory" json:"mandatory"`
	ReleaseDate   time.Time   `db:"release_date" json:"releaseDate"`
	PackageType   PackageType `db:"package_type" json:"packageType"`

	// legacy combined file
	FileName string `db:"file_name" json:"fileName"`
	FileSize int64  `db:"file_size" json:"fileSize"`
	FileHash string `db:"file_hash" json:"fileHash"`

	APIFileName string `db:"api_file_name" json:"apiFileName"`
	APIFileSize int64  `db:"api_file_size" json:"apiFileSize"`
	APIFileHash string `db:"api_file_hash" json:"apiFileHash"`

	FrontendFileName string `db:"frontend_file_name" json:"frontendFileName"`
	FrontendFileSize int64  `db:"frontend_file_size" json:"frontendFileSize"`
	FrontendFileHash string `db:"frontend_file_hash" json:"frontendFileHash"`

	ClientIDs []int64 `db:"-" json:"clientIds"`
}

// Targeted reports whether the update is scoped to specific clients.
func (u *Update) Targeted() bool {
	return len(u.ClientIDs) > 0
}

// TargetsClient reports whether clientID is in the targeting list.
func (u *Update) TargetsClient(clientID int64) bool {
	for _, id := range u.ClientIDs {
		if id == clientID {
			return true
		}
	}
	return false
}

// Files returns the stored file names, legacy first.
func (u *Update) Files() []string {
	var out []string
	for _, n := range []string{u.FileName, u.APIFileName, u.FrontendFileName} {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks business rules for an update
func (u *Update) Validate() error {
	if u.ApplicationID == 0 {
		return ErrApplicationMissing
	}
	if !vercmp.IsValid(u.Version) {
		return ErrInvalidVersion
	}
	switch u.PackageType {
	case PackageAPI:
		if u.APIFileName == "" {
			return ErrMissingAPIFile
		}
	case PackageFrontend:
		if u.FrontendFileName == "" {
			return ErrMissingFrontend
		}
	case PackageBoth:
		if u.FileName == "" && (u.APIFileName == "" || u.FrontendFileName == "") {
			return ErrMissingBothFiles
		}
	default:
		return ErrInvalidPackageType
	}
	return nil
}

package license

import (
	"database/sql/driver"
	"fmt"
)

// UpdaterMode selects which updater instance serves a license. It is stored
// as a nullable integer: NULL (unspecified), 0 (company) or 1 (own).
type UpdaterMode int

const (
	// UpdaterUnspecified behaves like UpdaterCompany.
	UpdaterUnspecified UpdaterMode = iota
	UpdaterCompany
	UpdaterOwn
)

func (m UpdaterMode) String() string {
	switch m {
	case UpdaterUnspecified:
		return "unspecified"
	case UpdaterCompany:
		return "company"
	case UpdaterOwn:
		return "own"
	}
	return fmt.Sprintf("UpdaterMode(%d)", int(m))
}

// UsesOwnUpdater reports whether the license is served by its client's updater.
func (m UpdaterMode) UsesOwnUpdater() bool {
	switch m {
	case UpdaterOwn:
		return true
	case UpdaterCompany, UpdaterUnspecified:
		return false
	}
	return false
}

func (m UpdaterMode) MarshalText() ([]byte, error) {
	switch m {
	case UpdaterUnspecified, UpdaterCompany, UpdaterOwn:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("invalid updater mode %d", int(m))
}

func (m *UpdaterMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "unspecified":
		*m = UpdaterUnspecified
	case "company":
		*m = UpdaterCompany
	case "own":
		*m = UpdaterOwn
	default:
		return fmt.Errorf("invalid updater mode %q", string(b))
	}
	return nil
}

func (m *UpdaterMode) Scan(src any) error {
	if src == nil {
		*m = UpdaterUnspecified
		return nil
	}
	var n int64
	switch v := src.(type) {
	case int64:
		n = v
	case bool:
		if v {
			n = 1
		}
	default:
		return fmt.Errorf("scan updater mode: unsupported type %T", src)
	}
	switch n {
	case 0:
		*m = UpdaterCompany
	case 1:
		*m = UpdaterOwn
	default:
		return fmt.Errorf("scan updater mode: unexpected value %d", n)
	}
	return nil
}

func (m UpdaterMode) Value() (driver.Value, error) {
	switch m {
	case UpdaterUnspecified:
		return nil, nil
	case UpdaterCompany:
		return int64(0), nil
	case UpdaterOwn:
		return int64(1), nil
	}
	return nil, fmt.Errorf("invalid updater mode %d", int(m))
}

package tenantconfig

import (
	"fmt"
	"strings"

	"winsbygroup.com/licserver/internal/application"
	"winsbygroup.com/licserver/internal/license"
)

// DatabaseName returns the explicit database name of a license or derives a
// stable one from its API pool name, display name, or client and application
// names, in that order.
func DatabaseName(l *license.Detail) string {
	if n := strings.TrimSpace(l.DatabaseName); n != "" {
		return n
	}
	for _, src := range []string{l.APIPoolName, l.DisplayName, l.ClientName + " " + l.ApplicationName} {
		if s := application.Slugify(src, '_'); s != "" {
			return "db_" + s
		}
	}
	return fmt.Sprintf("db_license_%d", l.LicenseID)
}

// joinURL appends path segments to base with single slashes.
func joinURL(base string, segments ...string) string {
	out := strings.TrimRight(base, "/")
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			out += "/" + s
		}
	}
	return out
}

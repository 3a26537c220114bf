package version

import (
	"fmt"
	"strconv"
	"time"
)

// Version is the application version. Can be overridden at build time via:
//
//	go build -ldflags "-X winsbygroup.com/licserver/internal/version.Version=1.2.3"
var Version = "1.0"

// RepoURL is the project repository URL. Can be overridden at build time via:
//
//	go build -ldflags "-X winsbygroup.com/licserver/internal/version.RepoURL=https://github.com/yourfork/licserver"
var RepoURL = "https://github.com/winsbygroup/licserver"

// Banner prints identifying information about the server.
func Banner() string {
	y := strconv.Itoa(time.Now().Year())
	copyright := "Copyright 2025-" + y + " Winsby Group LLC. All rights reserved."

	return fmt.Sprintf("%s\nLicserver (v%s)\n%s\n", product(), Version, copyright)
}

// UserAgent identifies the server to the S3 package store.
func UserAgent() string {
	return "licserver/" + Version
}

func product() string {
	// http://patorjk.com/software/taag/#p=display&f=Standard&t=Licserver
	const s = `
  _     _
 | |   (_) ___ ___  ___ _ ____   _____ _ __
 | |   | |/ __/ __|/ _ \ '__\ \ / / _ \ '__|
 | |___| | (__\__ \  __/ |   \ V /  __/ |
 |_____|_|\___|___/\___|_|    \_/ \___|_|
`
	return s
}

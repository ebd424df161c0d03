// =============================================================================
// pipe2csv - Version Information
// =============================================================================
//
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/pipe2csv/cmd.Version=1.0.0' \
//     -X 'github.com/ginjaninja78/pipe2csv/cmd.BuildDate=2026-10-18'"
//
// OUTPUT of pipe2csv --version:
//   pipe2csv
//   Version:    1.0.0
//   Build Date: 2026-10-18
//   Go Version: go1.24.11
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
)

// Version is the application version.
var Version = "dev"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

// versionTemplate is the cobra template printed by --version.
func versionTemplate() string {
	return fmt.Sprintf("pipe2csv\nVersion:    {{.Version}}\nBuild Date: %s\nGo Version: %s\n",
		BuildDate, runtime.Version())
}

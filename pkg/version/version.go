// Package version holds build metadata stamped in by the linker.
package version

import (
	"fmt"
	"runtime"
)

const BinaryName = "kubectl-mcp-server"

// These are overridden at build time via -ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// GetVersionInfo returns a human-readable version banner.
func GetVersionInfo() string {
	return fmt.Sprintf(`%s
  Version:    %s
  Git commit: %s
  Built:      %s
  Go version: %s
  Platform:   %s`,
		BinaryName, Version, GitCommit, BuildDate, GoVersion, Platform)
}

package version

import (
	"fmt"
	"runtime"
)

// Set by ldflags during release builds.
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

// BuildInfo contains version and build details.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
}

// Get returns the build information.
func Get() BuildInfo {
	return BuildInfo{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
		GoVersion: runtime.Version(),
	}
}

// String renders the build information on one line for --version.
func (b BuildInfo) String() string {
	return fmt.Sprintf("powersched %s (commit %s, built %s, %s)",
		b.Version, b.GitCommit, b.BuildDate, b.GoVersion)
}

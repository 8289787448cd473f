// Package version exposes the build metadata stamped into the binary.
package version

import (
	"fmt"
	"runtime"
)

// Injected at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is a snapshot of the build metadata plus the toolchain it was
// compiled with.
type Info struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
	Platform  string
}

// GetInfo collects the stamped values and the runtime details.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders the full version line shown by 'devtracker version'.
func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("devtracker %s (commit %s, built %s, %s, %s)",
		i.Version, commit, i.Date, i.GoVersion, i.Platform)
}

// Short renders only the version number, for --short and scripts.
func (i Info) Short() string {
	return i.Version
}

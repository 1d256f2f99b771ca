package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version of the converter. Reported by `partialweek version` and GET /api/version.
	Version = "1.0.0"

	// APIVersion is the path segment of the upload API (/api/v1/...).
	APIVersion = "v1"
)

// Set with -ldflags "-X .../pkg/contracts.GitCommit=..." at release time.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version      string `json:"version"`
	APIVersion   string `json:"api_version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
}

// GetVersionInfo returns the version of this build.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		APIVersion:   APIVersion,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
}

// String formats the version for a terminal.
func (v VersionInfo) String() string {
	return fmt.Sprintf("partialweek version %s (commit: %s, built: %s, %s %s/%s)",
		v.Version, v.GitCommit, v.BuildTime, v.GoVersion, v.OS, v.Architecture)
}

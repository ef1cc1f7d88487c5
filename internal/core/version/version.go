// Package version reports the build identity of the trawler binary
package version

// BuildInfo holds version information about the build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. version, commit and date are set at
// build time:
//
//	-ldflags "-X 'trawler/internal/core/version.version=v0.1.0'
//	          -X 'trawler/internal/core/version.commit=abcd'
//	          -X 'trawler/internal/core/version.date=2026-06-01'"
func Info() BuildInfo {
	return BuildInfo{
		Service: "trawler",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// String is the one line form printed by the CLI
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ", " + b.Date + ")"
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

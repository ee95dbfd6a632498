// Package buildinfo holds release metadata stamped in by the linker, e.g.
//
//	go build -ldflags "-X github.com/cleared-dev/tally/internal/buildinfo.Version=v1.2.0"
package buildinfo

// Set with -ldflags -X at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

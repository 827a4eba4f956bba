// Package build holds version information set at link time.
package build

// Overridden with -ldflags "-X go.trai.ch/lockmap/internal/build.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

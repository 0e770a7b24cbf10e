// Package version exposes the build identity stamped in at link time.
package version

// Overridden through -ldflags on release builds; defaults mark a local build.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

package version

import "fmt"

// Build metadata, overridden at release time via
// -ldflags "-X .../internal/version.Version=... -X .../internal/version.Commit=...".
var (
	// Version is the semantic version of this updater build.
	Version = "0.0.0-dev"
	// Commit is the short git SHA the binary was built from.
	Commit = "unknown"
	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"
)

// Short returns only the semantic version string. It is the value the
// selfupdate command compares against the release catalog.
func Short() string {
	return Version
}

// Full returns the complete build description for the version subcommand.
func Full() string {
	return fmt.Sprintf("brave-updater %s (commit %s, built %s)", Version, Commit, BuildTime)
}

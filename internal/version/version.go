package version

import "fmt"

var (
	// Version is set at build time with -ldflags "-X .../internal/version.Version=...".
	Version = "0.1.0-dev"

	// GitCommit is set at build time.
	GitCommit = ""
)

// String returns the version with the commit, if known.
func String() string {
	if GitCommit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}

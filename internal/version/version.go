package version

import "fmt"

var (
	// Version is set at build time with -ldflags "-X ...version.Version=...".
	Version = "0.1.0"

	// GitCommit is the commit the binary was built from.
	GitCommit = ""
)

// String returns the version with the commit when known.
func String() string {
	if GitCommit != "" {
		return fmt.Sprintf("%s (%s)", Version, GitCommit)
	}
	return Version
}

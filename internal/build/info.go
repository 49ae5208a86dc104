// Package build carries the version stamped into the binary at link time.
package build

import "fmt"

// Set with:
//
//	go build -ldflags "-X github.com/joestump/tagboard/internal/build.Version=v1.2.0 \
//	  -X github.com/joestump/tagboard/internal/build.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/joestump/tagboard/internal/build.Branch=$(git branch --show-current)"
var (
	Version = "dev"
	Commit  = "unknown"
	Branch  = "unknown"
)

// Summary renders the build metadata on one line, e.g. "v1.2.0 (abc123 on main)".
func Summary() string {
	return fmt.Sprintf("%s (%s on %s)", Version, Commit, Branch)
}

// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/energy-data/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/energy-data/internal/version.Commit=$(git rev-parse --short HEAD)" \
//	         ./cmd/ingestor
package version

// Build-time variables (set via ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns a formatted version string.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}

// UserAgent is sent on every upstream request so API operators can identify us.
func UserAgent() string {
	return "energy-data-ingestor/" + Version + " (" + Commit + ")"
}

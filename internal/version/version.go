// Package version provides build-time version information.
package version

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X terraform-provider-cloudram/internal/version.Version=1.0.0 \
//	                   -X terraform-provider-cloudram/internal/version.Commit=$(git rev-parse HEAD)"
var (
	Version = "dev"

	Commit = "unknown"

	BuildDate = "unknown"
)

// Package version provides application version information.
// The version can be set at build time using ldflags:
//
//	go build -ldflags "-X circlecrates/internal/version.Version=v1.2.3"
package version

// Version is the application version. It defaults to "dev" and can be
// overridden at build time using ldflags.
var Version = "dev"

// Info is the build information served by the status endpoint.
type Info struct {
	Version string `json:"version"`
	Service string `json:"service"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, Service: "circlecrates"}
}

// Package version carries the CLI's build-time version string.
package version

// Version is overridden at link time via -ldflags "-X .../pkg/version.Version=...".
var Version = "dev"

// UserAgent is the identifier the API client sends on every request.
func UserAgent() string {
	return "phylum-cli/" + Version
}

package version

// Version is overridden at build time via -ldflags.
var Version = "0.1.0-dev"

// Get returns the current version.
func Get() string {
	return Version
}

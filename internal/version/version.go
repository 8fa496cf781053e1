package version

// Version is the tap version, overridden at build time with
// -ldflags "-X github.com/hashicorp-forge/tap-bamboohr/internal/version.Version=...".
var Version = "0.1.0-dev"

// Package version holds the release version, overridable at link time with
// -ldflags "-X github.com/semistrict/iterm2focus/pkg/version.Version=...".
package version

var Version = "0.0.11"

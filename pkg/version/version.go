// Package version exposes build metadata injected at link time.
package version

import "runtime/debug"

// Populated via -ldflags "-X github.com/Sumatoshi-tech/treediff/pkg/version.Version=...".
var (
	// Version is the semantic version of the binary.
	Version = "dev"
	// Commit is the Git hash the binary was built from.
	Commit = "<unknown>"
	// Date is the build timestamp.
	Date = "<unknown>"
)

// InitBinaryVersion fills Commit from Go build info when it was not injected
// at link time.
func InitBinaryVersion() {
	if Commit != "<unknown>" {
		return
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			Commit = setting.Value

			return
		}
	}
}

// Package buildinfo resolves the version stamped into mimic binaries.
package buildinfo

import "runtime/debug"

const devVersion = "0.0.0-dev"

// version is replaced by release builds via
// -ldflags "-X github.com/offlinefirst/mimic/internal/buildinfo.version=...".
var version = devVersion

// SetVersion overrides the reported version; empty values are ignored.
func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// Version reports the stamped version. Unstamped binaries fall back to the
// module version recorded by the Go toolchain, then to the dev placeholder.
func Version() string {
	if version != devVersion {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return devVersion
}

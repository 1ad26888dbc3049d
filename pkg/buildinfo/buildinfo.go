package buildinfo

import "runtime/debug"

// ModulePath is the Go module path apv is published under. The update check
// queries the module proxy with it.
const ModulePath = "github.com/fulmenhq/appversion"

// BinaryVersion is set at build time via -ldflags. Defaults to "dev".
var BinaryVersion = "dev"

// ModuleVersion returns the module version embedded by the Go toolchain (when available).
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return ""
}

// Version returns the best known version of the running binary: the ldflags
// value when set, else the module version, else "dev".
func Version() string {
	if BinaryVersion != "" && BinaryVersion != "dev" {
		return BinaryVersion
	}
	if v := ModuleVersion(); v != "" {
		return v
	}
	return "dev"
}

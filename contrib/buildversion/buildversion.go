package buildversion

import (
	"runtime/debug"

	"golang.org/x/mod/semver"
)

// DevelVersion is reported when the module version cannot be determined,
// such as when running tests from within the module itself.
const DevelVersion = "v0.0.0-devel"

// GetVersion returns the canonical semantic version of modPath as recorded
// in the build info of the running binary.
func GetVersion(modPath string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return DevelVersion
	}

	if info.Main.Path == modPath {
		return canonicalVersion(info.Main.Version)
	}

	for _, dep := range info.Deps {
		if dep.Path != modPath {
			continue
		}

		if dep.Replace != nil {
			return canonicalVersion(dep.Replace.Version)
		}
		return canonicalVersion(dep.Version)
	}

	return DevelVersion
}

func canonicalVersion(version string) string {
	if !semver.IsValid(version) {
		return DevelVersion
	}

	canonical := semver.Canonical(version)
	if build := semver.Build(version); build != "" {
		canonical += build
	}
	return canonical
}

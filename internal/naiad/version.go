package naiad

import (
	"fmt"

	"github.com/blang/semver"
)

const versionDevelopment = "development"

// NAIAD_VERSION is overridden at link time by release builds.
var NAIAD_VERSION = versionDevelopment

const NAIAD_PORT = 4730

// compatibleRange returns the versions able to talk with v: same major,
// or same minor before 1.0.
func compatibleRange(v semver.Version) semver.Range {
	if v.Major == 0 {
		return semver.MustParseRange(fmt.Sprintf(">=0.%d.0-0 <0.%d.0-0", v.Minor, v.Minor+1))
	}
	return semver.MustParseRange(fmt.Sprintf(">=%d.0.0-0 <%d.0.0-0", v.Major, v.Major+1))
}

func parseVersion(v string) (semver.Version, error) {
	res, err := semver.ParseTolerant(v)
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid version '%s': %w", v, err)
	}
	return res, nil
}

// VersionAreCompatible tells if a naiad-cli and a naiad daemon of the
// given versions can work together. Development builds are compatible
// with any version.
func VersionAreCompatible(a, b string) (bool, error) {
	if a == versionDevelopment || b == versionDevelopment {
		return true, nil
	}
	av, err := parseVersion(a)
	if err != nil {
		return false, err
	}
	bv, err := parseVersion(b)
	if err != nil {
		return false, err
	}
	return compatibleRange(av)(bv), nil
}

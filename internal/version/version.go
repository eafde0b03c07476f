// Package version normalizes, extracts and orders the version strings that
// appear in release tags, asset names and installed records.
package version

import (
	"regexp"
	"slices"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

const (
	// Nightly is the version recorded for branch builds.
	Nightly = "nightly"
	// Latest is the version recorded for standalone downloads.
	Latest = "latest"
)

var assetVersionRe = regexp.MustCompile(`v\d+\.\d+\.\d+`)

// Normalize adds the "v" prefix release tags carry. Symbolic versions
// (nightly, latest) and empty strings pass through untouched.
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == Nightly || v == Latest || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// FromAssetName extracts the first vX.Y.Z token from an asset file name.
func FromAssetName(name string) (string, bool) {
	m := assetVersionRe.FindString(name)
	return m, m != ""
}

// Compare orders two version strings numerically by dot-separated component,
// so 1.40.1 > 1.39.3 > 1.9.0. Strings that do not parse as versions sort
// below every parseable version and compare lexically among themselves.
// It returns -1, 0 or 1.
func Compare(a, b string) int {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.Compare(vb)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// Max returns the highest version in vs, or "" for an empty slice.
func Max(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return slices.MaxFunc(vs, Compare)
}

// Equal reports whether two version strings name the same release,
// ignoring the "v" prefix.
func Equal(a, b string) bool {
	return Compare(Normalize(a), Normalize(b)) == 0
}

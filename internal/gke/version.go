// Package gke resolves GKE target versions: it parses and orders GKE
// build versions, builds a catalog from the release-notes feed, and
// selects a target version according to the operator's policy.
package gke

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is a single GKE build version, e.g. "1.28.15-gke.2169000".
//
// The "-gke.N" suffix is a valid semver pre-release, so semver ordering
// gives exactly the ordering GKE documents: major, minor and patch
// compare numerically, and the build suffix compares numerically when
// both sides are numeric, lexically otherwise. Two versions are equal
// only if every component matches.
type Version struct {
	v *semver.Version
}

// ParseVersion parses a raw GKE version string.
func ParseVersion(s string) (Version, error) {
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("invalid GKE version %q: %w", s, err)
	}
	return Version{v: v}, nil
}

// MustParseVersion is ParseVersion for static inputs; it panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v is the zero Version (no parsed value).
func (v Version) IsZero() bool {
	return v.v == nil
}

// String returns the version in its original notation.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.Original()
}

// Compare returns -1, 0 or 1 depending on whether v is lower than,
// equal to or higher than o.
func (v Version) Compare(o Version) int {
	return v.v.Compare(o.v)
}

// Equal reports whether v and o denote the same build.
func (v Version) Equal(o Version) bool {
	return v.v != nil && o.v != nil && v.v.Equal(o.v)
}

// LessThan reports whether v orders before o.
func (v Version) LessThan(o Version) bool {
	return v.v.LessThan(o.v)
}

// MinorLine returns the major.minor line the version belongs to.
func (v Version) MinorLine() MinorLine {
	return MinorLine{Major: v.v.Major(), Minor: v.v.Minor()}
}

// MinorLine identifies a major.minor release line such as "1.28".
type MinorLine struct {
	Major uint64
	Minor uint64
}

// ParseMinorLine parses an "x.y" minor line string.
func ParseMinorLine(s string) (MinorLine, error) {
	var m MinorLine
	if _, err := fmt.Sscanf(s, "%d.%d", &m.Major, &m.Minor); err != nil {
		return MinorLine{}, fmt.Errorf("invalid minor version %q, expected \"x.y\": %w", s, err)
	}
	if fmt.Sprintf("%d.%d", m.Major, m.Minor) != s {
		return MinorLine{}, fmt.Errorf("invalid minor version %q, expected \"x.y\"", s)
	}
	return m, nil
}

// String returns the line in "x.y" notation.
func (m MinorLine) String() string {
	return fmt.Sprintf("%d.%d", m.Major, m.Minor)
}

package gke

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-logr/logr"
)

// ErrEmptyCatalog is returned when the release feed yields no usable
// version at all.
var ErrEmptyCatalog = errors.New("release feed contains no usable GKE versions")

// NoVersionFoundError is returned when a requested minor line has no
// entry in the catalog.
type NoVersionFoundError struct {
	Line MinorLine
}

func (e *NoVersionFoundError) Error() string {
	return fmt.Sprintf("no GKE version found for minor version %s", e.Line)
}

// Catalog is a deduplicated set of known GKE versions, ordered newest
// first.
type Catalog struct {
	versions []Version
}

// NewCatalog parses raw version strings from the release feed into a
// catalog. Strings that do not parse as GKE versions are skipped; the
// feed carries unrelated entries, so this is reported but not fatal.
// An empty result is fatal: there is nothing to select from.
func NewCatalog(raw []string, log logr.Logger) (Catalog, error) {
	seen := make(map[string]struct{}, len(raw))
	versions := make([]Version, 0, len(raw))

	for _, s := range raw {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}

		v, err := ParseVersion(s)
		if err != nil {
			log.V(1).Info("skipping unparsable feed entry", "entry", s)
			continue
		}
		versions = append(versions, v)
	}

	if len(versions) == 0 {
		return Catalog{}, ErrEmptyCatalog
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[j].LessThan(versions[i])
	})

	return Catalog{versions: versions}, nil
}

// Versions returns all catalog entries, newest first.
func (c Catalog) Versions() []Version {
	return c.versions
}

// MinorLines returns the distinct minor lines present in the catalog,
// newest first.
func (c Catalog) MinorLines() []MinorLine {
	var lines []MinorLine
	seen := make(map[MinorLine]struct{})
	for _, v := range c.versions {
		line := v.MinorLine()
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}
	return lines
}

// forLine returns the catalog entries of one minor line, newest first.
func (c Catalog) forLine(line MinorLine) []Version {
	var matches []Version
	for _, v := range c.versions {
		if v.MinorLine() == line {
			matches = append(matches, v)
		}
	}
	return matches
}

// Latest returns the newest version of the given minor line.
func (c Catalog) Latest(line MinorLine) (Version, error) {
	matches := c.forLine(line)
	if len(matches) == 0 {
		return Version{}, &NoVersionFoundError{Line: line}
	}
	return matches[0], nil
}

// SecondLatest returns the second-newest version of the given minor
// line. This is the conservative default: it lags one build behind the
// newest release so stacks never adopt an unvetted build. A line with
// a single known build returns that build rather than failing.
func (c Catalog) SecondLatest(line MinorLine) (Version, error) {
	matches := c.forLine(line)
	switch len(matches) {
	case 0:
		return Version{}, &NoVersionFoundError{Line: line}
	case 1:
		return matches[0], nil
	default:
		return matches[1], nil
	}
}

// Package semver wraps github.com/Masterminds/semver/v3 with the range forms
// used by package manifests: exact pins, caret and tilde ranges, wildcards and
// dist-tags.
package semver

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// tagPattern matches dist-tag style ranges such as "next" or "beta".
var tagPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)

// Range is a parsed version range. The zero value is the wildcard range.
type Range struct {
	raw   string
	exact string
	tag   string
	c     *mm.Constraints
}

// ParseRange parses a range as it appears in a dependency declaration.
//
// The empty string, "*", "x" and "latest" are wildcards. A full version is
// an exact pin. Any other identifier that is not a valid constraint is kept
// as a dist-tag.
func ParseRange(raw string) (Range, error) {
	trimmed := strings.TrimSpace(raw)
	switch trimmed {
	case "", "*", "x", "X", "latest":
		return Range{raw: trimmed}, nil
	}

	if v, ok := strictVersion(trimmed); ok {
		return Range{raw: trimmed, exact: v}, nil
	}

	c, err := mm.NewConstraint(trimmed)
	if err == nil {
		return Range{raw: trimmed, c: c}, nil
	}

	if tagPattern.MatchString(trimmed) {
		return Range{raw: trimmed, tag: trimmed}, nil
	}

	return Range{}, fmt.Errorf("semver: parse range %q: %w", raw, err)
}

// MustParseRange is like ParseRange but panics on error.
func MustParseRange(raw string) Range {
	r, err := ParseRange(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// Exact returns a range pinned to version.
func Exact(version string) Range {
	return Range{raw: version, exact: normalize(version)}
}

// String returns the range as it was written.
func (r Range) String() string {
	return r.raw
}

// IsExact reports whether the range pins a single version.
func (r Range) IsExact() bool {
	return r.exact != ""
}

// ExactVersion returns the pinned version of an exact range.
func (r Range) ExactVersion() string {
	return r.exact
}

// IsWildcard reports whether any released version satisfies the range.
func (r Range) IsWildcard() bool {
	return r.exact == "" && r.tag == "" && r.c == nil
}

// Tag returns the dist-tag of a tag range.
func (r Range) Tag() (string, bool) {
	return r.tag, r.tag != ""
}

// Satisfies reports whether version is within the range. Tag ranges are
// never satisfied locally: only the origin knows what a tag points at.
func (r Range) Satisfies(version string) bool {
	if r.tag != "" {
		return false
	}
	if r.exact != "" {
		return normalize(version) == r.exact
	}
	v, err := mm.NewVersion(version)
	if err != nil {
		return false
	}
	if r.c == nil {
		return v.Prerelease() == ""
	}
	return r.c.Check(v)
}

// MarshalText implements encoding.TextMarshaler.
func (r Range) MarshalText() ([]byte, error) {
	return []byte(r.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Range) UnmarshalText(text []byte) error {
	parsed, err := ParseRange(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Valid reports whether version parses as a semantic version.
func Valid(version string) bool {
	_, err := mm.NewVersion(version)
	return err == nil
}

// Compare orders two versions, returning -1, 0 or 1. Versions that do not
// parse sort before those that do and are ordered lexically among themselves.
func Compare(a, b string) int {
	va, errA := mm.NewVersion(a)
	vb, errB := mm.NewVersion(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	if c := va.Compare(vb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Sort orders versions ascending in place.
func Sort(versions []string) {
	slices.SortFunc(versions, Compare)
}

// MaxSatisfying returns the highest version in candidates within r.
//
// If multiple versions are equal, the first encountered wins.
func MaxSatisfying(candidates []string, r Range) (string, bool) {
	var best string
	found := false
	for _, candidate := range candidates {
		if !r.Satisfies(candidate) {
			continue
		}
		if !found || Compare(candidate, best) > 0 {
			best = candidate
			found = true
		}
	}
	return best, found
}

func strictVersion(raw string) (string, bool) {
	candidate := normalize(raw)
	if _, err := mm.StrictNewVersion(candidate); err != nil {
		return "", false
	}
	return candidate, true
}

func normalize(version string) string {
	v := strings.TrimPrefix(strings.TrimSpace(version), "=")
	return strings.TrimPrefix(v, "v")
}

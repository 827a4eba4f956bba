package domain

import (
	"fmt"
	"strings"

	"go.trai.ch/lockmap/internal/semver"
	"go.trai.ch/zerr"
)

// PackageName identifies a package within a registry, e.g. npm:react.
type PackageName struct {
	Registry string
	Name     string
}

func (p PackageName) String() string {
	return p.Registry + ":" + p.Name
}

// MarshalText implements encoding.TextMarshaler.
func (p PackageName) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PackageName) UnmarshalText(text []byte) error {
	registry, name, ok := strings.Cut(string(text), ":")
	if !ok || registry == "" || name == "" {
		return zerr.With(zerr.Wrap(ErrInvalidCoordinate, "expected registry:name"), "value", string(text))
	}
	*p = PackageName{Registry: registry, Name: name}
	return nil
}

// Coordinate is a resolved package identity. Its text form is
// "registry:name@version" and it is comparable, so it is used directly as a
// map key wherever an exact name is needed.
type Coordinate struct {
	Registry string
	Name     string
	Version  string
}

// Package returns the package the coordinate belongs to.
func (c Coordinate) Package() PackageName {
	return PackageName{Registry: c.Registry, Name: c.Name}
}

// ExactName returns "name@version".
func (c Coordinate) ExactName() string {
	return c.Name + "@" + c.Version
}

func (c Coordinate) String() string {
	return c.Registry + ":" + c.Name + "@" + c.Version
}

// MarshalText implements encoding.TextMarshaler.
func (c Coordinate) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Coordinate) UnmarshalText(text []byte) error {
	parsed, err := ParseCoordinate(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCoordinate parses "registry:name@version".
func ParseCoordinate(s string) (Coordinate, error) {
	registry, rest, ok := strings.Cut(s, ":")
	if !ok || registry == "" {
		return Coordinate{}, zerr.With(zerr.Wrap(ErrInvalidCoordinate, "missing registry"), "value", s)
	}
	name, version, ok := splitNameVersion(rest)
	if !ok || version == "" {
		return Coordinate{}, zerr.With(zerr.Wrap(ErrInvalidCoordinate, "missing version"), "value", s)
	}
	return Coordinate{Registry: registry, Name: name, Version: version}, nil
}

// VersionTarget is an unresolved request for a package version.
type VersionTarget struct {
	Registry string
	Name     string
	Range    semver.Range
}

// Package returns the requested package.
func (t VersionTarget) Package() PackageName {
	return PackageName{Registry: t.Registry, Name: t.Name}
}

func (t VersionTarget) String() string {
	if r := t.Range.String(); r != "" {
		return t.Registry + ":" + t.Name + "@" + r
	}
	return t.Registry + ":" + t.Name
}

// MarshalText implements encoding.TextMarshaler.
func (t VersionTarget) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *VersionTarget) UnmarshalText(text []byte) error {
	registry, rest, ok := strings.Cut(string(text), ":")
	if !ok {
		return zerr.With(zerr.Wrap(ErrInvalidSpecifier, "missing registry"), "value", string(text))
	}
	parsed, err := ParseVersionTarget(registry, rest)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseVersionTarget parses "name[@range]" in registry.
func ParseVersionTarget(registry, s string) (VersionTarget, error) {
	name, raw, _ := splitNameVersion(s)
	if err := ValidatePackageName(name); err != nil {
		return VersionTarget{}, zerr.With(err, "value", s)
	}
	r, err := semver.ParseRange(raw)
	if err != nil {
		return VersionTarget{}, zerr.With(zerr.Wrap(fmt.Errorf("%w: %w", ErrInvalidVersionRange, err), "failed to parse range"), "package", name)
	}
	return VersionTarget{Registry: registry, Name: name, Range: r}, nil
}

// ParseDependency parses one manifest dependency entry. The range may carry
// its own registry ("npm:other@^1") which overrides defaultRegistry and
// aliases the local name to another package.
func ParseDependency(localName, raw, defaultRegistry string) (VersionTarget, error) {
	if registry, rest, ok := strings.Cut(raw, ":"); ok && IsRegistryTag(registry) {
		return ParseVersionTarget(registry, rest)
	}
	r, err := semver.ParseRange(raw)
	if err != nil {
		return VersionTarget{}, zerr.With(zerr.Wrap(fmt.Errorf("%w: %w", ErrInvalidVersionRange, err), "failed to parse range"), "package", localName)
	}
	return VersionTarget{Registry: defaultRegistry, Name: localName, Range: r}, nil
}

// ValidatePackageName checks the shape of a (possibly scoped) package name.
func ValidatePackageName(name string) error {
	switch {
	case name == "":
		return zerr.Wrap(ErrInvalidSpecifier, "empty package name")
	case strings.HasPrefix(name, "@"):
		scope, pkg, ok := strings.Cut(name[1:], "/")
		if !ok || scope == "" || pkg == "" || strings.Contains(pkg, "/") {
			return zerr.With(zerr.Wrap(ErrInvalidSpecifier, "scoped names must be @scope/name"), "name", name)
		}
	}
	return nil
}

// SplitSpecifier splits a bare specifier into its package name and "./"
// subpath: "@scope/pkg/sub" -> ("@scope/pkg", "./sub"), "pkg" -> ("pkg", ".").
func SplitSpecifier(specifier string) (name, subpath string) {
	parts := strings.SplitN(specifier, "/", 3)
	n := 1
	if strings.HasPrefix(specifier, "@") && len(parts) > 1 {
		n = 2
	}
	if len(parts) <= n {
		return specifier, "."
	}
	name = strings.Join(parts[:n], "/")
	return name, "./" + strings.TrimPrefix(specifier, name+"/")
}

// splitNameVersion splits "name@version" honoring a leading scope "@".
func splitNameVersion(s string) (name, version string, ok bool) {
	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return s, "", false
	}
	return s[:at], s[at+1:], true
}

// Registries understood in dependency ranges and install targets.
const (
	RegistryNPM   = "npm"
	RegistryDeno  = "deno"
	RegistryLocal = "local"
)

// IsRegistryTag reports whether s names a registry that may prefix a target.
func IsRegistryTag(s string) bool {
	switch s {
	case RegistryNPM, RegistryDeno, RegistryLocal:
		return true
	}
	return false
}

// BuiltinTarget is the rewrite of a builtin specifier such as "node:fs".
type BuiltinTarget struct {
	// Specifier is the normalized builtin specifier used as the import key.
	Specifier string
	// Alias is the package-like portion of the specifier ("deno:fs").
	Alias string
	// Subpath is the portion after the alias ("./copy.ts" or ".").
	Subpath string
	// Target is the package that serves the builtin.
	Target VersionTarget
	// PackageSubpath is the subpath inside Target the alias maps to.
	PackageSubpath string
}

// ResolvedSubpath joins PackageSubpath and Subpath into one package subpath.
func (b BuiltinTarget) ResolvedSubpath() string {
	base := b.PackageSubpath
	if base == "" {
		base = "."
	}
	if b.Subpath == "" || b.Subpath == "." {
		return base
	}
	return strings.TrimSuffix(base, "/") + strings.TrimPrefix(b.Subpath, ".")
}

// ParsedURL is the result of recognizing a URL as coming from a provider.
type ParsedURL struct {
	Coordinate Coordinate
	// BuiltinAlias is set when the URL is the target of a builtin specifier.
	BuiltinAlias string
	Layer        string
	// Subpath is the "./"-relative remainder of the URL below the package root.
	Subpath string
}

package installer

import (
	"cmp"
	"errors"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/semver"
	"go.trai.ch/zerr"
)

// Request is one primary install.
type Request struct {
	// Alias is the import name. Empty for local path targets until the
	// package manifest names it.
	Alias  string
	Target domain.VersionTarget
	// Subpath is the requested export of the package, "." for its main entry.
	Subpath string
	// Builtin is set when the request came from a builtin specifier.
	Builtin *domain.BuiltinTarget
	// Fresh requests a provider lookup even when a locked version satisfies
	// the target.
	Fresh bool
	// Upgrade marks explicit upgrade intent: the latest version is taken
	// even when an installed version would avoid a fork.
	Upgrade bool
}

func (r Request) String() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.Target.String()
}

// LocateOptions control how install targets are interpreted.
type LocateOptions struct {
	// Root is the directory relative paths are resolved against.
	Root string
	// LocalRoot is the directory local package names are relative to.
	LocalRoot       string
	DefaultRegistry string
	Env             *domain.ConditionSet
	Builtins        ports.ProviderRegistry
	// IsLocalPackage reports whether a bare target names a directory below
	// Root that holds a package manifest.
	IsLocalPackage func(path string) bool
}

// Locate parses one install target of the form
// "[alias=][registry:]name[@range][/subpath]" or a local path.
// Builtin specifiers are offered to the providers first; a registry prefix
// forces registry resolution even when a local directory of that name exists.
func Locate(raw string, opts LocateOptions) (Request, error) {
	spec := strings.TrimSpace(raw)
	if spec == "" {
		return Request{}, zerr.Wrap(domain.ErrInvalidSpecifier, "empty install target")
	}

	var alias string
	if a, rest, ok := strings.Cut(spec, "="); ok && validAlias(a) {
		alias, spec = a, rest
	}

	if opts.Builtins != nil {
		if b, ok := opts.Builtins.ResolveBuiltin(spec, opts.Env); ok {
			return Request{
				Alias:   cmp.Or(alias, b.Specifier),
				Target:  b.Target,
				Subpath: b.ResolvedSubpath(),
				Builtin: b,
			}, nil
		}
	}

	if registry, rest, ok := strings.Cut(spec, ":"); ok && domain.IsRegistryTag(registry) {
		if registry == domain.RegistryLocal {
			return locateLocalName(alias, rest)
		}
		return locatePackage(alias, registry, rest)
	}

	if isPath(spec) || (opts.IsLocalPackage != nil && !strings.HasPrefix(spec, "@") && opts.IsLocalPackage(spec)) {
		return locateLocalPath(alias, spec, opts)
	}

	registry := cmp.Or(opts.DefaultRegistry, domain.RegistryNPM)
	return locatePackage(alias, registry, spec)
}

// FromManifest turns the declared dependencies of a project manifest into
// requests on the reuse path.
func FromManifest(cfg *domain.PackageConfig, dev bool, defaultRegistry string) ([]Request, error) {
	declared := cfg.RuntimeDependencies()
	if dev {
		for name, raw := range cfg.DevDependencies.Ranges {
			if _, ok := declared[name]; !ok {
				declared[name] = raw
			}
		}
	}

	var (
		requests []Request
		errs     []error
	)
	for _, name := range slices.Sorted(maps.Keys(declared)) {
		target, err := domain.ParseDependency(name, declared[name], defaultRegistry)
		if err != nil {
			errs = append(errs, zerr.Wrap(err, "dependency "+name))
			continue
		}
		requests = append(requests, Request{Alias: name, Target: target, Subpath: "."})
	}
	return requests, errors.Join(errs...)
}

func locatePackage(alias, registry, s string) (Request, error) {
	name, rng, subpath, err := splitTarget(s)
	if err != nil {
		return Request{}, err
	}
	if err := domain.ValidatePackageName(name); err != nil {
		return Request{}, zerr.With(err, "target", s)
	}
	r, err := semver.ParseRange(rng)
	if err != nil {
		return Request{}, zerr.With(zerr.Wrap(errors.Join(domain.ErrInvalidVersionRange, err), "target "+s), "target", s)
	}
	return Request{
		Alias:   cmp.Or(alias, name),
		Target:  domain.VersionTarget{Registry: registry, Name: name, Range: r},
		Subpath: subpath,
	}, nil
}

func locateLocalName(alias, s string) (Request, error) {
	name, rng := s, ""
	if at := strings.LastIndex(s, "@"); at > 0 {
		name, rng = s[:at], s[at+1:]
	}
	r, err := semver.ParseRange(rng)
	if err != nil {
		return Request{}, zerr.With(zerr.Wrap(errors.Join(domain.ErrInvalidVersionRange, err), "target local:"+s), "target", s)
	}
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(name)))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || filepath.IsAbs(name) {
		return Request{}, zerr.With(zerr.Wrap(domain.ErrNotLocalPath, "local:"+s), "target", s)
	}
	return Request{
		Alias:   alias,
		Target:  domain.VersionTarget{Registry: domain.RegistryLocal, Name: clean, Range: r},
		Subpath: ".",
	}, nil
}

func locateLocalPath(alias, spec string, opts LocateOptions) (Request, error) {
	abs := spec
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(opts.Root, filepath.FromSlash(spec))
	}
	localRoot := cmp.Or(opts.LocalRoot, opts.Root)
	rel, err := filepath.Rel(localRoot, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Request{}, zerr.With(zerr.Wrap(domain.ErrNotLocalPath, spec+" is outside "+localRoot), "target", spec)
	}
	return Request{
		Alias:   alias,
		Target:  domain.VersionTarget{Registry: domain.RegistryLocal, Name: filepath.ToSlash(rel)},
		Subpath: ".",
	}, nil
}

// splitTarget splits "name[@range][/subpath]" honoring scoped names.
func splitTarget(s string) (name, rng, subpath string, err error) {
	start := 0
	if strings.HasPrefix(s, "@") {
		slash := strings.IndexByte(s, '/')
		if slash < 0 {
			return "", "", "", zerr.With(zerr.Wrap(domain.ErrInvalidSpecifier, "scoped names must be @scope/name"), "target", s)
		}
		start = slash + 1
	}

	subpath = "."
	end := strings.IndexAny(s[start:], "@/")
	if end < 0 {
		return s, "", subpath, nil
	}
	end += start
	name, rest := s[:end], s[end:]

	if after, ok := strings.CutPrefix(rest, "@"); ok {
		var sub string
		rng, sub, _ = strings.Cut(after, "/")
		if sub != "" {
			subpath = "./" + sub
		}
		return name, rng, subpath, nil
	}
	if sub := strings.TrimPrefix(rest, "/"); sub != "" {
		subpath = "./" + sub
	}
	return name, "", subpath, nil
}

func isPath(spec string) bool {
	return spec == "." || spec == ".." ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || filepath.IsAbs(spec)
}

// validAlias accepts plain and scoped package names without range syntax.
func validAlias(a string) bool {
	if a == "" || domain.ValidatePackageName(a) != nil {
		return false
	}
	return !strings.ContainsAny(a[1:], "@<>~^:* ")
}

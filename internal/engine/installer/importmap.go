package installer

import (
	"maps"
	"slices"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/semver"
)

// FromImportMap reconstructs a dependency graph from an existing import
// map when no lockfile is available. Every recognized URL is pinned to its
// exact version. Scopes keyed by a package root become that package's
// scope; flattened scopes keyed by an origin only register their versions,
// so the next install resolves those parents through the reuse check.
//
// URLs no provider recognizes are returned so the caller can report them.
func FromImportMap(m *domain.ImportMap, registry ports.ProviderRegistry) (*domain.DependencyGraph, []string) {
	g := domain.NewDependencyGraph()
	g.SetEnv(m.Env)

	tags := m.Env
	if len(tags) == 0 {
		tags = domain.DefaultConditions
	}
	env := domain.NewConditionSet(tags, nil)

	var skipped []string
	for _, specifier := range slices.Sorted(maps.Keys(m.Imports)) {
		url := m.Imports[specifier]
		_, parsed, ok := registry.ForURL(url)
		if !ok {
			skipped = append(skipped, url)
			continue
		}

		name := specifier
		if _, builtin := registry.ResolveBuiltin(specifier, env); !builtin {
			name, _ = domain.SplitSpecifier(specifier)
		}
		if _, exists := g.Primary(name); exists {
			continue
		}
		c := parsed.Coordinate
		g.SetPrimary(name, c, domain.VersionTarget{Registry: c.Registry, Name: c.Name, Range: semver.Exact(c.Version)})
	}

	for _, scopeURL := range m.ScopeURLs() {
		scope := m.Scopes[scopeURL]
		_, owner, isPackage := registry.ForURL(scopeURL)
		isPackage = isPackage && owner.Subpath == "."

		for _, specifier := range slices.Sorted(maps.Keys(scope)) {
			url := scope[specifier]
			_, parsed, ok := registry.ForURL(url)
			if !ok {
				skipped = append(skipped, url)
				continue
			}
			c := parsed.Coordinate
			if !isPackage {
				g.AddVersion(c)
				continue
			}
			local, _ := domain.SplitSpecifier(specifier)
			if _, exists := g.Scope(owner.Coordinate)[local]; exists {
				continue
			}
			g.AddVersion(owner.Coordinate)
			g.SetScopeEntry(owner.Coordinate, local, domain.Edge{Target: c, Range: semver.Exact(c.Version)})
		}
	}

	slices.Sort(skipped)
	return g, slices.Compact(skipped)
}

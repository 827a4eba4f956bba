package domain

import (
	"cmp"
	"errors"
	"iter"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/lockmap/internal/semver"
	"go.trai.ch/zerr"
)

// Edge is a resolved dependency: the coordinate it points at and the range
// that selected it.
type Edge struct {
	Target Coordinate
	Range  semver.Range
}

// Consumer is one edge that points at an installed version. Parent is nil
// for primary installs.
type Consumer struct {
	Parent *Coordinate
	Local  string
	Edge
}

// Path renders the consumer as "parent > local" or just "local".
func (c Consumer) Path() string {
	if c.Parent == nil {
		return c.Local
	}
	return c.Parent.String() + " > " + c.Local
}

// DependencyGraph is the lockfile model. It is mutated only by the installer
// and never shared across goroutines without external locking.
type DependencyGraph struct {
	env          []string
	primaries    map[string]Coordinate
	dependencies map[string]VersionTarget
	versions     map[PackageName][]string
	scopes       map[Coordinate]map[string]Edge
}

// NewDependencyGraph creates a new empty DependencyGraph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		primaries:    make(map[string]Coordinate),
		dependencies: make(map[string]VersionTarget),
		versions:     make(map[PackageName][]string),
		scopes:       make(map[Coordinate]map[string]Edge),
	}
}

// Clone returns a deep copy of the graph.
func (g *DependencyGraph) Clone() *DependencyGraph {
	c := &DependencyGraph{
		env:          slices.Clone(g.env),
		primaries:    maps.Clone(g.primaries),
		dependencies: maps.Clone(g.dependencies),
		versions:     make(map[PackageName][]string, len(g.versions)),
		scopes:       make(map[Coordinate]map[string]Edge, len(g.scopes)),
	}
	for pkg, versions := range g.versions {
		c.versions[pkg] = slices.Clone(versions)
	}
	for parent, scope := range g.scopes {
		c.scopes[parent] = maps.Clone(scope)
	}
	return c
}

// Env returns the condition set recorded with the graph.
func (g *DependencyGraph) Env() []string {
	return slices.Clone(g.env)
}

// SetEnv records the condition set the graph was resolved for.
func (g *DependencyGraph) SetEnv(env []string) {
	g.env = slices.Clone(env)
}

// IsEmpty reports whether nothing is installed.
func (g *DependencyGraph) IsEmpty() bool {
	return len(g.primaries) == 0 && len(g.versions) == 0
}

// PrimaryNames returns the local names of all primary installs, sorted.
func (g *DependencyGraph) PrimaryNames() []string {
	return slices.Sorted(maps.Keys(g.primaries))
}

// Primary returns the coordinate installed for a primary name.
func (g *DependencyGraph) Primary(name string) (Coordinate, bool) {
	c, ok := g.primaries[name]
	return c, ok
}

// Dependency returns the declared target of a primary name.
func (g *DependencyGraph) Dependency(name string) (VersionTarget, bool) {
	t, ok := g.dependencies[name]
	return t, ok
}

// SetPrimary installs c as the primary for name, declared by target.
func (g *DependencyGraph) SetPrimary(name string, c Coordinate, target VersionTarget) {
	g.AddVersion(c)
	g.primaries[name] = c
	g.dependencies[name] = target
}

// RemovePrimary drops a primary install and its declaration. The version
// stays installed until it is deprecated or pruned.
func (g *DependencyGraph) RemovePrimary(name string) (Coordinate, bool) {
	c, ok := g.primaries[name]
	if !ok {
		return Coordinate{}, false
	}
	delete(g.primaries, name)
	delete(g.dependencies, name)
	return c, true
}

// Packages returns every package with at least one installed version.
func (g *DependencyGraph) Packages() []PackageName {
	return slices.SortedFunc(maps.Keys(g.versions), comparePackages)
}

// Versions returns the installed versions of pkg in ascending order.
func (g *DependencyGraph) Versions(pkg PackageName) []string {
	return slices.Clone(g.versions[pkg])
}

// HasVersion reports whether c is installed.
func (g *DependencyGraph) HasVersion(c Coordinate) bool {
	return slices.Contains(g.versions[c.Package()], c.Version)
}

// AddVersion registers c as installed. It reports false if it already was.
func (g *DependencyGraph) AddVersion(c Coordinate) bool {
	pkg := c.Package()
	versions := g.versions[pkg]
	if slices.Contains(versions, c.Version) {
		return false
	}
	versions = append(versions, c.Version)
	semver.Sort(versions)
	g.versions[pkg] = versions
	return true
}

// RemoveVersion uninstalls c along with its own scope. Callers must have
// retargeted every consumer first.
func (g *DependencyGraph) RemoveVersion(c Coordinate) {
	pkg := c.Package()
	versions := slices.DeleteFunc(g.versions[pkg], func(v string) bool { return v == c.Version })
	if len(versions) == 0 {
		delete(g.versions, pkg)
	} else {
		g.versions[pkg] = versions
	}
	delete(g.scopes, c)
}

// Coordinates yields every installed coordinate in sorted order.
func (g *DependencyGraph) Coordinates() iter.Seq[Coordinate] {
	return func(yield func(Coordinate) bool) {
		for _, pkg := range g.Packages() {
			for _, v := range g.versions[pkg] {
				if !yield(Coordinate{Registry: pkg.Registry, Name: pkg.Name, Version: v}) {
					return
				}
			}
		}
	}
}

// Parents returns every coordinate that has a scope, sorted.
func (g *DependencyGraph) Parents() []Coordinate {
	return slices.SortedFunc(maps.Keys(g.scopes), CompareCoordinates)
}

// HasScope reports whether the dependencies of parent have been resolved.
func (g *DependencyGraph) HasScope(parent Coordinate) bool {
	_, ok := g.scopes[parent]
	return ok
}

// Scope returns a copy of the resolved dependencies of parent.
func (g *DependencyGraph) Scope(parent Coordinate) map[string]Edge {
	return maps.Clone(g.scopes[parent])
}

// EnsureScope marks the dependencies of parent as resolved, even if it has none.
func (g *DependencyGraph) EnsureScope(parent Coordinate) {
	if _, ok := g.scopes[parent]; !ok {
		g.scopes[parent] = make(map[string]Edge)
	}
}

// SetScopeEntry records that parent resolves local to e.
func (g *DependencyGraph) SetScopeEntry(parent Coordinate, local string, e Edge) {
	g.AddVersion(e.Target)
	g.EnsureScope(parent)
	g.scopes[parent][local] = e
}

// Consumers returns every edge that points at a version of pkg, primaries
// first, each group in sorted order.
func (g *DependencyGraph) Consumers(pkg PackageName) []Consumer {
	var out []Consumer
	for _, name := range g.PrimaryNames() {
		c := g.primaries[name]
		if c.Package() != pkg {
			continue
		}
		out = append(out, Consumer{Local: name, Edge: Edge{Target: c, Range: g.dependencies[name].Range}})
	}
	for _, parent := range g.Parents() {
		scope := g.scopes[parent]
		for _, local := range slices.Sorted(maps.Keys(scope)) {
			e := scope[local]
			if e.Target.Package() != pkg {
				continue
			}
			p := parent
			out = append(out, Consumer{Parent: &p, Local: local, Edge: e})
		}
	}
	return out
}

// Retarget points one consumer at a different installed version.
func (g *DependencyGraph) Retarget(c Consumer, to Coordinate) {
	g.AddVersion(to)
	if c.Parent == nil {
		g.primaries[c.Local] = to
		return
	}
	if scope, ok := g.scopes[*c.Parent]; ok {
		e := scope[c.Local]
		e.Target = to
		scope[c.Local] = e
	}
}

// Walk yields every coordinate reachable from the primaries, depth first,
// each once. Cycles between packages are legal and simply stop the descent.
func (g *DependencyGraph) Walk() iter.Seq[Coordinate] {
	return func(yield func(Coordinate) bool) {
		visited := make(map[Coordinate]bool)

		var visit func(c Coordinate) bool
		visit = func(c Coordinate) bool {
			if visited[c] {
				return true
			}
			visited[c] = true
			if !yield(c) {
				return false
			}
			scope := g.scopes[c]
			for _, local := range slices.Sorted(maps.Keys(scope)) {
				if !visit(scope[local].Target) {
					return false
				}
			}
			return true
		}

		for _, name := range g.PrimaryNames() {
			if !visit(g.primaries[name]) {
				return
			}
		}
	}
}

// Prune uninstalls every version not reachable from a primary and returns
// the removed coordinates in sorted order.
func (g *DependencyGraph) Prune() []Coordinate {
	reachable := make(map[Coordinate]bool)
	for c := range g.Walk() {
		reachable[c] = true
	}

	var removed []Coordinate
	for c := range g.Coordinates() {
		if !reachable[c] {
			removed = append(removed, c)
		}
	}
	for _, c := range removed {
		g.RemoveVersion(c)
	}
	for parent := range g.scopes {
		if !g.HasVersion(parent) {
			delete(g.scopes, parent)
		}
	}
	return removed
}

// Validate checks the graph invariants: every referenced coordinate is
// installed, no version is listed twice and every primary has a declaration.
func (g *DependencyGraph) Validate() error {
	var errs []error
	violation := func(msg string, kv ...string) {
		err := zerr.Wrap(ErrGraphInconsistent, msg)
		for i := 0; i+1 < len(kv); i += 2 {
			err = zerr.With(err, kv[i], kv[i+1])
		}
		errs = append(errs, err)
	}

	for _, name := range g.PrimaryNames() {
		c := g.primaries[name]
		if !g.HasVersion(c) {
			violation("primary points at a version that is not installed", "name", name, "coordinate", c.String())
		}
		if _, ok := g.dependencies[name]; !ok {
			violation("primary has no declared target", "name", name)
		}
	}
	for name := range g.dependencies {
		if _, ok := g.primaries[name]; !ok {
			violation("declared target has no primary install", "name", name)
		}
	}
	for _, pkg := range g.Packages() {
		versions := g.versions[pkg]
		if len(slices.Compact(slices.Sorted(slices.Values(versions)))) != len(versions) {
			violation("duplicate installed version", "package", pkg.String(), "versions", strings.Join(versions, ","))
		}
	}
	for _, parent := range g.Parents() {
		if !g.HasVersion(parent) {
			violation("scope belongs to a version that is not installed", "coordinate", parent.String())
		}
		scope := g.scopes[parent]
		for _, local := range slices.Sorted(maps.Keys(scope)) {
			if target := scope[local].Target; !g.HasVersion(target) {
				violation("dependency points at a version that is not installed",
					"parent", parent.String(), "name", local, "coordinate", target.String())
			}
		}
	}
	return errors.Join(errs...)
}

// CompareCoordinates orders coordinates by registry, name, then version.
func CompareCoordinates(a, b Coordinate) int {
	if c := comparePackages(a.Package(), b.Package()); c != 0 {
		return c
	}
	return semver.Compare(a.Version, b.Version)
}

func comparePackages(a, b PackageName) int {
	return cmp.Or(cmp.Compare(a.Registry, b.Registry), cmp.Compare(a.Name, b.Name))
}

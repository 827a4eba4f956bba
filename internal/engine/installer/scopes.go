package installer

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/semver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// depPlan is one declared dependency of a parent awaiting resolution.
type depPlan struct {
	parent   domain.Coordinate
	local    string
	target   domain.VersionTarget
	optional bool
	path     string

	reuse    domain.Coordinate
	reused   bool
	resolved domain.Coordinate
	err      error
}

// resolveScopes resolves the dependencies of every reachable version that
// has no scope yet, one breadth-first level at a time. Provider calls of a
// level run concurrently; commits are applied in a stable order so the
// resulting graph does not depend on scheduling.
func (s *session) resolveScopes(ctx context.Context) error {
	var errs []error
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.mu.Lock()
		parents := s.pendingParents()
		s.mu.Unlock()
		if len(parents) == 0 {
			break
		}

		plans, err := s.planLevel(ctx, parents)
		errs = append(errs, err)

		s.mu.Lock()
		for _, p := range plans {
			p.reuse, p.reused = s.reuseCheck(p)
		}
		s.mu.Unlock()

		if err := s.lookupLevel(ctx, plans); err != nil {
			return err
		}

		s.mu.Lock()
		errs = append(errs, s.commitLevel(parents, plans))
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

// pendingParents returns reachable versions whose dependencies still need
// resolving and marks them scheduled. A version already scheduled in this
// session is never returned again, which is what terminates cycles.
// Callers hold s.mu.
func (s *session) pendingParents() []domain.Coordinate {
	var out []domain.Coordinate
	for c := range s.graph.Walk() {
		if s.scheduled[c] {
			continue
		}
		if s.graph.HasScope(c) && !s.dirty[c] {
			continue
		}
		s.scheduled[c] = true
		delete(s.dirty, c)
		out = append(out, c)
	}
	slices.SortFunc(out, domain.CompareCoordinates)
	return out
}

// planLevel fetches the manifests of parents and lists their dependencies.
func (s *session) planLevel(ctx context.Context, parents []domain.Coordinate) ([]*depPlan, error) {
	perParent := make([][]*depPlan, len(parents))
	errs := make([]error, len(parents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallelism)
	for idx, parent := range parents {
		s.mu.Lock()
		parentPath := cmp.Or(s.paths[parent], parent.String())
		s.mu.Unlock()

		g.Go(func() error {
			cfg, err := s.config(gctx, parent)
			if err != nil {
				errs[idx] = zerr.With(zerr.Wrap(err, parentPath), "package", parent.String())
				return nil
			}
			perParent[idx], errs[idx] = s.planDependencies(parent, parentPath, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var plans []*depPlan
	for _, p := range perParent {
		plans = append(plans, p...)
	}
	return plans, errors.Join(errs...)
}

// planDependencies turns the manifest of parent into plans. Local packages
// depend on the default registry; everything else stays in its own.
func (s *session) planDependencies(parent domain.Coordinate, parentPath string, cfg *domain.PackageConfig) ([]*depPlan, error) {
	registry := parent.Registry
	if registry == domain.RegistryLocal {
		registry = s.opts.DefaultRegistry
	}

	declared := cfg.RuntimeDependencies()
	optional := make(map[string]string)
	for name, raw := range cfg.OptionalDependencies.Ranges {
		if _, ok := declared[name]; !ok {
			optional[name] = raw
		}
	}

	var (
		plans []*depPlan
		errs  []error
	)
	for _, invalid := range slices.Concat(cfg.Dependencies.Invalid, cfg.PeerDependencies.Invalid) {
		errs = append(errs, zerr.With(zerr.Wrap(domain.ErrInvalidManifest, joinPath(parentPath, invalid)+": range must be a string"),
			"package", parent.String()))
	}

	add := func(ranges map[string]string, isOptional bool) {
		for _, local := range slices.Sorted(maps.Keys(ranges)) {
			path := joinPath(parentPath, local)
			target, err := domain.ParseDependency(local, ranges[local], registry)
			if err != nil {
				if isOptional {
					s.mu.Lock()
					s.skip(domain.Coordinate{Registry: registry, Name: local}, path, err)
					s.mu.Unlock()
					continue
				}
				errs = append(errs, zerr.Wrap(err, path))
				continue
			}
			plans = append(plans, &depPlan{
				parent:   parent,
				local:    local,
				target:   target,
				optional: isOptional,
				path:     path,
			})
		}
	}
	add(declared, false)
	add(optional, true)
	return plans, errors.Join(errs...)
}

// reuseCheck applies the reuse rule to a secondary install: the edge already
// recorded for it wins, then the highest installed version satisfying the
// range. Packages named for update skip the check. Callers hold s.mu.
func (s *session) reuseCheck(p *depPlan) (domain.Coordinate, bool) {
	if s.fresh[p.target.Name] {
		return domain.Coordinate{}, false
	}
	if e, ok := s.graph.Scope(p.parent)[p.local]; ok &&
		e.Target.Package() == p.target.Package() &&
		e.Range.String() == p.target.Range.String() &&
		s.graph.HasVersion(e.Target) {
		return e.Target, true
	}
	pkg := p.target.Package()
	if v, ok := semver.MaxSatisfying(s.graph.Versions(pkg), p.target.Range); ok {
		return domain.Coordinate{Registry: pkg.Registry, Name: pkg.Name, Version: v}, true
	}
	return domain.Coordinate{}, false
}

// lookupLevel resolves every plan the reuse check could not serve. Identical
// targets share one lookup.
func (s *session) lookupLevel(ctx context.Context, plans []*depPlan) error {
	byTarget := make(map[string][]*depPlan)
	var order []string
	for _, p := range plans {
		if p.reused {
			continue
		}
		key := p.target.String()
		if _, ok := byTarget[key]; !ok {
			order = append(order, key)
		}
		byTarget[key] = append(byTarget[key], p)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallelism)
	for _, key := range order {
		group := byTarget[key]
		first := group[0]
		g.Go(func() error {
			c, err := s.lookup(gctx, first.target, s.pkgURL(first.parent), first.path)
			for _, p := range group {
				p.resolved = c
				if err != nil {
					p.err = zerr.With(zerr.Wrap(err, p.path), "target", p.target.String())
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// commitLevel records the resolved edges of one level. Callers hold s.mu.
func (s *session) commitLevel(parents []domain.Coordinate, plans []*depPlan) error {
	slices.SortStableFunc(plans, func(a, b *depPlan) int {
		return cmp.Or(domain.CompareCoordinates(a.parent, b.parent), cmp.Compare(a.local, b.local))
	})

	var errs []error
	for _, p := range plans {
		if !s.graph.HasVersion(p.parent) {
			continue
		}
		if p.err != nil {
			if p.optional {
				s.skip(domain.Coordinate{Registry: p.target.Registry, Name: p.target.Name}, p.path, p.err)
				continue
			}
			errs = append(errs, p.err)
			continue
		}

		chosen := p.resolved
		if p.reused {
			chosen = s.settle(p)
		}

		added := !s.graph.HasVersion(chosen)
		s.graph.SetScopeEntry(p.parent, p.local, domain.Edge{Target: chosen, Range: p.target.Range})
		if _, ok := s.paths[chosen]; !ok {
			s.paths[chosen] = p.path
		}
		if added {
			s.event(domain.Event{Kind: domain.EventAdded, Coordinate: chosen, Path: p.path})
		}
		s.reconcile(chosen, p.path, added)
	}

	for _, parent := range parents {
		if s.graph.HasVersion(parent) {
			s.graph.EnsureScope(parent)
		}
	}
	return errors.Join(errs...)
}

// settle re-checks a reused coordinate that an earlier commit of the same
// level may have deprecated. Callers hold s.mu.
func (s *session) settle(p *depPlan) domain.Coordinate {
	if s.graph.HasVersion(p.reuse) {
		return p.reuse
	}
	pkg := p.target.Package()
	if v, ok := semver.MaxSatisfying(s.graph.Versions(pkg), p.target.Range); ok {
		return domain.Coordinate{Registry: pkg.Registry, Name: pkg.Name, Version: v}
	}
	return p.reuse
}

// pkgURL returns the content root of c, or "" if no provider claims it.
func (s *session) pkgURL(c domain.Coordinate) string {
	provider, err := s.registry.ForRegistry(c.Registry)
	if err != nil {
		return ""
	}
	url, err := provider.PkgToURL(c, s.opts.Layer)
	if err != nil {
		return ""
	}
	return url
}

// skip reports an optional dependency that could not be installed.
// Callers hold s.mu.
func (s *session) skip(c domain.Coordinate, path string, err error) {
	s.event(domain.Event{
		Kind:       domain.EventSkipped,
		Coordinate: c,
		Path:       path,
		Detail:     err.Error(),
	})
}

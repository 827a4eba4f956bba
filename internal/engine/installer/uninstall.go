package installer

import (
	"context"
	"errors"
	"slices"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/zerr"
)

// Uninstall removes the named primaries from a copy of graph. Versions that
// lose their last critical range collapse into the remaining ones and
// unreachable versions are pruned.
func (i *Installer) Uninstall(
	ctx context.Context,
	graph *domain.DependencyGraph,
	names []string,
) (*domain.DependencyGraph, *domain.Report, error) {
	_, span := i.tracer.Start(ctx, "uninstall", ports.WithAttribute("lockmap.names", len(names)))
	defer span.End()

	if len(names) == 0 {
		return nil, nil, zerr.Wrap(domain.ErrNoTargetsSpecified, "nothing to uninstall")
	}

	s := i.newSession(graph, Options{Env: domain.NewConditionSet(graph.Env(), nil)})
	s.graph.SetEnv(graph.Env())

	var (
		errs     []error
		affected []domain.PackageName
	)
	for _, name := range names {
		c, ok := s.graph.RemovePrimary(name)
		if !ok {
			errs = append(errs, zerr.With(zerr.Wrap(domain.ErrPrimaryNotFound, name+" is not installed"), "name", name))
			continue
		}
		if !slices.Contains(affected, c.Package()) {
			affected = append(affected, c.Package())
		}
	}
	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	for _, pkg := range affected {
		s.collapse(pkg)
	}
	for _, c := range s.graph.Prune() {
		s.event(domain.Event{Kind: domain.EventDeprecated, Coordinate: c, Detail: "no longer referenced"})
	}
	if err := s.graph.Validate(); err != nil {
		span.RecordError(err)
		return nil, s.report, err
	}
	return s.graph, s.report, nil
}

// collapse deprecates every version of pkg that another installed version
// can stand in for. Callers hold s.mu or own the session exclusively.
func (s *session) collapse(pkg domain.PackageName) {
	for _, v := range s.graph.Versions(pkg) {
		versions := s.graph.Versions(pkg)
		if len(versions) < 2 {
			return
		}
		c := domain.Coordinate{Registry: pkg.Registry, Name: pkg.Name, Version: v}
		consumers := consumersOf(s.graph, c)
		if len(consumers) == 0 || len(criticalRanges(versions, c, consumers)) > 0 {
			continue
		}
		highest := versions[len(versions)-1]
		if highest == v {
			highest = versions[len(versions)-2]
		}
		s.deprecate(c, consumers, domain.Coordinate{Registry: pkg.Registry, Name: pkg.Name, Version: highest}, "")
	}
}

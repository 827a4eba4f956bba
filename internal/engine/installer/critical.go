package installer

import (
	"slices"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/semver"
)

// criticalRanges returns the distinct consumer ranges of c that no other
// version in versions satisfies. A version with critical ranges cannot be
// replaced without breaking one of its consumers.
func criticalRanges(versions []string, c domain.Coordinate, consumers []domain.Consumer) []string {
	var out []string
	for _, consumer := range consumers {
		r := consumer.Range
		if slices.ContainsFunc(versions, func(v string) bool {
			return v != c.Version && r.Satisfies(v)
		}) {
			continue
		}
		if s := r.String(); !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}

// consumersOf returns the edges pointing at exactly c.
func consumersOf(g *domain.DependencyGraph, c domain.Coordinate) []domain.Consumer {
	all := g.Consumers(c.Package())
	return slices.DeleteFunc(all, func(consumer domain.Consumer) bool {
		return consumer.Target != c
	})
}

// reconcile settles every other installed version of chosen's package after
// chosen was committed: versions left without critical ranges are
// deprecated and their consumers moved, the rest fork. Callers hold s.mu.
func (s *session) reconcile(chosen domain.Coordinate, path string, added bool) {
	pkg := chosen.Package()
	forkedWith := ""
	for _, v := range s.graph.Versions(pkg) {
		if v == chosen.Version {
			continue
		}
		other := domain.Coordinate{Registry: pkg.Registry, Name: pkg.Name, Version: v}
		if !s.graph.HasVersion(other) {
			continue
		}
		consumers := consumersOf(s.graph, other)
		critical := criticalRanges(s.graph.Versions(pkg), other, consumers)
		if len(critical) > 0 {
			forkedWith = other.Version
			s.logger.Debug("version kept for critical ranges",
				"package", other.String(), "ranges", describeRanges(critical))
			continue
		}
		s.deprecate(other, consumers, chosen, path)
	}

	if added && forkedWith != "" {
		s.event(domain.Event{
			Kind:       domain.EventForked,
			Coordinate: chosen,
			Path:       path,
			Detail:     "installed next to " + forkedWith,
		})
	}
}

// deprecate moves every consumer of old to the best remaining version and
// uninstalls it. Callers hold s.mu.
func (s *session) deprecate(old domain.Coordinate, consumers []domain.Consumer, chosen domain.Coordinate, path string) {
	remaining := slices.DeleteFunc(s.graph.Versions(old.Package()), func(v string) bool {
		return v == old.Version
	})
	for _, consumer := range consumers {
		to := chosen
		if v, ok := semver.MaxSatisfying(remaining, consumer.Range); ok {
			to = domain.Coordinate{Registry: old.Registry, Name: old.Name, Version: v}
		}
		s.graph.Retarget(consumer, to)
	}
	s.graph.RemoveVersion(old)
	delete(s.scheduled, old)
	delete(s.dirty, old)

	s.event(domain.Event{
		Kind:       domain.EventDeprecated,
		Coordinate: old,
		Path:       path,
		Detail:     "superseded by " + chosen.Version,
	})
}

// overrideCandidate looks for an installed version that satisfies target and
// would fork if latest were installed next to it. Reusing it avoids a
// second copy of the package. Callers hold s.mu.
func (s *session) overrideCandidate(target domain.VersionTarget, latest domain.Coordinate) (domain.Coordinate, bool) {
	pkg := latest.Package()
	installed := s.graph.Versions(pkg)
	withLatest := append(slices.Clone(installed), latest.Version)

	for _, v := range slices.Backward(installed) {
		if !target.Range.Satisfies(v) {
			continue
		}
		existing := domain.Coordinate{Registry: pkg.Registry, Name: pkg.Name, Version: v}
		consumers := consumersOf(s.graph, existing)
		if len(consumers) == 0 {
			continue
		}
		if len(criticalRanges(withLatest, existing, consumers)) > 0 {
			return existing, true
		}
	}
	return domain.Coordinate{}, false
}

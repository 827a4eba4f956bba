// Package installer resolves install requests into a deduplicated
// dependency graph with lockfile semantics.
package installer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"path"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/engine/exports"
	"go.trai.ch/lockmap/internal/semver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Options configure one install session.
type Options struct {
	Env   *domain.ConditionSet
	Layer string
	// DefaultRegistry resolves the dependencies of local packages.
	DefaultRegistry string
	// Parallelism bounds concurrent provider calls.
	Parallelism int
	// Fresh names packages whose transitive installs bypass the reuse check.
	Fresh []string
}

// Installer resolves install requests against the providers of one session.
type Installer struct {
	registry ports.ProviderRegistry
	tracer   ports.Tracer
	logger   ports.Logger
	metrics  ports.Metrics
}

// New creates an Installer with the given dependencies.
func New(
	registry ports.ProviderRegistry,
	tracer ports.Tracer,
	logger ports.Logger,
	metrics ports.Metrics,
) *Installer {
	return &Installer{
		registry: registry,
		tracer:   tracer,
		logger:   logger,
		metrics:  metrics,
	}
}

// Install resolves requests as primary installs on top of graph and returns
// the resulting graph. The input graph is never modified, so a failure
// leaves the caller with its last committed state.
func (i *Installer) Install(
	ctx context.Context,
	graph *domain.DependencyGraph,
	requests []Request,
	opts Options,
) (*domain.DependencyGraph, *domain.Report, error) {
	ctx, span := i.tracer.Start(ctx, "install", ports.WithAttribute("lockmap.requests", len(requests)))
	defer span.End()

	s := i.newSession(graph, opts)
	if err := s.run(ctx, requests); err != nil {
		span.RecordError(err)
		return nil, s.report, err
	}
	span.SetAttribute("lockmap.lookups", s.report.Lookups)
	return s.graph, s.report, nil
}

// session is the state of one Install call. Graph mutation and the
// scheduled set are guarded by mu; provider calls happen outside it.
type session struct {
	*Installer
	opts   Options
	report *domain.Report

	mu        sync.Mutex
	graph     *domain.DependencyGraph
	scheduled map[domain.Coordinate]bool
	dirty     map[domain.Coordinate]bool
	paths     map[domain.Coordinate]string
	fresh     map[string]bool

	configMu sync.Mutex
	configs  map[domain.Coordinate]*domain.PackageConfig
}

func (i *Installer) newSession(graph *domain.DependencyGraph, opts Options) *session {
	if opts.Env == nil {
		opts.Env = domain.NewConditionSet(domain.DefaultConditions, nil)
	}
	if opts.Layer == "" {
		opts.Layer = domain.DefaultLayer
	}
	if opts.DefaultRegistry == "" {
		opts.DefaultRegistry = domain.RegistryNPM
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}

	g := graph.Clone()
	g.SetEnv(opts.Env.Tags())

	s := &session{
		Installer: i,
		opts:      opts,
		report:    &domain.Report{},
		graph:     g,
		scheduled: make(map[domain.Coordinate]bool),
		dirty:     make(map[domain.Coordinate]bool),
		paths:     make(map[domain.Coordinate]string),
		fresh:     make(map[string]bool, len(opts.Fresh)),
		configs:   make(map[domain.Coordinate]*domain.PackageConfig),
	}
	for _, name := range opts.Fresh {
		s.fresh[name] = true
	}
	for _, parent := range g.Parents() {
		for _, e := range g.Scope(parent) {
			if s.fresh[e.Target.Name] {
				s.dirty[parent] = true
			}
		}
	}
	return s
}

func (s *session) run(ctx context.Context, requests []Request) error {
	decisions, err := s.resolvePrimaries(ctx, dedupeRequests(requests))
	if err != nil {
		return err
	}

	s.mu.Lock()
	for _, d := range decisions {
		s.commitPrimary(d)
	}
	s.mu.Unlock()

	if err := s.validateSubpaths(ctx, decisions); err != nil {
		return err
	}
	if err := s.resolveScopes(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.graph.Prune() {
		s.event(domain.Event{Kind: domain.EventDeprecated, Coordinate: c, Detail: "no longer referenced"})
	}
	return s.graph.Validate()
}

// primaryDecision is the resolved form of a Request.
type primaryDecision struct {
	req      Request
	resolved domain.Coordinate
	reused   bool
}

// dedupeRequests keeps the last request per alias, sorted by alias. Local
// requests without an alias are kept in order after the named ones.
func dedupeRequests(requests []Request) []Request {
	byAlias := make(map[string]int, len(requests))
	var out []Request
	for _, r := range requests {
		if r.Alias == "" {
			out = append(out, r)
			continue
		}
		if i, ok := byAlias[r.Alias]; ok {
			out[i] = r
			continue
		}
		byAlias[r.Alias] = len(out)
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b Request) int {
		return cmp.Compare(a.String(), b.String())
	})
	return out
}

// resolvePrimaries decides every request, looking up the ones that cannot
// reuse a locked version concurrently. It reads the graph but does not
// mutate it.
func (s *session) resolvePrimaries(ctx context.Context, requests []Request) ([]primaryDecision, error) {
	decisions := make([]primaryDecision, len(requests))
	errs := make([]error, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallelism)

	for idx, req := range requests {
		decisions[idx].req = req
		if !req.Fresh {
			if c, ok := s.reusePrimary(req); ok {
				decisions[idx].resolved = c
				decisions[idx].reused = true
				continue
			}
		}
		g.Go(func() error {
			c, err := s.lookup(gctx, req.Target, "", req.String())
			if err != nil {
				errs[idx] = zerr.With(zerr.Wrap(err, req.String()), "target", req.Target.String())
				return nil
			}
			decisions[idx].resolved = c
			if decisions[idx].req.Alias == "" {
				decisions[idx].req.Alias = s.localAlias(gctx, c)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return decisions, nil
}

// reusePrimary applies the lockfile: the locked primary is kept while it
// still satisfies the request, otherwise any installed version that does.
func (s *session) reusePrimary(req Request) (domain.Coordinate, bool) {
	if req.Alias == "" {
		return domain.Coordinate{}, false
	}
	pkg := req.Target.Package()
	if locked, ok := s.graph.Primary(req.Alias); ok && locked.Package() == pkg {
		declared, _ := s.graph.Dependency(req.Alias)
		if declared.String() == req.Target.String() || req.Target.Range.Satisfies(locked.Version) {
			return locked, true
		}
	}
	if v, ok := semver.MaxSatisfying(s.graph.Versions(pkg), req.Target.Range); ok {
		return domain.Coordinate{Registry: pkg.Registry, Name: pkg.Name, Version: v}, true
	}
	return domain.Coordinate{}, false
}

// localAlias names a local package after its manifest, or its directory.
func (s *session) localAlias(ctx context.Context, c domain.Coordinate) string {
	if cfg, err := s.config(ctx, c); err == nil && cfg.Name != "" {
		return cfg.Name
	}
	return path.Base(c.Name)
}

// commitPrimary applies one decision. Callers hold s.mu.
func (s *session) commitPrimary(d primaryDecision) {
	req := d.req
	s.graph.RemovePrimary(req.Alias)

	chosen := d.resolved
	if !d.reused && !req.Upgrade && !s.graph.HasVersion(chosen) {
		if existing, ok := s.overrideCandidate(req.Target, chosen); ok {
			s.event(domain.Event{
				Kind:       domain.EventOverride,
				Coordinate: existing,
				Path:       req.Alias,
				Detail:     "installed " + existing.Version + " preferred over latest " + chosen.Version,
			})
			chosen = existing
		}
	}

	added := !s.graph.HasVersion(chosen)
	s.graph.SetPrimary(req.Alias, chosen, req.Target)
	s.paths[chosen] = req.Alias

	switch {
	case added:
		s.event(domain.Event{Kind: domain.EventAdded, Coordinate: chosen, Path: req.Alias})
	case d.reused:
		s.event(domain.Event{Kind: domain.EventReused, Coordinate: chosen, Path: req.Alias})
	}
	s.reconcile(chosen, req.Alias, added)
}

// validateSubpaths checks that every requested subpath is exported.
func (s *session) validateSubpaths(ctx context.Context, decisions []primaryDecision) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallelism)
	errs := make([]error, len(decisions))

	for idx, d := range decisions {
		if d.req.Subpath == "" || d.req.Subpath == "." {
			continue
		}
		c, _ := s.graph.Primary(d.req.Alias)
		g.Go(func() error {
			cfg, err := s.config(gctx, c)
			if err != nil {
				errs[idx] = zerr.Wrap(err, d.req.Alias)
				return nil
			}
			m, err := cfg.ResolvedExports()
			if err != nil {
				errs[idx] = zerr.Wrap(err, d.req.Alias)
				return nil
			}
			_, ok, err := exports.ResolveSubpath(m, d.req.Subpath, s.opts.Env)
			switch {
			case err != nil:
				errs[idx] = zerr.With(zerr.Wrap(err, d.req.Alias), "package", c.String())
			case !ok:
				s.logger.Warn("subpath resolves to nothing for this environment",
					"package", c.String(), "subpath", d.req.Subpath, "env", s.opts.Env.String())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

// lookup asks the owning provider for the latest version of target.
// Errors are returned as is; callers name the dependency path.
func (s *session) lookup(ctx context.Context, target domain.VersionTarget, parentURL, depPath string) (domain.Coordinate, error) {
	provider, err := s.registry.ForRegistry(target.Registry)
	if err != nil {
		return domain.Coordinate{}, err
	}

	ctx, span := s.tracer.Start(ctx, "resolve "+target.String(),
		ports.WithAttribute("lockmap.provider", provider.Name()),
		ports.WithAttribute("lockmap.path", depPath),
	)
	defer span.End()

	c, err := provider.ResolveLatestTarget(ctx, target, s.opts.Layer, parentURL)
	s.metrics.ObserveLookup(provider.Name(), err)
	s.mu.Lock()
	s.report.Lookups++
	s.mu.Unlock()
	if err != nil {
		span.RecordError(err)
		return domain.Coordinate{}, err
	}
	span.SetAttribute("lockmap.version", c.Version)
	s.logger.Debug("resolved", "target", target.String(), "version", c.Version, "provider", provider.Name())
	return c, nil
}

// config returns the manifest of c, fetching it once per session.
func (s *session) config(ctx context.Context, c domain.Coordinate) (*domain.PackageConfig, error) {
	s.configMu.Lock()
	cfg, ok := s.configs[c]
	s.configMu.Unlock()
	if ok {
		return cfg, nil
	}

	provider, err := s.registry.ForRegistry(c.Registry)
	if err != nil {
		return nil, err
	}
	url, err := provider.PkgToURL(c, s.opts.Layer)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "manifest "+c.String(), ports.WithAttribute("lockmap.url", url))
	defer span.End()
	cfg, err = provider.GetPackageConfig(ctx, url)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.configMu.Lock()
	s.configs[c] = cfg
	s.configMu.Unlock()
	return cfg, nil
}

// event records e in the report and logs the ones users act on.
func (s *session) event(e domain.Event) {
	s.report.Events = append(s.report.Events, e)
	switch e.Kind {
	case domain.EventOverride, domain.EventForked, domain.EventDeprecated:
		s.logger.Info(string(e.Kind), "package", e.Coordinate.String(), "path", e.Path, "detail", e.Detail)
	case domain.EventSkipped:
		s.logger.Warn("skipped optional dependency", "package", e.Coordinate.String(), "path", e.Path, "detail", e.Detail)
	default:
		s.logger.Debug(string(e.Kind), "package", e.Coordinate.String(), "path", e.Path)
	}
}

func joinPath(parent, local string) string {
	if parent == "" {
		return local
	}
	return parent + " > " + local
}

func describeRanges(ranges []string) string {
	quoted := make([]string, len(ranges))
	for i, r := range ranges {
		quoted[i] = fmt.Sprintf("%q", r)
	}
	return strings.Join(quoted, ", ")
}

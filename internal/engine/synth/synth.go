// Package synth projects a dependency graph into an import map.
package synth

import (
	"context"
	"errors"
	"maps"
	"runtime"
	"slices"
	"sync"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/engine/exports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Options control one synthesis.
type Options struct {
	Env   *domain.ConditionSet
	Layer string
	// Flatten merges package scopes into one scope per origin where that
	// does not change any resolution.
	Flatten bool
	// Combine collapses subpath mappings into folder mappings.
	Combine bool
	// Integrity adds sha384 hashes for every mapped module.
	Integrity   bool
	Parallelism int
	// Self maps the project's own exports under its package name.
	Self *Self
}

// Self describes the project being resolved, for own-name mappings.
type Self struct {
	Manifest *domain.PackageConfig
	// BaseURL is the URL the project root is served from.
	BaseURL string
	// Files are the project files relative to its root.
	Files []string
}

// Synthesizer builds import maps from dependency graphs.
type Synthesizer struct {
	registry ports.ProviderRegistry
	fetcher  ports.Fetcher
	tracer   ports.Tracer
	logger   ports.Logger
}

// New creates a Synthesizer. fetcher is only used for integrity hashes.
func New(registry ports.ProviderRegistry, fetcher ports.Fetcher, tracer ports.Tracer, logger ports.Logger) *Synthesizer {
	return &Synthesizer{
		registry: registry,
		fetcher:  fetcher,
		tracer:   tracer,
		logger:   logger,
	}
}

// Synthesize maps every primary of graph into imports and every resolved
// scope into scopes keyed by the parent's package URL.
func (s *Synthesizer) Synthesize(ctx context.Context, graph *domain.DependencyGraph, opts Options) (*domain.ImportMap, error) {
	ctx, span := s.tracer.Start(ctx, "synthesize")
	defer span.End()

	if opts.Env == nil {
		tags := graph.Env()
		if len(tags) == 0 {
			tags = domain.DefaultConditions
		}
		opts.Env = domain.NewConditionSet(tags, nil)
	}
	if opts.Layer == "" {
		opts.Layer = domain.DefaultLayer
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}

	pkgs, err := s.loadPackages(ctx, graph, opts)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m := domain.NewImportMap()
	m.Env = opts.Env.Tags()

	for _, alias := range graph.PrimaryNames() {
		c, _ := graph.Primary(alias)
		s.mapPrimary(m.Imports, alias, pkgs[c], opts.Env)
	}
	if opts.Self != nil {
		s.mapSelf(m.Imports, opts.Self, opts.Env)
	}

	for _, parent := range graph.Parents() {
		scope := graph.Scope(parent)
		if len(scope) == 0 || pkgs[parent] == nil {
			continue
		}
		entries := make(map[string]string)
		for _, local := range slices.Sorted(maps.Keys(scope)) {
			target := pkgs[scope[local].Target]
			if target == nil {
				continue
			}
			maps.Copy(entries, target.mappings(local, opts.Env, s.logger))
		}
		if len(entries) > 0 {
			m.Scopes[pkgs[parent].url] = entries
		}
	}

	if opts.Combine {
		combine(m.Imports)
		for _, scope := range m.Scopes {
			combine(scope)
		}
	}
	if opts.Flatten {
		flatten(m)
	}
	if opts.Integrity {
		if err := s.addIntegrity(ctx, m, opts.Parallelism); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	span.SetAttribute("lockmap.imports", len(m.Imports))
	span.SetAttribute("lockmap.scopes", len(m.Scopes))
	return m, nil
}

// loadPackages resolves the URL, manifest and file list of every
// coordinate the map refers to.
func (s *Synthesizer) loadPackages(ctx context.Context, graph *domain.DependencyGraph, opts Options) (map[domain.Coordinate]*pkgInfo, error) {
	var coords []domain.Coordinate
	for c := range graph.Coordinates() {
		coords = append(coords, c)
	}

	var (
		mu   sync.Mutex
		out  = make(map[domain.Coordinate]*pkgInfo, len(coords))
		errs = make([]error, len(coords))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for idx, c := range coords {
		g.Go(func() error {
			info, err := s.loadPackage(gctx, c, opts)
			if err != nil {
				errs[idx] = zerr.With(zerr.Wrap(err, c.String()), "package", c.String())
				return nil
			}
			mu.Lock()
			out[c] = info
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, ctx.Err()
}

func (s *Synthesizer) loadPackage(ctx context.Context, c domain.Coordinate, opts Options) (*pkgInfo, error) {
	provider, err := s.registry.ForRegistry(c.Registry)
	if err != nil {
		return nil, err
	}
	url, err := provider.PkgToURL(c, opts.Layer)
	if err != nil {
		return nil, err
	}
	cfg, err := provider.GetPackageConfig(ctx, url)
	if err != nil {
		return nil, err
	}

	info := &pkgInfo{coordinate: c, url: url, config: cfg}
	info.exports, info.exportsErr = cfg.ResolvedExports()
	if info.exportsErr == nil && exports.HasPatterns(info.exports) {
		if lister, ok := provider.(ports.FileLister); ok {
			files, err := lister.ListFiles(ctx, url)
			if err != nil {
				s.logger.Warn("file listing unavailable, mapping exports literally",
					"package", c.String(), "error", err.Error())
			} else {
				info.files = files
			}
		}
	}
	return info, nil
}

// mapPrimary adds the mappings of one primary install. Builtin aliases map
// only the subpath the builtin stands for.
func (s *Synthesizer) mapPrimary(imports map[string]string, alias string, info *pkgInfo, env *domain.ConditionSet) {
	if info == nil {
		return
	}
	if b, ok := s.registry.ResolveBuiltin(alias, env); ok && b.Target.Package() == info.coordinate.Package() {
		if url, ok := info.resolve(b.ResolvedSubpath(), env, s.logger); ok {
			imports[alias] = url
		}
		return
	}
	maps.Copy(imports, info.mappings(alias, env, s.logger))
}

// mapSelf maps the project's own exports, unless a dependency already
// claims its name.
func (s *Synthesizer) mapSelf(imports map[string]string, self *Self, env *domain.ConditionSet) {
	name := self.Manifest.Name
	if name == "" || self.BaseURL == "" {
		return
	}
	if _, taken := imports[name]; taken {
		return
	}
	info := &pkgInfo{url: ensureSlash(self.BaseURL), config: self.Manifest, files: self.Files}
	info.exports, info.exportsErr = self.Manifest.ResolvedExports()
	for k, v := range info.mappings(name, env, s.logger) {
		if _, taken := imports[k]; !taken {
			imports[k] = v
		}
	}
}

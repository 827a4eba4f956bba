package app

import (
	"context"
	"slices"

	"go.trai.ch/lockmap/internal/adapters/telemetry"
	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/engine/installer"
	"go.trai.ch/lockmap/internal/engine/synth"
	"go.trai.ch/zerr"
)

// session holds the state of one command: the project, its providers and
// the graph it started from.
type session struct {
	app       *App
	cwd       string
	opts      Options
	project   *domain.Project
	origins   *ports.Origins
	tracer    *telemetry.OTelTracer
	installer *installer.Installer
	synth     *synth.Synthesizer
	graph     *domain.DependencyGraph
	env       *domain.ConditionSet
}

func (a *App) open(opts Options) (*session, error) {
	cwd, err := a.cwd()
	if err != nil {
		return nil, err
	}

	project, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	opts.apply(&project.Settings)

	origins, err := a.providers.New(project)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to set up providers")
	}

	tracer := telemetry.NewOTelTracer("lockmap")

	s := &session{
		app:       a,
		cwd:       cwd,
		opts:      opts,
		project:   project,
		origins:   origins,
		tracer:    tracer,
		installer: installer.New(origins.Registry, tracer, a.logger, a.metrics),
		synth:     synth.New(origins.Registry, origins.Fetcher, tracer, a.logger),
	}
	if err := s.loadGraph(); err != nil {
		return nil, err
	}
	s.env = project.Conditions()
	return s, nil
}

// loadGraph reads the lockfile. Without one, the graph is rebuilt from an
// existing import map whose env becomes the default condition set.
func (s *session) loadGraph() error {
	store := s.app.store

	graph, err := store.LoadGraph(s.project)
	if err != nil {
		return err
	}

	existing, err := store.LoadImportMap(s.project)
	if err != nil {
		if graph == nil {
			return err
		}
		s.app.logger.Warn("ignoring unreadable import map", "error", err.Error())
		existing = nil
	}

	if existing != nil {
		// Parsing the URLs teaches providers how this project spells its
		// versions, so regenerated URLs match the existing ones.
		for _, u := range slices.Concat(existing.URLs(), existing.ScopeURLs()) {
			s.origins.Registry.ForURL(u)
		}
	}

	if graph == nil && existing != nil {
		var skipped []string
		graph, skipped = installer.FromImportMap(existing, s.origins.Registry)
		for _, u := range skipped {
			s.app.logger.Warn("import map entry is not served by any provider", "url", u)
		}
		if len(s.opts.Env) == 0 && len(existing.Env) > 0 && slices.Equal(s.project.Settings.Env, domain.DefaultConditions) {
			s.project.Settings.Env = slices.Clone(existing.Env)
		}
	}

	if graph == nil {
		graph = domain.NewDependencyGraph()
	}
	s.graph = graph
	return nil
}

func (s *session) installOptions(fresh []string) installer.Options {
	settings := s.project.Settings
	return installer.Options{
		Env:             s.env,
		Layer:           settings.Layer,
		DefaultRegistry: settings.Registry,
		Parallelism:     settings.Parallelism,
		Fresh:           fresh,
	}
}

// commit synthesizes the import map of graph and persists both, or prints
// the map in dry-run mode.
func (s *session) commit(ctx context.Context, operation string, graph *domain.DependencyGraph, report *domain.Report) error {
	if err := graph.Validate(); err != nil {
		return err
	}

	importMap, err := s.synth.Synthesize(ctx, graph, s.synthOptions())
	if err != nil {
		return zerr.Wrap(err, "failed to synthesize import map")
	}

	if s.opts.DryRun {
		data, err := importMap.Marshal()
		if err != nil {
			return zerr.Wrap(err, "failed to render import map")
		}
		s.app.reporter.DryRun(data)
		s.app.reporter.Summary(operation, report, false)
		return nil
	}

	written, err := s.app.store.Save(s.project, graph, importMap)
	if err != nil {
		return err
	}
	s.app.reporter.Summary(operation, report, written)
	return nil
}

func (s *session) synthOptions() synth.Options {
	settings := s.project.Settings
	opts := synth.Options{
		Env:         s.env,
		Layer:       settings.Layer,
		Flatten:     settings.Flatten,
		Combine:     settings.Combine,
		Integrity:   settings.Integrity,
		Parallelism: settings.Parallelism,
	}
	if settings.SelfBaseURL != "" && s.project.Manifest != nil && s.project.Manifest.Name != "" {
		opts.Self = &synth.Self{
			Manifest: s.project.Manifest,
			BaseURL:  settings.SelfBaseURL,
			Files:    slices.Collect(s.app.walker.WalkFiles(s.project.Root, nil)),
		}
	}
	return opts
}

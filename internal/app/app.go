// Package app implements the application layer for lockmap.
package app

import (
	"context"
	"errors"
	"os"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/lockmap/internal/adapters/telemetry"
	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	providers    ports.ProviderFactory
	store        ports.LockStore
	logger       ports.Logger
	metrics      ports.Metrics
	walker       ports.FileWalker
	reporter     ports.Reporter
	workDir      string
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	providers ports.ProviderFactory,
	store ports.LockStore,
	log ports.Logger,
	metrics ports.Metrics,
	walker ports.FileWalker,
	reporter ports.Reporter,
) *App {
	return &App{
		configLoader: loader,
		providers:    providers,
		store:        store,
		logger:       log,
		metrics:      metrics,
		walker:       walker,
		reporter:     reporter,
	}
}

// WithWorkDir sets the directory the project is discovered from and
// relative install targets are resolved against. It defaults to the
// process working directory.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// logMode is implemented by loggers whose format and level can change
// after construction.
type logMode interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// SetLogMode switches the logger to JSON output or debug level when it
// supports either.
func (a *App) SetLogMode(json, verbose bool) {
	if l, ok := a.logger.(logMode); ok {
		l.SetJSON(json)
		l.SetVerbose(verbose)
	}
}

// Options are the flags shared by every operation. Zero values keep the
// project settings.
type Options struct {
	Env       []string
	Provider  string
	Output    string
	Offline   bool
	Integrity bool
	NoFlatten bool
	NoCombine bool
	// DryRun prints the resulting import map instead of writing files.
	DryRun bool
}

func (o Options) apply(s *domain.Settings) {
	if len(o.Env) > 0 {
		s.Env = slices.Clone(o.Env)
	}
	if o.Provider != "" {
		s.Provider = o.Provider
	}
	if o.Output != "" {
		s.Output = o.Output
	}
	if o.Offline {
		s.Offline = true
	}
	if o.Integrity {
		s.Integrity = true
	}
	if o.NoFlatten {
		s.Flatten = false
	}
	if o.NoCombine {
		s.Combine = false
	}
}

// operation is the body of one command. It returns the graph to persist.
type operation func(ctx context.Context, s *session) (*domain.DependencyGraph, *domain.Report, error)

// run opens a session, executes op and commits its graph. The outcome is
// recorded in metrics whether or not op succeeds.
func (a *App) run(ctx context.Context, name string, opts Options, op operation) (err error) {
	start := time.Now()
	var (
		project *domain.Project
		report  *domain.Report
	)
	defer func() {
		a.observe(name, time.Since(start), project, report, err)
	}()

	s, err := a.open(opts)
	if err != nil {
		return err
	}
	project = s.project

	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()

	var graph *domain.DependencyGraph
	graph, report, err = op(ctx, s)
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.tracer.EmitReport(ctx, report)

	if err = s.commit(ctx, name, graph, report); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// observe records the operation and writes the metrics textfile when the
// project configures one. A failed write is only a warning.
func (a *App) observe(name string, elapsed time.Duration, project *domain.Project, report *domain.Report, err error) {
	a.metrics.ObserveOperation(name, elapsed, report, err)
	if project == nil || project.Settings.MetricsFile == "" {
		return
	}
	if werr := a.metrics.WriteFile(project.Settings.MetricsFile); werr != nil {
		a.logger.Warn("failed to write metrics", "path", project.Settings.MetricsFile, "error", werr.Error())
	}
}

func (a *App) cwd() (string, error) {
	if a.workDir != "" {
		return a.workDir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, "failed to get working directory")
	}
	return dir, nil
}

// installFailed marks err as a failed install, update or link.
func installFailed(err error) error {
	return errors.Join(domain.ErrInstallFailed, err)
}

// SetupTracing installs the process tracer provider, which reports every
// span to logger, and returns its shutdown function.
func SetupTracing(logger ports.Logger) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(telemetry.NewBridge(logger)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/engine/exports"
	"go.trai.ch/lockmap/internal/engine/installer"
	"go.trai.ch/zerr"
)

// InstallOptions configure Install.
type InstallOptions struct {
	Options
	// Dev includes devDependencies when installing from package.json.
	Dev bool
}

// Install adds targets as primary dependencies. Without targets, the
// dependencies declared in package.json are installed, reusing locked
// versions wherever they still satisfy the declared ranges.
func (a *App) Install(ctx context.Context, targets []string, opts InstallOptions) error {
	return a.run(ctx, "install", opts.Options, func(ctx context.Context, s *session) (*domain.DependencyGraph, *domain.Report, error) {
		var (
			requests []installer.Request
			err      error
		)
		if len(targets) == 0 {
			requests, err = installer.FromManifest(s.project.Manifest, opts.Dev, s.project.Settings.Registry)
			if err != nil {
				return nil, nil, installFailed(err)
			}
		} else {
			requests, err = s.locate(targets)
			if err != nil {
				return nil, nil, installFailed(err)
			}
			for idx := range requests {
				requests[idx].Fresh = true
			}
		}

		if len(requests) == 0 {
			a.logger.Debug("nothing to install, regenerating import map")
			return s.graph, &domain.Report{}, nil
		}

		graph, report, err := s.installer.Install(ctx, s.graph, requests, s.installOptions(nil))
		if err != nil {
			return nil, nil, installFailed(err)
		}
		return graph, report, nil
	})
}

// Update re-resolves the named dependencies against the latest versions
// their ranges allow. Without names, every primary is updated. A name that
// is only installed transitively is re-resolved wherever it is depended on.
func (a *App) Update(ctx context.Context, names []string, opts Options) error {
	return a.run(ctx, "update", opts, func(ctx context.Context, s *session) (*domain.DependencyGraph, *domain.Report, error) {
		if len(names) == 0 {
			names = s.graph.PrimaryNames()
		}
		if len(names) == 0 {
			return nil, nil, zerr.Wrap(domain.ErrNoTargetsSpecified, "nothing is installed")
		}

		installed := make(map[string]bool)
		for _, pkg := range s.graph.Packages() {
			installed[pkg.Name] = true
		}

		var (
			requests []installer.Request
			errs     []error
		)
		for _, name := range names {
			target, ok := s.graph.Dependency(name)
			if !ok {
				if !installed[name] {
					errs = append(errs, zerr.With(zerr.Wrap(domain.ErrPrimaryNotFound, name+" is not installed"), "name", name))
				}
				continue
			}
			requests = append(requests, installer.Request{
				Alias:   name,
				Target:  target,
				Subpath: ".",
				Fresh:   true,
				Upgrade: true,
			})
		}
		if err := errors.Join(errs...); err != nil {
			return nil, nil, err
		}

		graph, report, err := s.installer.Install(ctx, s.graph, requests, s.installOptions(names))
		if err != nil {
			return nil, nil, installFailed(err)
		}
		return graph, report, nil
	})
}

// Link installs local package directories as primaries.
func (a *App) Link(ctx context.Context, paths []string, opts Options) error {
	return a.run(ctx, "link", opts, func(ctx context.Context, s *session) (*domain.DependencyGraph, *domain.Report, error) {
		if len(paths) == 0 {
			return nil, nil, zerr.Wrap(domain.ErrNoTargetsSpecified, "nothing to link")
		}
		requests, err := s.locate(paths)
		if err != nil {
			return nil, nil, installFailed(err)
		}
		for idx, req := range requests {
			if req.Target.Registry != domain.RegistryLocal {
				return nil, nil, zerr.With(zerr.Wrap(domain.ErrNotLocalPath, req.String()), "target", req.String())
			}
			requests[idx].Fresh = true
		}

		graph, report, err := s.installer.Install(ctx, s.graph, requests, s.installOptions(nil))
		if err != nil {
			return nil, nil, installFailed(err)
		}
		return graph, report, nil
	})
}

// Uninstall removes the named primaries and everything only they needed.
func (a *App) Uninstall(ctx context.Context, names []string, opts Options) error {
	return a.run(ctx, "uninstall", opts, func(ctx context.Context, s *session) (*domain.DependencyGraph, *domain.Report, error) {
		return s.installer.Uninstall(ctx, s.graph, names)
	})
}

// Exports reports how the exports of an installed primary resolve under
// the project conditions. Nothing is written.
func (a *App) Exports(ctx context.Context, name string, opts Options) (err error) {
	start := time.Now()
	var project *domain.Project
	defer func() {
		a.observe("exports", time.Since(start), project, nil, err)
	}()

	s, err := a.open(opts)
	if err != nil {
		return err
	}
	project = s.project

	ctx, span := s.tracer.Start(ctx, "exports")
	defer span.End()

	inspection, err := s.inspect(ctx, name)
	if err != nil {
		span.RecordError(err)
		return err
	}
	a.reporter.Inspection(inspection)
	return nil
}

func (s *session) inspect(ctx context.Context, name string) (*domain.Inspection, error) {
	c, ok := s.graph.Primary(name)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrPrimaryNotFound, name+" is not installed"), "name", name)
	}
	provider, err := s.origins.Registry.ForRegistry(c.Registry)
	if err != nil {
		return nil, err
	}
	url, err := provider.PkgToURL(c, s.project.Settings.Layer)
	if err != nil {
		return nil, err
	}
	cfg, err := provider.GetPackageConfig(ctx, url)
	if err != nil {
		return nil, zerr.With(err, "package", c.String())
	}

	inspection := &domain.Inspection{Alias: name, Coordinate: c, URL: url}
	m, err := cfg.ResolvedExports()
	if err != nil {
		return nil, zerr.With(err, "package", c.String())
	}
	inspection.Served, err = exports.ResolveExports(m, s.env, nil)
	if err != nil {
		s.app.logger.Warn("some exports could not be resolved", "package", c.String(), "error", err.Error())
	}
	inspection.ResolutionSet, err = exports.ResolutionSet(m, s.env)
	if err != nil {
		s.app.logger.Warn("some exports could not be expanded", "package", c.String(), "error", err.Error())
	}
	return inspection, nil
}

// locate parses install targets relative to the working directory.
func (s *session) locate(targets []string) ([]installer.Request, error) {
	opts := installer.LocateOptions{
		Root:            s.cwd,
		LocalRoot:       s.project.Path(s.project.Settings.LocalDir),
		DefaultRegistry: s.project.Settings.Registry,
		Env:             s.env,
		Builtins:        s.origins.Registry,
		IsLocalPackage: func(path string) bool {
			_, err := os.Stat(filepath.Join(s.cwd, path, domain.ManifestFileName))
			return err == nil
		},
	}

	var (
		requests []installer.Request
		errs     []error
	)
	for _, target := range slices.Compact(slices.Clone(targets)) {
		req, err := installer.Locate(target, opts)
		if err != nil {
			errs = append(errs, zerr.With(err, "target", target))
			continue
		}
		requests = append(requests, req)
	}
	return requests, errors.Join(errs...)
}

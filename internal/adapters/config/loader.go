// Package config provides the configuration loader for lockmap.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using lockmap.yaml and package.json.
type Loader struct {
	Logger ports.Logger
	fs     FileSystem
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, fs: osFS{}}
}

// NewLoaderWithFS creates a Loader reading through fsys.
func NewLoaderWithFS(logger ports.Logger, fsys FileSystem) *Loader {
	return &Loader{Logger: logger, fs: fsys}
}

// Mode represents how the project root was found.
type Mode string

const (
	// ModeConfigured indicates that the project has a lockmap.yaml.
	ModeConfigured Mode = "configured"
	// ModeManifest indicates that only a package.json marks the project.
	ModeManifest Mode = "manifest"
)

var knownProviders = []string{domain.ProviderJSPM, domain.ProviderUnpkg, domain.ProviderJSDelivr}

// DiscoverRoot walks up from cwd to find the project root.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	configPath, _, err := l.findConfiguration(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(configPath), nil
}

// Load finds the project enclosing cwd and returns its effective settings
// and manifest. Relative cache and metrics paths are made absolute against
// the project root.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve working directory"), "cwd", cwd)
	}
	configPath, mode, err := l.findConfiguration(abs)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		Root:     filepath.Dir(configPath),
		Settings: domain.DefaultSettings(),
	}

	if mode == ModeConfigured {
		var file Lockmapfile
		if err := l.readYAML(configPath, &file); err != nil {
			return nil, err
		}
		project.ConfigPath = configPath
		project.Root = resolveRoot(configPath, file.Root)
		if err := applyFile(&project.Settings, &file); err != nil {
			return nil, zerr.With(err, "file", configPath)
		}
	}

	manifest, err := l.readManifest(filepath.Join(project.Root, domain.ManifestFileName))
	if err != nil {
		return nil, err
	}
	project.Manifest = manifest

	project.Settings.CacheDir = project.Path(project.Settings.CacheDir)
	if project.Settings.MetricsFile != "" {
		project.Settings.MetricsFile = project.Path(project.Settings.MetricsFile)
	}
	return project, nil
}

// findConfiguration prefers the nearest lockmap.yaml anywhere above cwd and
// falls back to the nearest package.json.
func (l *Loader) findConfiguration(cwd string) (string, Mode, error) {
	currentDir := cwd
	var manifestCandidate string

	for {
		configPath := filepath.Join(currentDir, domain.ConfigFileName)
		if l.fs.IsFile(configPath) {
			return configPath, ModeConfigured, nil
		}

		if manifestCandidate == "" {
			manifestPath := filepath.Join(currentDir, domain.ManifestFileName)
			if l.fs.IsFile(manifestPath) {
				manifestCandidate = manifestPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	if manifestCandidate != "" {
		return manifestCandidate, ModeManifest, nil
	}

	return "", "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "config not found"), "cwd", cwd)
}

// readYAML decodes a YAML file, rejecting unknown keys. An empty file is
// valid and leaves target untouched.
func (l *Loader) readYAML(configPath string, target *Lockmapfile) error {
	data, err := l.fs.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "file", configPath)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "file", configPath)
	}
	return nil
}

func (l *Loader) readManifest(path string) (*domain.PackageConfig, error) {
	data, err := l.fs.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &domain.PackageConfig{}, nil
	}
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrManifestReadFailed, err), "file", path)
	}
	manifest, err := domain.ParsePackageConfig(data)
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	if manifest.ExportsErr != nil {
		l.Logger.Warn("project exports field is malformed", "file", path, "error", manifest.ExportsErr.Error())
	}
	return manifest, nil
}

func applyFile(s *domain.Settings, file *Lockmapfile) error {
	if len(file.Env) > 0 {
		for _, tag := range file.Env {
			if strings.TrimSpace(tag) == "" {
				return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "empty condition in env"), "env", file.Env)
			}
		}
		s.Env = slices.Clone(file.Env)
	}
	if len(file.Exclusions) > 0 {
		s.Exclusions = file.Exclusions
	}
	if file.Registry != "" {
		s.Registry = file.Registry
	}
	if file.Provider != "" {
		if !slices.Contains(knownProviders, file.Provider) {
			return zerr.With(zerr.Wrap(domain.ErrUnknownProvider, "provider "+file.Provider), "provider", file.Provider)
		}
		s.Provider = file.Provider
	}
	if file.Layer != "" {
		s.Layer = file.Layer
	}
	if file.Local.Dir != "" {
		s.LocalDir = file.Local.Dir
	}
	s.LocalBaseURL = file.Local.BaseURL
	if file.Cache.Dir != "" {
		s.CacheDir = file.Cache.Dir
	}
	if file.Cache.TTL != "" {
		ttl, err := time.ParseDuration(file.Cache.TTL)
		if err != nil || ttl < 0 {
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "cache.ttl must be a duration"), "ttl", file.Cache.TTL)
		}
		s.CacheTTL = ttl
	}
	s.Offline = file.Cache.Offline
	if file.Lockfile != "" {
		s.Lockfile = file.Lockfile
	}
	if file.Output != "" {
		s.Output = file.Output
	}
	if file.Flatten != nil {
		s.Flatten = *file.Flatten
	}
	if file.Combine != nil {
		s.Combine = *file.Combine
	}
	s.Integrity = file.Integrity
	if file.Parallelism < 0 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "parallelism must not be negative"), "parallelism", file.Parallelism)
	}
	if file.Parallelism > 0 {
		s.Parallelism = file.Parallelism
	}
	s.MetricsFile = file.Metrics
	s.SelfBaseURL = file.Self.BaseURL
	return nil
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

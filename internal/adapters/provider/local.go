package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	localProviderName = "local"
	defaultLocalBase  = "./"
	unversioned       = "0.0.0"
)

// Local serves packages from directories below a root. A package name is
// the slash path of its directory relative to the root.
type Local struct {
	root    string
	baseURL string
	walker  ports.FileWalker
}

// NewLocal creates the local provider. An empty baseURL maps packages
// relative to the import map ("./").
func NewLocal(root, baseURL string, walker ports.FileWalker) *Local {
	if baseURL == "" {
		baseURL = defaultLocalBase
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Local{root: root, baseURL: baseURL, walker: walker}
}

// Name implements ports.Provider.
func (p *Local) Name() string { return localProviderName }

// Registries implements ports.Provider.
func (p *Local) Registries() []string { return []string{domain.RegistryLocal} }

// ResolveBuiltin implements ports.Provider.
func (p *Local) ResolveBuiltin(string, *domain.ConditionSet) (*domain.BuiltinTarget, bool) {
	return nil, false
}

// ResolveLatestTarget implements ports.Provider. A directory has exactly one
// version, read from its manifest; the range only validates it.
func (p *Local) ResolveLatestTarget(_ context.Context, target domain.VersionTarget, _, _ string) (domain.Coordinate, error) {
	if target.Registry != domain.RegistryLocal {
		return domain.Coordinate{}, registryNotOwned(p.Name(), target.Registry)
	}
	cfg, err := p.readManifest(target.Name)
	if err != nil {
		return domain.Coordinate{}, err
	}
	version := manifestVersion(cfg)
	if !target.Range.IsWildcard() && !target.Range.Satisfies(version) {
		return domain.Coordinate{}, versionNotFound(target)
	}
	return domain.Coordinate{Registry: domain.RegistryLocal, Name: target.Name, Version: version}, nil
}

// PkgToURL implements ports.Provider.
func (p *Local) PkgToURL(c domain.Coordinate, _ string) (string, error) {
	if c.Registry != domain.RegistryLocal {
		return "", registryNotOwned(p.Name(), c.Registry)
	}
	return p.baseURL + c.Name + "/", nil
}

// ParseURLPkg implements ports.Provider. The package is the deepest
// directory on the URL path that holds a manifest.
func (p *Local) ParseURLPkg(url string) (*domain.ParsedURL, bool) {
	rest, ok := strings.CutPrefix(url, p.baseURL)
	if !ok || rest == "" {
		return nil, false
	}
	segments := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	for n := len(segments); n > 0; n-- {
		name := strings.Join(segments[:n], "/")
		if validLocalName(name) != nil {
			continue
		}
		cfg, err := p.readManifest(name)
		if err != nil {
			continue
		}
		subpath := "."
		if remainder := strings.TrimPrefix(strings.TrimPrefix(rest, name), "/"); remainder != "" {
			subpath = "./" + remainder
		}
		return &domain.ParsedURL{
			Coordinate: domain.Coordinate{Registry: domain.RegistryLocal, Name: name, Version: manifestVersion(cfg)},
			Layer:      domain.DefaultLayer,
			Subpath:    subpath,
		}, true
	}
	return nil, false
}

// GetPackageConfig implements ports.Provider.
func (p *Local) GetPackageConfig(_ context.Context, pkgURL string) (*domain.PackageConfig, error) {
	parsed, ok := p.ParseURLPkg(pkgURL)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "no local package at "+pkgURL), "url", pkgURL)
	}
	return p.readManifest(parsed.Coordinate.Name)
}

// ListFiles implements ports.FileLister.
func (p *Local) ListFiles(_ context.Context, pkgURL string) ([]string, error) {
	parsed, ok := p.ParseURLPkg(pkgURL)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "no local package at "+pkgURL), "url", pkgURL)
	}
	var files []string
	for file := range p.walker.WalkFiles(p.dir(parsed.Coordinate.Name), nil) {
		files = append(files, file)
	}
	return files, nil
}

// Root returns the directory local package names are relative to.
func (p *Local) Root() string {
	return p.root
}

func (p *Local) dir(name string) string {
	return filepath.Join(p.root, filepath.FromSlash(name))
}

func (p *Local) readManifest(name string) (*domain.PackageConfig, error) {
	if err := validLocalName(name); err != nil {
		return nil, err
	}
	manifestPath := filepath.Join(p.dir(name), domain.ManifestFileName)
	//nolint:gosec // Path is confined to the local root by validLocalName
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "local:"+name), "path", manifestPath)
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", manifestPath)
	}
	cfg, err := domain.ParsePackageConfig(data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "manifest "+manifestPath), "path", manifestPath)
	}
	return cfg, nil
}

func manifestVersion(cfg *domain.PackageConfig) string {
	if cfg.Version == "" {
		return unversioned
	}
	return cfg.Version
}

// validLocalName rejects names that would leave the local root.
func validLocalName(name string) error {
	clean := path.Clean(name)
	if name == "" || clean != name || clean == "." || clean == ".." ||
		strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return zerr.With(zerr.Wrap(fmt.Errorf("%w: %w", domain.ErrNotLocalPath, domain.ErrInvalidSpecifier), "local:"+name), "name", name)
	}
	return nil
}

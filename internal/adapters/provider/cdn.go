// Package provider implements the content origins lockmap resolves packages
// against, and the table that selects one per registry or URL.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	npmRegistryURL  = "https://registry.npmjs.org/"
	jsdelivrDataURL = "https://data.jsdelivr.com/v1/package/npm/"
)

// LayerSystem selects the SystemJS build of the jspm CDN.
const LayerSystem = "system"

// cdnVariant describes the URL layout of one npm CDN.
type cdnVariant struct {
	// roots maps a layer to the CDN root URL.
	roots map[string]string
	// prefix is inserted between the root and "name@version".
	prefix string
}

var cdnVariants = map[string]cdnVariant{
	domain.ProviderJSPM: {
		roots: map[string]string{
			domain.DefaultLayer: "https://ga.jspm.io/",
			LayerSystem:         "https://ga.system.jspm.io/",
		},
		prefix: "npm:",
	},
	domain.ProviderUnpkg: {
		roots: map[string]string{domain.DefaultLayer: "https://unpkg.com/"},
	},
	domain.ProviderJSDelivr: {
		roots:  map[string]string{domain.DefaultLayer: "https://cdn.jsdelivr.net/"},
		prefix: "npm/",
	},
}

// CDN serves the npm registry through a public CDN.
type CDN struct {
	name        string
	variant     cdnVariant
	registryURL string
	fetcher     ports.Fetcher
}

// NewCDN creates the npm provider for the named CDN.
func NewCDN(name string, fetcher ports.Fetcher) (*CDN, error) {
	variant, ok := cdnVariants[name]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownProvider, name), "provider", name)
	}
	return &CDN{
		name:        name,
		variant:     variant,
		registryURL: npmRegistryURL,
		fetcher:     fetcher,
	}, nil
}

// Name implements ports.Provider.
func (p *CDN) Name() string { return p.name }

// Registries implements ports.Provider.
func (p *CDN) Registries() []string { return []string{domain.RegistryNPM} }

// ResolveBuiltin implements ports.Provider. npm CDNs have no builtins.
func (p *CDN) ResolveBuiltin(string, *domain.ConditionSet) (*domain.BuiltinTarget, bool) {
	return nil, false
}

// ResolveLatestTarget implements ports.Provider.
func (p *CDN) ResolveLatestTarget(ctx context.Context, target domain.VersionTarget, _, _ string) (domain.Coordinate, error) {
	if target.Registry != domain.RegistryNPM {
		return domain.Coordinate{}, registryNotOwned(p.name, target.Registry)
	}
	if target.Range.IsExact() {
		return domain.Coordinate{Registry: target.Registry, Name: target.Name, Version: target.Range.ExactVersion()}, nil
	}

	idx, err := fetchPackument(ctx, p.fetcher, p.registryURL, target.Name)
	if err != nil {
		return domain.Coordinate{}, err
	}
	v, ok := idx.pick(target.Range)
	if !ok {
		return domain.Coordinate{}, versionNotFound(target)
	}
	return domain.Coordinate{Registry: target.Registry, Name: target.Name, Version: v}, nil
}

// PkgToURL implements ports.Provider. Unknown layers fall back to the
// default root.
func (p *CDN) PkgToURL(c domain.Coordinate, layer string) (string, error) {
	if c.Registry != domain.RegistryNPM {
		return "", registryNotOwned(p.name, c.Registry)
	}
	return p.root(layer) + p.variant.prefix + c.ExactName() + "/", nil
}

// ParseURLPkg implements ports.Provider.
func (p *CDN) ParseURLPkg(url string) (*domain.ParsedURL, bool) {
	for layer, root := range p.variant.roots {
		rest, ok := strings.CutPrefix(url, root+p.variant.prefix)
		if !ok {
			continue
		}
		name, version, subpath, ok := splitNameVersionPath(rest)
		if !ok {
			return nil, false
		}
		return &domain.ParsedURL{
			Coordinate: domain.Coordinate{Registry: domain.RegistryNPM, Name: name, Version: version},
			Layer:      layer,
			Subpath:    subpath,
		}, true
	}
	return nil, false
}

// GetPackageConfig implements ports.Provider.
func (p *CDN) GetPackageConfig(ctx context.Context, pkgURL string) (*domain.PackageConfig, error) {
	return fetchPackageConfig(ctx, p.fetcher, pkgURL)
}

// ListFiles implements ports.FileLister. unpkg answers "?meta" itself; the
// other CDNs serve the same npm tarball contents, so their listing comes from
// the jsDelivr data API.
func (p *CDN) ListFiles(ctx context.Context, pkgURL string) ([]string, error) {
	parsed, ok := p.ParseURLPkg(pkgURL)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidCoordinate, "not a "+p.name+" URL"), "url", pkgURL)
	}
	if p.name == domain.ProviderUnpkg {
		return p.listUnpkg(ctx, pkgURL)
	}
	return p.listJSDelivr(ctx, parsed.Coordinate)
}

func (p *CDN) root(layer string) string {
	if root, ok := p.variant.roots[layer]; ok {
		return root
	}
	return p.variant.roots[domain.DefaultLayer]
}

type unpkgEntry struct {
	Path  string       `json:"path"`
	Type  string       `json:"type"`
	Files []unpkgEntry `json:"files"`
}

func (p *CDN) listUnpkg(ctx context.Context, pkgURL string) ([]string, error) {
	url := pkgURL + "?meta"
	data, err := p.fetcher.Get(ctx, url, ports.Immutable)
	if err != nil {
		return nil, err
	}
	var meta unpkgEntry
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, invalidResponse(err, url)
	}

	var files []string
	var walk func(e unpkgEntry)
	walk = func(e unpkgEntry) {
		if e.Type == "file" {
			files = append(files, strings.TrimPrefix(e.Path, "/"))
		}
		for _, child := range e.Files {
			walk(child)
		}
	}
	walk(meta)
	return files, nil
}

func (p *CDN) listJSDelivr(ctx context.Context, c domain.Coordinate) ([]string, error) {
	url := jsdelivrDataURL + c.ExactName() + "/flat"
	data, err := p.fetcher.Get(ctx, url, ports.Immutable)
	if err != nil {
		return nil, err
	}
	var listing struct {
		Files []struct {
			Name string `json:"name"`
		} `json:"files"`
	}
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, invalidResponse(err, url)
	}

	files := make([]string, 0, len(listing.Files))
	for _, f := range listing.Files {
		files = append(files, strings.TrimPrefix(f.Name, "/"))
	}
	return files, nil
}

func fetchPackageConfig(ctx context.Context, fetcher ports.Fetcher, pkgURL string) (*domain.PackageConfig, error) {
	url := pkgURL + domain.ManifestFileName
	data, err := fetcher.Get(ctx, url, ports.Immutable)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, zerr.With(zerr.Wrap(fmt.Errorf("%w: %w", domain.ErrPackageNotFound, err), "no manifest at "+pkgURL), "url", url)
		}
		return nil, err
	}
	cfg, err := domain.ParsePackageConfig(data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "manifest "+url), "url", url)
	}
	return cfg, nil
}

func invalidResponse(err error, url string) error {
	return zerr.With(zerr.Wrap(fmt.Errorf("%w: %w", domain.ErrProviderResponseInvalid, err), "GET "+url), "url", url)
}

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/semver"
	"go.trai.ch/zerr"
)

const (
	denoRoot        = "https://deno.land/"
	denoVersionsURL = "https://cdn.deno.land/%s/meta/versions.json"
	denoStd         = "std"
	denoBuiltin     = "deno:"
	denoMainModule  = "./mod.ts"
)

// Deno serves the Deno standard library and deno.land/x modules.
//
// Some modules publish versions as "v1.2.3" and others as "1.2.3".
// Coordinates always carry the bare version; the observed spelling is
// remembered per module so URLs round-trip. A Deno value is session state.
type Deno struct {
	fetcher ports.Fetcher

	mu       sync.Mutex
	prefixed map[string]bool
}

// NewDeno creates the deno provider.
func NewDeno(fetcher ports.Fetcher) *Deno {
	return &Deno{
		fetcher:  fetcher,
		prefixed: make(map[string]bool),
	}
}

// Name implements ports.Provider.
func (p *Deno) Name() string { return domain.RegistryDeno }

// Registries implements ports.Provider.
func (p *Deno) Registries() []string { return []string{domain.RegistryDeno} }

// ResolveBuiltin implements ports.Provider. "deno:fs/copy.ts" maps to the
// "fs" folder of the standard library; an extension on the alias portion is
// dropped, so "deno:path.ts" and "deno:path" are the same module.
func (p *Deno) ResolveBuiltin(specifier string, _ *domain.ConditionSet) (*domain.BuiltinTarget, bool) {
	rest, ok := strings.CutPrefix(specifier, denoBuiltin)
	if !ok || rest == "" {
		return nil, false
	}
	alias, sub, _ := strings.Cut(rest, "/")
	alias = strings.TrimSuffix(alias, path.Ext(alias))
	if alias == "" {
		return nil, false
	}

	subpath := denoMainModule
	if sub != "" {
		subpath = "./" + sub
	}
	return &domain.BuiltinTarget{
		Specifier:      specifier,
		Alias:          denoBuiltin + alias,
		Subpath:        subpath,
		Target:         domain.VersionTarget{Registry: domain.RegistryDeno, Name: denoStd, Range: semver.MustParseRange("*")},
		PackageSubpath: "./" + alias,
	}, true
}

// ResolveLatestTarget implements ports.Provider. When the origin lists no
// versions its latest pointer is trusted for any range.
func (p *Deno) ResolveLatestTarget(ctx context.Context, target domain.VersionTarget, _, _ string) (domain.Coordinate, error) {
	if target.Registry != domain.RegistryDeno {
		return domain.Coordinate{}, registryNotOwned(p.Name(), target.Registry)
	}
	if target.Range.IsExact() {
		if strings.HasPrefix(target.Range.String(), "v") {
			p.observe(target.Name, true)
		}
		return domain.Coordinate{Registry: target.Registry, Name: target.Name, Version: target.Range.ExactVersion()}, nil
	}

	idx, err := p.versions(ctx, target.Name)
	if err != nil {
		return domain.Coordinate{}, err
	}

	v, ok := idx.pick(target.Range)
	if !ok && len(idx.versions) == 0 && idx.latest != "" {
		v, ok = idx.latest, true
	}
	if !ok {
		return domain.Coordinate{}, versionNotFound(target)
	}
	return domain.Coordinate{Registry: target.Registry, Name: target.Name, Version: v}, nil
}

// PkgToURL implements ports.Provider.
func (p *Deno) PkgToURL(c domain.Coordinate, _ string) (string, error) {
	if c.Registry != domain.RegistryDeno {
		return "", registryNotOwned(p.Name(), c.Registry)
	}
	version := c.Version
	if p.isPrefixed(c.Name) {
		version = "v" + version
	}
	if c.Name == denoStd {
		return denoRoot + denoStd + "@" + version + "/", nil
	}
	return denoRoot + "x/" + c.Name + "@" + version + "/", nil
}

// ParseURLPkg implements ports.Provider.
func (p *Deno) ParseURLPkg(url string) (*domain.ParsedURL, bool) {
	rest, ok := strings.CutPrefix(url, denoRoot)
	if !ok {
		return nil, false
	}
	module, isX := strings.CutPrefix(rest, "x/")
	name, version, subpath, ok := splitNameVersionPath(module)
	if !ok || (!isX && name != denoStd) {
		return nil, false
	}

	bare, prefixed := strings.CutPrefix(version, "v")
	p.observe(name, prefixed)

	parsed := &domain.ParsedURL{
		Coordinate: domain.Coordinate{Registry: domain.RegistryDeno, Name: name, Version: bare},
		Layer:      domain.DefaultLayer,
		Subpath:    subpath,
	}
	if name == denoStd && subpath != "." {
		folder, _, _ := strings.Cut(strings.TrimPrefix(subpath, "./"), "/")
		parsed.BuiltinAlias = denoBuiltin + folder
	}
	return parsed, true
}

// GetPackageConfig implements ports.Provider. Deno modules carry no
// package.json; the manifest maps the module root and its mod.ts entry.
func (p *Deno) GetPackageConfig(_ context.Context, pkgURL string) (*domain.PackageConfig, error) {
	parsed, ok := p.ParseURLPkg(pkgURL)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidCoordinate, "not a deno.land URL"), "url", pkgURL)
	}

	cfg := &domain.PackageConfig{
		Name:    parsed.Coordinate.Name,
		Version: parsed.Coordinate.Version,
	}
	entries := []domain.ExportsEntry{{Subpath: "./", Node: domain.ExportsTarget("./")}}
	if parsed.Coordinate.Name != denoStd {
		cfg.Main = denoMainModule
		entries = append(entries, domain.ExportsEntry{Subpath: ".", Node: domain.ExportsTarget(denoMainModule)})
	}
	exports := domain.NewExportsMap(entries...)
	cfg.Exports = &exports
	return cfg, nil
}

type denoVersions struct {
	Latest   string   `json:"latest"`
	Versions []string `json:"versions"`
}

func (p *Deno) versions(ctx context.Context, name string) (versionIndex, error) {
	url := fmt.Sprintf(denoVersionsURL, name)
	data, err := p.fetcher.Get(ctx, url, ports.Mutable)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return versionIndex{}, zerr.With(zerr.Wrap(fmt.Errorf("%w: %w", domain.ErrPackageNotFound, err), "deno:"+name), "package", name)
		}
		return versionIndex{}, err
	}

	var doc denoVersions
	if err := json.Unmarshal(data, &doc); err != nil {
		return versionIndex{}, invalidResponse(err, url)
	}

	idx := versionIndex{versions: make([]string, 0, len(doc.Versions))}
	if doc.Latest != "" {
		latest, prefixed := strings.CutPrefix(doc.Latest, "v")
		p.observe(name, prefixed)
		idx.latest = latest
		idx.tags = map[string]string{"latest": latest}
	}
	for _, v := range doc.Versions {
		bare, prefixed := strings.CutPrefix(v, "v")
		p.observe(name, prefixed)
		idx.versions = append(idx.versions, bare)
	}
	return idx, nil
}

// observe records how name spells its versions. The first observation wins.
func (p *Deno) observe(name string, prefixed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.prefixed[name]; !ok {
		p.prefixed[name] = prefixed
	}
}

func (p *Deno) isPrefixed(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prefixed[name]
}

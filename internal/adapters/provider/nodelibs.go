package provider

import (
	"context"
	"slices"
	"strings"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/semver"
)

const (
	nodelibsName    = "nodelibs"
	nodeBuiltin     = "node:"
	nodeCondition   = "node"
	nodelibsPackage = "@jspm/core"
	nodelibsRange   = "^2.0.0"
)

// nodeCoreModules lists the builtin modules @jspm/core polyfills.
var nodeCoreModules = []string{
	"assert", "async_hooks", "buffer", "child_process", "cluster", "console",
	"constants", "crypto", "dgram", "diagnostics_channel", "dns", "domain",
	"events", "fs", "http", "http2", "https", "inspector", "module", "net",
	"os", "path", "perf_hooks", "process", "punycode", "querystring",
	"readline", "repl", "stream", "string_decoder", "sys", "timers", "tls",
	"tty", "url", "util", "v8", "vm", "wasi", "worker_threads", "zlib",
}

// Nodelibs maps Node.js builtins onto the @jspm/core browser polyfills.
// It owns no registry; the npm provider serves the package itself.
type Nodelibs struct{}

// NewNodelibs creates the builtin provider for Node.js modules.
func NewNodelibs() *Nodelibs {
	return &Nodelibs{}
}

// Name implements ports.Provider.
func (p *Nodelibs) Name() string { return nodelibsName }

// Registries implements ports.Provider.
func (p *Nodelibs) Registries() []string { return nil }

// ResolveBuiltin implements ports.Provider. "node:fs" is always claimed and
// bare core names such as "fs" are claimed too, unless the environment is
// node itself, where builtins need no mapping.
func (p *Nodelibs) ResolveBuiltin(specifier string, env *domain.ConditionSet) (*domain.BuiltinTarget, bool) {
	if env != nil && env.Has(nodeCondition) {
		return nil, false
	}
	name := strings.TrimPrefix(specifier, nodeBuiltin)
	module, sub, _ := strings.Cut(name, "/")
	if !slices.Contains(nodeCoreModules, module) {
		return nil, false
	}

	subpath := "."
	if sub != "" {
		subpath = "./" + sub
	}
	return &domain.BuiltinTarget{
		Specifier: specifier,
		Alias:     nodeBuiltin + module,
		Subpath:   subpath,
		Target: domain.VersionTarget{
			Registry: domain.RegistryNPM,
			Name:     nodelibsPackage,
			Range:    semver.MustParseRange(nodelibsRange),
		},
		PackageSubpath: "./nodelibs/" + module,
	}, true
}

// ResolveLatestTarget implements ports.Provider.
func (p *Nodelibs) ResolveLatestTarget(_ context.Context, target domain.VersionTarget, _, _ string) (domain.Coordinate, error) {
	return domain.Coordinate{}, registryNotOwned(p.Name(), target.Registry)
}

// PkgToURL implements ports.Provider.
func (p *Nodelibs) PkgToURL(c domain.Coordinate, _ string) (string, error) {
	return "", registryNotOwned(p.Name(), c.Registry)
}

// ParseURLPkg implements ports.Provider.
func (p *Nodelibs) ParseURLPkg(string) (*domain.ParsedURL, bool) {
	return nil, false
}

// GetPackageConfig implements ports.Provider.
func (p *Nodelibs) GetPackageConfig(_ context.Context, pkgURL string) (*domain.PackageConfig, error) {
	return nil, registryNotOwned(p.Name(), pkgURL)
}

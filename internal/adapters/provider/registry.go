package provider

import (
	"slices"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry implements ports.ProviderRegistry over an ordered provider list.
type Registry struct {
	providers  []ports.Provider
	byRegistry map[string]ports.Provider
}

// NewRegistry creates a table from providers. When two providers claim the
// same registry, the first one wins.
func NewRegistry(providers ...ports.Provider) *Registry {
	r := &Registry{
		providers:  providers,
		byRegistry: make(map[string]ports.Provider),
	}
	for _, p := range providers {
		for _, registry := range p.Registries() {
			if _, ok := r.byRegistry[registry]; !ok {
				r.byRegistry[registry] = p
			}
		}
	}
	return r
}

// ForRegistry implements ports.ProviderRegistry.
func (r *Registry) ForRegistry(registry string) (ports.Provider, error) {
	p, ok := r.byRegistry[registry]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownRegistry, registry), "registry", registry)
	}
	return p, nil
}

// ForURL implements ports.ProviderRegistry.
func (r *Registry) ForURL(url string) (ports.Provider, *domain.ParsedURL, bool) {
	for _, p := range r.providers {
		if parsed, ok := p.ParseURLPkg(url); ok {
			return p, parsed, true
		}
	}
	return nil, nil, false
}

// ResolveBuiltin implements ports.ProviderRegistry.
func (r *Registry) ResolveBuiltin(specifier string, env *domain.ConditionSet) (*domain.BuiltinTarget, bool) {
	for _, p := range r.providers {
		if target, ok := p.ResolveBuiltin(specifier, env); ok {
			return target, true
		}
	}
	return nil, false
}

// Providers implements ports.ProviderRegistry.
func (r *Registry) Providers() []ports.Provider {
	return slices.Clone(r.providers)
}

// Factory implements ports.ProviderFactory.
type Factory struct {
	fetchers ports.FetcherFactory
	walker   ports.FileWalker
}

// NewFactory creates a Factory.
func NewFactory(fetchers ports.FetcherFactory, walker ports.FileWalker) *Factory {
	return &Factory{fetchers: fetchers, walker: walker}
}

// New builds the providers of one session for project.
func (f *Factory) New(project *domain.Project) (*ports.Origins, error) {
	settings := project.Settings
	fetcher, err := f.fetchers.New(settings)
	if err != nil {
		return nil, err
	}

	cdn, err := NewCDN(settings.Provider, fetcher)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry(
		NewNodelibs(),
		cdn,
		NewDeno(fetcher),
		NewLocal(project.Path(settings.LocalDir), settings.LocalBaseURL, f.walker),
	)
	return &ports.Origins{Registry: registry, Fetcher: fetcher}, nil
}

// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/lockmap/internal/core/domain"
)

//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mocks

// Provider is one content origin. It turns version targets into coordinates
// and coordinates into URLs, and answers the inverse question for URLs it
// produced itself.
type Provider interface {
	// Name identifies the provider in logs, spans and metrics.
	Name() string

	// Registries lists the registries whose coordinates the provider owns.
	Registries() []string

	// ResolveBuiltin rewrites a provider-specific builtin specifier into the
	// package that serves it. It reports false for specifiers it does not claim.
	ResolveBuiltin(specifier string, env *domain.ConditionSet) (*domain.BuiltinTarget, bool)

	// ResolveLatestTarget returns the highest version satisfying target.Range
	// as observed from the origin. Exact ranges never reach the network.
	ResolveLatestTarget(ctx context.Context, target domain.VersionTarget, layer, parentURL string) (domain.Coordinate, error)

	// PkgToURL returns the canonical content root of c, with a trailing slash.
	PkgToURL(c domain.Coordinate, layer string) (string, error)

	// ParseURLPkg recognizes a URL produced by PkgToURL or ResolveBuiltin.
	ParseURLPkg(url string) (*domain.ParsedURL, bool)

	// GetPackageConfig fetches or synthesizes the manifest below pkgURL.
	GetPackageConfig(ctx context.Context, pkgURL string) (*domain.PackageConfig, error)
}

// FileLister is implemented by providers that can enumerate the files of a
// package. Paths are relative to the package root and use forward slashes.
type FileLister interface {
	ListFiles(ctx context.Context, pkgURL string) ([]string, error)
}

// ProviderRegistry selects the provider responsible for a registry or URL.
type ProviderRegistry interface {
	// ForRegistry returns the provider owning registry, or ErrUnknownRegistry.
	ForRegistry(registry string) (Provider, error)

	// ForURL finds the provider that produced url.
	ForURL(url string) (Provider, *domain.ParsedURL, bool)

	// ResolveBuiltin offers specifier to every provider in order.
	ResolveBuiltin(specifier string, env *domain.ConditionSet) (*domain.BuiltinTarget, bool)

	// Providers returns all registered providers in lookup order.
	Providers() []Provider
}

// Origins bundles the providers and the fetcher of one resolution session.
// Provider memory, such as observed version formats, lives as long as the
// Origins value.
type Origins struct {
	Registry ProviderRegistry
	Fetcher  Fetcher
}

// ProviderFactory builds session-scoped origins for a project.
type ProviderFactory interface {
	New(project *domain.Project) (*Origins, error)
}

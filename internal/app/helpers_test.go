package app_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"

	"go.trai.ch/lockmap/internal/app"
	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/core/ports/mocks"
	"go.trai.ch/lockmap/internal/semver"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const cdnRoot = "https://cdn.test/"

// fakeCDN is an in-memory npm origin serving manifests keyed by "name@version".
type fakeCDN struct {
	mu        sync.Mutex
	manifests map[string]string
}

func newFakeCDN(published map[string]string) *fakeCDN {
	return &fakeCDN{manifests: published}
}

func (o *fakeCDN) Name() string         { return "fake" }
func (o *fakeCDN) Registries() []string { return []string{domain.RegistryNPM} }

func (o *fakeCDN) ResolveBuiltin(string, *domain.ConditionSet) (*domain.BuiltinTarget, bool) {
	return nil, false
}

func (o *fakeCDN) ResolveLatestTarget(_ context.Context, target domain.VersionTarget, _, _ string) (domain.Coordinate, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var versions []string
	for key := range o.manifests {
		name, version, _ := strings.Cut(key, "@")
		if name == target.Name {
			versions = append(versions, version)
		}
	}
	v, ok := semver.MaxSatisfying(versions, target.Range)
	if !ok {
		return domain.Coordinate{}, zerr.Wrap(domain.ErrVersionNotFound, target.String())
	}
	return domain.Coordinate{Registry: target.Registry, Name: target.Name, Version: v}, nil
}

func (o *fakeCDN) PkgToURL(c domain.Coordinate, _ string) (string, error) {
	return cdnRoot + c.ExactName() + "/", nil
}

func (o *fakeCDN) ParseURLPkg(url string) (*domain.ParsedURL, bool) {
	rest, ok := strings.CutPrefix(url, cdnRoot)
	if !ok {
		return nil, false
	}
	exact, sub, _ := strings.Cut(rest, "/")
	name, version, ok := strings.Cut(exact, "@")
	if !ok {
		return nil, false
	}
	subpath := "."
	if sub != "" {
		subpath = "./" + sub
	}
	return &domain.ParsedURL{
		Coordinate: domain.Coordinate{Registry: domain.RegistryNPM, Name: name, Version: version},
		Layer:      domain.DefaultLayer,
		Subpath:    subpath,
	}, true
}

func (o *fakeCDN) GetPackageConfig(_ context.Context, pkgURL string) (*domain.PackageConfig, error) {
	parsed, ok := o.ParseURLPkg(pkgURL)
	if !ok {
		return nil, zerr.Wrap(domain.ErrInvalidCoordinate, pkgURL)
	}
	o.mu.Lock()
	manifest, ok := o.manifests[parsed.Coordinate.ExactName()]
	o.mu.Unlock()
	if !ok {
		return nil, zerr.Wrap(domain.ErrPackageNotFound, parsed.Coordinate.String())
	}
	return domain.ParsePackageConfig([]byte(manifest))
}

type fakeRegistry struct {
	provider ports.Provider
}

func (r fakeRegistry) ForRegistry(registry string) (ports.Provider, error) {
	if !slices.Contains(r.provider.Registries(), registry) {
		return nil, zerr.Wrap(domain.ErrUnknownRegistry, registry)
	}
	return r.provider, nil
}

func (r fakeRegistry) ForURL(url string) (ports.Provider, *domain.ParsedURL, bool) {
	parsed, ok := r.provider.ParseURLPkg(url)
	return r.provider, parsed, ok
}

func (r fakeRegistry) ResolveBuiltin(specifier string, env *domain.ConditionSet) (*domain.BuiltinTarget, bool) {
	return r.provider.ResolveBuiltin(specifier, env)
}

func (r fakeRegistry) Providers() []ports.Provider {
	return []ports.Provider{r.provider}
}

// harness holds the mocks behind an App under test.
type harness struct {
	app      *app.App
	project  *domain.Project
	loader   *mocks.MockConfigLoader
	store    *mocks.MockLockStore
	metrics  *mocks.MockMetrics
	walker   *mocks.MockFileWalker
	reporter *mocks.MockReporter
}

// newHarness builds an App over a project rooted in a temp directory whose
// npm origin serves published. Logging is quiet.
func newHarness(t *testing.T, published map[string]string) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	project := &domain.Project{
		Root:     root,
		Manifest: &domain.PackageConfig{},
		Settings: domain.DefaultSettings(),
	}

	h := &harness{
		project:  project,
		loader:   mocks.NewMockConfigLoader(ctrl),
		store:    mocks.NewMockLockStore(ctrl),
		metrics:  mocks.NewMockMetrics(ctrl),
		walker:   mocks.NewMockFileWalker(ctrl),
		reporter: mocks.NewMockReporter(ctrl),
	}
	h.loader.EXPECT().Load(gomock.Any()).Return(project, nil).AnyTimes()
	h.metrics.EXPECT().ObserveLookup(gomock.Any(), gomock.Any()).AnyTimes()

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()

	providers := mocks.NewMockProviderFactory(ctrl)
	providers.EXPECT().New(project).Return(&ports.Origins{
		Registry: fakeRegistry{provider: newFakeCDN(published)},
	}, nil).AnyTimes()

	h.app = app.New(h.loader, providers, h.store, logger, h.metrics, h.walker, h.reporter).WithWorkDir(root)
	return h
}

// expectState makes the store return graph and importMap as the persisted state.
func (h *harness) expectState(graph *domain.DependencyGraph, importMap *domain.ImportMap) {
	h.store.EXPECT().LoadGraph(h.project).Return(graph, nil)
	h.store.EXPECT().LoadImportMap(h.project).Return(importMap, nil)
}

// expectSave captures what the operation persists.
func (h *harness) expectSave(graph **domain.DependencyGraph, importMap **domain.ImportMap) {
	h.store.EXPECT().Save(h.project, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ *domain.Project, g *domain.DependencyGraph, m *domain.ImportMap) (bool, error) {
			*graph, *importMap = g, m
			return true, nil
		},
	)
}

func coord(name, version string) domain.Coordinate {
	return domain.Coordinate{Registry: domain.RegistryNPM, Name: name, Version: version}
}

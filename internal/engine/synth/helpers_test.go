package synth_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/core/ports/mocks"
	"go.trai.ch/lockmap/internal/engine/synth"
	"go.trai.ch/lockmap/internal/semver"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const fakeRoot = "https://cdn.test/"

// fakeOrigin serves manifests and file lists keyed by "name@version".
type fakeOrigin struct {
	manifests map[string]string
	files     map[string][]string

	mu     sync.Mutex
	listed []string
}

func newFakeOrigin() *fakeOrigin {
	return &fakeOrigin{
		manifests: make(map[string]string),
		files:     make(map[string][]string),
	}
}

func (o *fakeOrigin) Name() string         { return "fake" }
func (o *fakeOrigin) Registries() []string { return []string{domain.RegistryNPM} }

func (o *fakeOrigin) ResolveBuiltin(specifier string, _ *domain.ConditionSet) (*domain.BuiltinTarget, bool) {
	name, ok := strings.CutPrefix(specifier, "node:")
	if !ok {
		return nil, false
	}
	return &domain.BuiltinTarget{
		Specifier:      specifier,
		Alias:          specifier,
		Target:         domain.VersionTarget{Registry: domain.RegistryNPM, Name: "@jspm/core", Range: semver.MustParseRange("^2.0.0")},
		PackageSubpath: "./nodelibs/" + name,
	}, true
}

func (o *fakeOrigin) ResolveLatestTarget(context.Context, domain.VersionTarget, string, string) (domain.Coordinate, error) {
	return domain.Coordinate{}, zerr.New("synthesis never resolves versions")
}

func (o *fakeOrigin) PkgToURL(c domain.Coordinate, _ string) (string, error) {
	return fakeRoot + c.ExactName() + "/", nil
}

func (o *fakeOrigin) ParseURLPkg(string) (*domain.ParsedURL, bool) {
	return nil, false
}

func (o *fakeOrigin) exactName(pkgURL string) string {
	return strings.TrimSuffix(strings.TrimPrefix(pkgURL, fakeRoot), "/")
}

func (o *fakeOrigin) GetPackageConfig(_ context.Context, pkgURL string) (*domain.PackageConfig, error) {
	manifest, ok := o.manifests[o.exactName(pkgURL)]
	if !ok {
		return nil, zerr.Wrap(domain.ErrPackageNotFound, pkgURL)
	}
	return domain.ParsePackageConfig([]byte(manifest))
}

func (o *fakeOrigin) ListFiles(_ context.Context, pkgURL string) ([]string, error) {
	o.mu.Lock()
	o.listed = append(o.listed, o.exactName(pkgURL))
	o.mu.Unlock()
	files, ok := o.files[o.exactName(pkgURL)]
	if !ok {
		return nil, zerr.Wrap(domain.ErrPackageNotFound, pkgURL)
	}
	return files, nil
}

type fakeRegistry struct {
	provider ports.Provider
}

func (r fakeRegistry) ForRegistry(registry string) (ports.Provider, error) {
	if registry != domain.RegistryNPM {
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

func newTestSynthesizer(t *testing.T, registry ports.ProviderRegistry, fetcher ports.Fetcher) *synth.Synthesizer {
	t.Helper()
	ctrl := gomock.NewController(t)

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()

	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	return synth.New(registry, fetcher, tracer, logger)
}

func coord(name, version string) domain.Coordinate {
	return domain.Coordinate{Registry: domain.RegistryNPM, Name: name, Version: version}
}

func exact(name, version string) domain.VersionTarget {
	return domain.VersionTarget{Registry: domain.RegistryNPM, Name: name, Range: semver.Exact(version)}
}

func edge(name, version, rng string) domain.Edge {
	return domain.Edge{Target: coord(name, version), Range: semver.MustParseRange(rng)}
}

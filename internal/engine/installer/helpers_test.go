package installer_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/core/ports/mocks"
	"go.trai.ch/lockmap/internal/engine/installer"
	"go.trai.ch/lockmap/internal/semver"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const fakeRoot = "https://cdn.test/"

// fakeOrigin is an in-memory npm origin. Manifests are keyed by
// "name@version" and published with publish.
type fakeOrigin struct {
	mu        sync.Mutex
	manifests map[string]string
	lookups   map[string]int
}

func newFakeOrigin() *fakeOrigin {
	return &fakeOrigin{
		manifests: make(map[string]string),
		lookups:   make(map[string]int),
	}
}

// publish registers name@version with the given dependencies JSON object.
func (o *fakeOrigin) publish(name, version, manifest string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if manifest == "" {
		manifest = `{}`
	}
	o.manifests[name+"@"+version] = manifest
}

func (o *fakeOrigin) lookupCount(name string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lookups[name]
}

func (o *fakeOrigin) totalLookups() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, c := range o.lookups {
		n += c
	}
	return n
}

func (o *fakeOrigin) Name() string         { return "fake" }
func (o *fakeOrigin) Registries() []string { return []string{domain.RegistryNPM} }

func (o *fakeOrigin) ResolveBuiltin(string, *domain.ConditionSet) (*domain.BuiltinTarget, bool) {
	return nil, false
}

func (o *fakeOrigin) ResolveLatestTarget(_ context.Context, target domain.VersionTarget, _, _ string) (domain.Coordinate, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lookups[target.Name]++

	var versions []string
	for key := range o.manifests {
		at := strings.LastIndex(key, "@")
		if key[:at] == target.Name {
			versions = append(versions, key[at+1:])
		}
	}
	if len(versions) == 0 {
		return domain.Coordinate{}, zerr.Wrap(domain.ErrPackageNotFound, "npm:"+target.Name)
	}
	v, ok := semver.MaxSatisfying(versions, target.Range)
	if !ok {
		return domain.Coordinate{}, zerr.Wrap(domain.ErrVersionNotFound, target.String())
	}
	return domain.Coordinate{Registry: target.Registry, Name: target.Name, Version: v}, nil
}

func (o *fakeOrigin) PkgToURL(c domain.Coordinate, _ string) (string, error) {
	return fakeRoot + c.ExactName() + "/", nil
}

func (o *fakeOrigin) ParseURLPkg(url string) (*domain.ParsedURL, bool) {
	rest, ok := strings.CutPrefix(url, fakeRoot)
	if !ok {
		return nil, false
	}
	start := 0
	if strings.HasPrefix(rest, "@") {
		start = strings.IndexByte(rest, '/') + 1
	}
	slash := strings.IndexByte(rest[start:], '/')
	if slash < 0 {
		return nil, false
	}
	exact, sub := rest[:start+slash], rest[start+slash+1:]
	at := strings.LastIndex(exact, "@")
	if at <= 0 {
		return nil, false
	}
	subpath := "."
	if sub != "" {
		subpath = "./" + sub
	}
	return &domain.ParsedURL{
		Coordinate: domain.Coordinate{Registry: domain.RegistryNPM, Name: exact[:at], Version: exact[at+1:]},
		Layer:      domain.DefaultLayer,
		Subpath:    subpath,
	}, true
}

func (o *fakeOrigin) GetPackageConfig(_ context.Context, pkgURL string) (*domain.PackageConfig, error) {
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

// fakeRegistry serves a single provider for the npm registry.
type fakeRegistry struct {
	provider ports.Provider
}

func (r fakeRegistry) ForRegistry(registry string) (ports.Provider, error) {
	if !slices.Contains(r.provider.Registries(), registry) {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownRegistry, "no provider for registry "+registry), "registry", registry)
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

// newTestInstaller wires an installer to registry with quiet telemetry mocks.
func newTestInstaller(t *testing.T, registry ports.ProviderRegistry) *installer.Installer {
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

	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().ObserveLookup(gomock.Any(), gomock.Any()).AnyTimes()

	return installer.New(registry, tracer, logger, metrics)
}

// request builds a primary request for alias=name@rng.
func request(t *testing.T, alias, name, rng string, fresh bool) installer.Request {
	t.Helper()
	r, err := semver.ParseRange(rng)
	require.NoError(t, err)
	return installer.Request{
		Alias:   alias,
		Target:  domain.VersionTarget{Registry: domain.RegistryNPM, Name: name, Range: r},
		Subpath: ".",
		Fresh:   fresh,
	}
}

func coord(name, version string) domain.Coordinate {
	return domain.Coordinate{Registry: domain.RegistryNPM, Name: name, Version: version}
}

func pkg(name string) domain.PackageName {
	return domain.PackageName{Registry: domain.RegistryNPM, Name: name}
}

func scopeTargets(g *domain.DependencyGraph, parent domain.Coordinate) map[string]string {
	out := make(map[string]string)
	for local, e := range g.Scope(parent) {
		out[local] = e.Target.Version
	}
	return out
}

func eventCoordinates(r *domain.Report, kind domain.EventKind) []string {
	var out []string
	for _, e := range r.Of(kind) {
		out = append(out, e.Coordinate.String())
	}
	slices.Sort(out)
	return out
}

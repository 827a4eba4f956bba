package provider_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lockmap/internal/adapters/fs"
	"go.trai.ch/lockmap/internal/adapters/provider"
	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestDeno_VersionPrefixMemory(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		Get(gomock.Any(), "https://cdn.deno.land/oak/meta/versions.json", ports.Mutable).
		Return([]byte(`{"latest":"v12.6.1","versions":["v12.6.1","v12.5.0","v11.1.0"]}`), nil)

	deno := provider.NewDeno(fetcher)

	got, err := deno.ResolveLatestTarget(context.Background(), target(t, "deno", "oak", "^12.0.0"), "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinate{Registry: "deno", Name: "oak", Version: "12.6.1"}, got)

	url, err := deno.PkgToURL(got, "")
	require.NoError(t, err)
	assert.Equal(t, "https://deno.land/x/oak@v12.6.1/", url)

	parsed, ok := deno.ParseURLPkg(url + "mod.ts")
	require.True(t, ok)
	assert.Equal(t, got, parsed.Coordinate)
	assert.Equal(t, "./mod.ts", parsed.Subpath)
}

func TestDeno_PrefixObservedFromURL(t *testing.T) {
	t.Parallel()

	deno := provider.NewDeno(nil)
	parsed, ok := deno.ParseURLPkg("https://deno.land/x/hono@v3.11.0/mod.ts")
	require.True(t, ok)
	assert.Equal(t, "3.11.0", parsed.Coordinate.Version)

	// A later lookup for the same module rebuilds the same spelling.
	url, err := deno.PkgToURL(parsed.Coordinate, "")
	require.NoError(t, err)
	assert.Equal(t, "https://deno.land/x/hono@v3.11.0/", url)

	// Memory is per provider value.
	fresh, err := provider.NewDeno(nil).PkgToURL(parsed.Coordinate, "")
	require.NoError(t, err)
	assert.Equal(t, "https://deno.land/x/hono@3.11.0/", fresh)
}

func TestDeno_LatestFallback(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		Get(gomock.Any(), "https://cdn.deno.land/std/meta/versions.json", ports.Mutable).
		Return([]byte(`{"latest":"0.224.0","versions":[]}`), nil)

	got, err := provider.NewDeno(fetcher).ResolveLatestTarget(context.Background(), target(t, "deno", "std", "^0.200.0"), "", "")
	require.NoError(t, err)
	assert.Equal(t, "0.224.0", got.Version)
}

func TestDeno_ResolveBuiltin(t *testing.T) {
	t.Parallel()

	deno := provider.NewDeno(nil)

	tests := []struct {
		specifier string
		alias     string
		resolved  string
	}{
		{specifier: "deno:fs/copy.ts", alias: "deno:fs", resolved: "./fs/copy.ts"},
		{specifier: "deno:path.ts", alias: "deno:path", resolved: "./path/mod.ts"},
		{specifier: "deno:path", alias: "deno:path", resolved: "./path/mod.ts"},
	}
	for _, tt := range tests {
		t.Run(tt.specifier, func(t *testing.T) {
			t.Parallel()
			got, ok := deno.ResolveBuiltin(tt.specifier, nil)
			require.True(t, ok)
			assert.Equal(t, tt.specifier, got.Specifier)
			assert.Equal(t, tt.alias, got.Alias)
			assert.Equal(t, tt.resolved, got.ResolvedSubpath())
			assert.Equal(t, domain.PackageName{Registry: "deno", Name: "std"}, got.Target.Package())
			assert.True(t, got.Target.Range.IsWildcard())
		})
	}

	_, ok := deno.ResolveBuiltin("node:fs", nil)
	assert.False(t, ok)
	_, ok = deno.ResolveBuiltin("deno:", nil)
	assert.False(t, ok)
}

func TestDeno_GetPackageConfig(t *testing.T) {
	t.Parallel()

	cfg, err := provider.NewDeno(nil).GetPackageConfig(context.Background(), "https://deno.land/x/oak@12.6.1/")
	require.NoError(t, err)
	assert.Equal(t, "oak", cfg.Name)
	require.NotNil(t, cfg.Exports)
	assert.ElementsMatch(t, []string{"./", "."}, cfg.Exports.Subpaths())

	std, err := provider.NewDeno(nil).GetPackageConfig(context.Background(), "https://deno.land/std@0.224.0/")
	require.NoError(t, err)
	assert.Equal(t, []string{"./"}, std.Exports.Subpaths())
}

func TestNodelibs_ResolveBuiltin(t *testing.T) {
	t.Parallel()

	nodelibs := provider.NewNodelibs()
	browser := domain.NewConditionSet([]string{"browser"}, nil)

	got, ok := nodelibs.ResolveBuiltin("node:fs/promises", browser)
	require.True(t, ok)
	assert.Equal(t, "node:fs", got.Alias)
	assert.Equal(t, "./nodelibs/fs/promises", got.ResolvedSubpath())
	assert.Equal(t, domain.PackageName{Registry: "npm", Name: "@jspm/core"}, got.Target.Package())

	bare, ok := nodelibs.ResolveBuiltin("path", browser)
	require.True(t, ok)
	assert.Equal(t, "path", bare.Specifier)
	assert.Equal(t, "./nodelibs/path", bare.ResolvedSubpath())

	_, ok = nodelibs.ResolveBuiltin("react", browser)
	assert.False(t, ok)

	_, ok = nodelibs.ResolveBuiltin("node:fs", domain.NewConditionSet([]string{"node"}, nil))
	assert.False(t, ok)
}

func TestLocal_ResolveLatestTarget(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ui"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ui", "package.json"), []byte(`{"version":"1.4.0"}`), domain.PrivateFilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ui", "index.js"), []byte("x"), domain.PrivateFilePerm))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bare"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bare", "package.json"), []byte(`{}`), domain.PrivateFilePerm))

	local := provider.NewLocal(root, "", fs.NewWalker())

	got, err := local.ResolveLatestTarget(context.Background(), target(t, "local", "ui", "^1.0.0"), "", "")
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", got.Version)

	unversioned, err := local.ResolveLatestTarget(context.Background(), target(t, "local", "bare", ""), "", "")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", unversioned.Version)

	_, err = local.ResolveLatestTarget(context.Background(), target(t, "local", "ui", "^2.0.0"), "", "")
	assert.True(t, errors.Is(err, domain.ErrVersionNotFound))

	_, err = local.ResolveLatestTarget(context.Background(), target(t, "local", "missing", ""), "", "")
	assert.True(t, errors.Is(err, domain.ErrPackageNotFound))

	_, err = local.ResolveLatestTarget(context.Background(), target(t, "local", "../escape", ""), "", "")
	assert.True(t, errors.Is(err, domain.ErrNotLocalPath))

	files, err := local.ListFiles(context.Background(), "./ui/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"index.js", "package.json"}, files)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	cdn, err := provider.NewCDN(domain.ProviderJSPM, nil)
	require.NoError(t, err)
	deno := provider.NewDeno(nil)
	registry := provider.NewRegistry(provider.NewNodelibs(), cdn, deno)

	p, err := registry.ForRegistry("npm")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderJSPM, p.Name())

	_, err = registry.ForRegistry("cargo")
	assert.True(t, errors.Is(err, domain.ErrUnknownRegistry))
	assert.Equal(t, domain.KindGraph, domain.KindOf(err))

	p, parsed, ok := registry.ForURL("https://deno.land/std@0.224.0/fs/copy.ts")
	require.True(t, ok)
	assert.Equal(t, "deno", p.Name())
	assert.Equal(t, "deno:fs", parsed.BuiltinAlias)

	_, _, ok = registry.ForURL("https://example.com/app.js")
	assert.False(t, ok)

	builtin, ok := registry.ResolveBuiltin("deno:fs", nil)
	require.True(t, ok)
	assert.Equal(t, "std", builtin.Target.Name)

	assert.Len(t, registry.Providers(), 3)
}

func TestFactory_New(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetchers := mocks.NewMockFetcherFactory(ctrl)
	fetcher := mocks.NewMockFetcher(ctrl)

	settings := domain.DefaultSettings()
	settings.Provider = domain.ProviderUnpkg
	project := &domain.Project{Root: t.TempDir(), Settings: settings}

	fetchers.EXPECT().New(settings).Return(fetcher, nil)

	origins, err := provider.NewFactory(fetchers, fs.NewWalker()).New(project)
	require.NoError(t, err)
	assert.Same(t, fetcher, origins.Fetcher)

	npm, err := origins.Registry.ForRegistry("npm")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderUnpkg, npm.Name())

	for _, registry := range []string{"deno", "local"} {
		_, err := origins.Registry.ForRegistry(registry)
		assert.NoError(t, err, registry)
	}

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		fetchers := mocks.NewMockFetcherFactory(ctrl)
		fetchers.EXPECT().New(gomock.Any()).Return(mocks.NewMockFetcher(ctrl), nil)

		bad := domain.DefaultSettings()
		bad.Provider = "skypack"
		_, err := provider.NewFactory(fetchers, fs.NewWalker()).New(&domain.Project{Root: t.TempDir(), Settings: bad})
		assert.True(t, errors.Is(err, domain.ErrUnknownProvider))
	})
}

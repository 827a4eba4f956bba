package installer_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports/mocks"
	"go.trai.ch/lockmap/internal/engine/installer"
	"go.trai.ch/lockmap/internal/semver"
	"go.uber.org/mock/gomock"
)

func TestLocate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "packages", "ui"), domain.DirPerm))

	ctrl := gomock.NewController(t)
	builtins := mocks.NewMockProviderRegistry(ctrl)
	builtins.EXPECT().ResolveBuiltin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(specifier string, _ *domain.ConditionSet) (*domain.BuiltinTarget, bool) {
			if specifier != "node:fs" {
				return nil, false
			}
			return &domain.BuiltinTarget{
				Specifier:      "node:fs",
				Alias:          "node:fs",
				Target:         domain.VersionTarget{Registry: "npm", Name: "@jspm/core", Range: semver.MustParseRange("^2.0.0")},
				PackageSubpath: "./nodelibs/fs",
			}, true
		},
	).AnyTimes()

	opts := installer.LocateOptions{
		Root:            root,
		DefaultRegistry: domain.RegistryNPM,
		Builtins:        builtins,
		IsLocalPackage: func(path string) bool {
			return path == "packages/ui"
		},
	}

	tests := []struct {
		raw      string
		alias    string
		target   string
		subpath  string
		errorIs  error
		isLocal  bool
		builtins bool
	}{
		{raw: "react", alias: "react", target: "npm:react", subpath: "."},
		{raw: "react@^18.2.0", alias: "react", target: "npm:react@^18.2.0", subpath: "."},
		{raw: "react-dom@18/client", alias: "react-dom", target: "npm:react-dom@18", subpath: "./client"},
		{raw: "lodash/fp", alias: "lodash", target: "npm:lodash", subpath: "./fp"},
		{raw: "@babel/core@7.24.0", alias: "@babel/core", target: "npm:@babel/core@7.24.0", subpath: "."},
		{raw: "@scope/pkg/deep/file.js", alias: "@scope/pkg", target: "npm:@scope/pkg", subpath: "./deep/file.js"},
		{raw: "r=react@next", alias: "r", target: "npm:react@next", subpath: "."},
		{raw: "deno:oak@^12.0.0", alias: "oak", target: "deno:oak@^12.0.0", subpath: "."},
		{raw: "npm:", errorIs: domain.ErrInvalidSpecifier},
		{raw: "node:fs", alias: "node:fs", target: "npm:@jspm/core@^2.0.0", subpath: "./nodelibs/fs", builtins: true},
		{raw: "./packages/ui", target: "local:packages/ui", subpath: ".", isLocal: true},
		{raw: "packages/ui", target: "local:packages/ui", subpath: ".", isLocal: true},
		{raw: "local:packages/ui", target: "local:packages/ui", subpath: ".", isLocal: true},
		{raw: "../outside", errorIs: domain.ErrNotLocalPath},
		{raw: "local:../outside", errorIs: domain.ErrNotLocalPath},
		{raw: "@scope", errorIs: domain.ErrInvalidSpecifier},
		{raw: "react@>=1 <", errorIs: domain.ErrInvalidVersionRange},
		{raw: "  ", errorIs: domain.ErrInvalidSpecifier},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := installer.Locate(tt.raw, opts)
			if tt.errorIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.errorIs), "got %v", err)
				assert.Equal(t, domain.KindInput, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.alias, got.Alias)
			assert.Equal(t, tt.target, got.Target.String())
			assert.Equal(t, tt.subpath, got.Subpath)
			assert.Equal(t, tt.isLocal, got.Target.Registry == domain.RegistryLocal)
			assert.Equal(t, tt.builtins, got.Builtin != nil)
		})
	}
}

func TestFromManifest(t *testing.T) {
	t.Parallel()

	cfg, err := domain.ParsePackageConfig([]byte(`{
		"name": "app",
		"dependencies": {"react": "^18.2.0", "alias": "npm:preact@^10.0.0"},
		"peerDependencies": {"react": "^17.0.0", "scheduler": "*"},
		"devDependencies": {"vitest": "^1.0.0"}
	}`))
	require.NoError(t, err)

	requests, err := installer.FromManifest(cfg, false, domain.RegistryNPM)
	require.NoError(t, err)

	var got []string
	for _, r := range requests {
		assert.False(t, r.Fresh)
		got = append(got, r.Alias+"="+r.Target.String())
	}
	assert.Equal(t, []string{
		"alias=npm:preact@^10.0.0",
		"react=npm:react@^18.2.0",
		"scheduler=npm:scheduler@*",
	}, got)

	withDev, err := installer.FromManifest(cfg, true, domain.RegistryNPM)
	require.NoError(t, err)
	assert.Len(t, withDev, 4)

	broken, err := domain.ParsePackageConfig([]byte(`{"dependencies": {"ok": "^1.0.0", "bad": ">=1 <"}}`))
	require.NoError(t, err)
	requests, err = installer.FromManifest(broken, false, domain.RegistryNPM)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidVersionRange))
	assert.Contains(t, err.Error(), "dependency bad")
	assert.Len(t, requests, 1)
}

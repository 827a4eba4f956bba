package installer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/engine/installer"
)

func TestFromImportMap(t *testing.T) {
	t.Parallel()

	m, err := domain.ParseImportMap([]byte(`{
		"env": ["browser", "development"],
		"imports": {
			"react": "https://cdn.test/react@18.2.0/index.js",
			"react/": "https://cdn.test/react@18.2.0/",
			"app": "https://other.test/app.js"
		},
		"scopes": {
			"https://cdn.test/react@18.2.0/": {
				"loose-envify": "https://cdn.test/loose-envify@1.4.0/index.js"
			},
			"https://cdn.test/": {
				"js-tokens": "https://cdn.test/js-tokens@4.0.0/index.js"
			}
		}
	}`))
	require.NoError(t, err)

	g, skipped := installer.FromImportMap(m, fakeRegistry{provider: newFakeOrigin()})

	assert.Equal(t, []string{"https://other.test/app.js"}, skipped)
	assert.Equal(t, []string{"browser", "development"}, g.Env())
	assert.Equal(t, []string{"react"}, g.PrimaryNames())

	react, ok := g.Primary("react")
	require.True(t, ok)
	assert.Equal(t, coord("react", "18.2.0"), react)
	declared, _ := g.Dependency("react")
	assert.True(t, declared.Range.IsExact())

	assert.Equal(t, map[string]string{"loose-envify": "1.4.0"}, scopeTargets(g, react))
	assert.False(t, g.HasScope(coord("loose-envify", "1.4.0")), "unscoped parents are resolved by the next install")
	assert.Equal(t, []string{"4.0.0"}, g.Versions(pkg("js-tokens")))
	require.NoError(t, g.Validate())
}

func TestFromImportMap_ReinstallKeepsVersions(t *testing.T) {
	t.Parallel()

	origin := reactOrigin()
	origin.publish("react", "18.3.1", `{"dependencies":{"loose-envify":"^1.1.0"}}`)
	registry := fakeRegistry{provider: origin}

	m, err := domain.ParseImportMap([]byte(`{
		"imports": {"react": "https://cdn.test/react@18.2.0/index.js"},
		"scopes": {
			"https://cdn.test/": {
				"loose-envify": "https://cdn.test/loose-envify@1.4.0/index.js",
				"js-tokens": "https://cdn.test/js-tokens@4.0.0/index.js"
			}
		}
	}`))
	require.NoError(t, err)

	g, skipped := installer.FromImportMap(m, registry)
	require.Empty(t, skipped)

	out, report := install(t, newTestInstaller(t, registry), g, installer.Options{},
		request(t, "react", "react", "^18.0.0", false))

	react, _ := out.Primary("react")
	assert.Equal(t, "18.2.0", react.Version)
	assert.Equal(t, map[string]string{"loose-envify": "1.4.0"}, scopeTargets(out, react))
	assert.Zero(t, report.Lookups, "recorded versions satisfy every range")
}

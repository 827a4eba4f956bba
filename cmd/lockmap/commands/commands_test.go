package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lockmap/cmd/lockmap/commands"
	"go.trai.ch/lockmap/internal/app"
	"go.trai.ch/lockmap/internal/build"
)

type mockApp struct {
	installFunc   func(ctx context.Context, targets []string, opts app.InstallOptions) error
	updateFunc    func(ctx context.Context, names []string, opts app.Options) error
	linkFunc      func(ctx context.Context, paths []string, opts app.Options) error
	uninstallFunc func(ctx context.Context, names []string, opts app.Options) error
	exportsFunc   func(ctx context.Context, name string, opts app.Options) error

	jsonLogs    bool
	verboseLogs bool
}

func (m *mockApp) Install(ctx context.Context, targets []string, opts app.InstallOptions) error {
	if m.installFunc != nil {
		return m.installFunc(ctx, targets, opts)
	}
	return nil
}

func (m *mockApp) Update(ctx context.Context, names []string, opts app.Options) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, names, opts)
	}
	return nil
}

func (m *mockApp) Link(ctx context.Context, paths []string, opts app.Options) error {
	if m.linkFunc != nil {
		return m.linkFunc(ctx, paths, opts)
	}
	return nil
}

func (m *mockApp) Uninstall(ctx context.Context, names []string, opts app.Options) error {
	if m.uninstallFunc != nil {
		return m.uninstallFunc(ctx, names, opts)
	}
	return nil
}

func (m *mockApp) Exports(ctx context.Context, name string, opts app.Options) error {
	if m.exportsFunc != nil {
		return m.exportsFunc(ctx, name, opts)
	}
	return nil
}

func (m *mockApp) SetLogMode(json, verbose bool) {
	m.jsonLogs = json
	m.verboseLogs = verbose
}

func TestCommands_Install(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var (
			capturedOpts    app.InstallOptions
			capturedTargets []string
		)
		mock := &mockApp{
			installFunc: func(_ context.Context, targets []string, opts app.InstallOptions) error {
				capturedOpts = opts
				capturedTargets = targets
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{
			"install", "react@^18", "lodash=lodash-es",
			"--dev", "--env", "browser,development", "--provider", "unpkg",
			"--integrity", "--no-flatten", "--no-combine", "--dry-run", "--offline",
			"--output", "public/importmap.json", "--verbose",
		})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"react@^18", "lodash=lodash-es"}, capturedTargets)
		assert.True(t, capturedOpts.Dev)
		assert.Equal(t, app.Options{
			Env:       []string{"browser", "development"},
			Provider:  "unpkg",
			Output:    "public/importmap.json",
			Offline:   true,
			Integrity: true,
			NoFlatten: true,
			NoCombine: true,
			DryRun:    true,
		}, capturedOpts.Options)
		assert.True(t, mock.verboseLogs)
		assert.False(t, mock.jsonLogs)
	})

	t.Run("installs from package.json without targets", func(t *testing.T) {
		called := false
		mock := &mockApp{
			installFunc: func(_ context.Context, targets []string, _ app.InstallOptions) error {
				called = true
				assert.Empty(t, targets)
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"i", "--json"})
		require.NoError(t, cli.Execute(context.Background()))
		assert.True(t, called)
		assert.True(t, mock.jsonLogs)
	})

	t.Run("returns error on install failure", func(t *testing.T) {
		mock := &mockApp{
			installFunc: func(_ context.Context, _ []string, _ app.InstallOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"install", "react"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Update(t *testing.T) {
	var capturedNames []string
	mock := &mockApp{
		updateFunc: func(_ context.Context, names []string, _ app.Options) error {
			capturedNames = names
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"update", "react", "react-dom"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, []string{"react", "react-dom"}, capturedNames)
}

func TestCommands_Link(t *testing.T) {
	t.Run("passes paths", func(t *testing.T) {
		var capturedPaths []string
		mock := &mockApp{
			linkFunc: func(_ context.Context, paths []string, _ app.Options) error {
				capturedPaths = paths
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"link", "./packages/ui"})
		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, []string{"./packages/ui"}, capturedPaths)
	})

	t.Run("requires a path", func(t *testing.T) {
		mock := &mockApp{
			linkFunc: func(_ context.Context, _ []string, _ app.Options) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"link"})
		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Uninstall(t *testing.T) {
	var capturedNames []string
	mock := &mockApp{
		uninstallFunc: func(_ context.Context, names []string, opts app.Options) error {
			capturedNames = names
			assert.True(t, opts.DryRun)
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"rm", "react", "--dry-run"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, []string{"react"}, capturedNames)
}

func TestCommands_Exports(t *testing.T) {
	t.Run("passes the name and conditions", func(t *testing.T) {
		var (
			capturedName string
			capturedOpts app.Options
		)
		mock := &mockApp{
			exportsFunc: func(_ context.Context, name string, opts app.Options) error {
				capturedName = name
				capturedOpts = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"exports", "scheduler", "-e", "deno"})
		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "scheduler", capturedName)
		assert.Equal(t, []string{"deno"}, capturedOpts.Env)
	})

	t.Run("takes exactly one name", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"exports", "a", "b"})
		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Version(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), build.Version)
}

func TestCommands_VersionFlag(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"--version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "commit: "+build.Commit)
}

func TestCommands_Help(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"install", "--help"}, {"-h"}} {
		cli := commands.New(&mockApp{})

		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs(args)

		require.NotPanics(t, func() {
			require.NoError(t, cli.Execute(context.Background()))
		})
		assert.Contains(t, buf.String(), "--verbose")
	}
}

func TestCommands_VersionShorthand(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"-v"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "lockmap version "+build.Version)
}

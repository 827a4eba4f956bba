// Package commands implements the CLI commands for lockmap.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/lockmap/internal/app"
	"go.trai.ch/lockmap/internal/build"
)

// CLI represents the command line interface for lockmap.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	flags   rootFlags
}

// Application represents the application logic interface.
type Application interface {
	Install(ctx context.Context, targets []string, opts app.InstallOptions) error
	Update(ctx context.Context, names []string, opts app.Options) error
	Link(ctx context.Context, paths []string, opts app.Options) error
	Uninstall(ctx context.Context, names []string, opts app.Options) error
	Exports(ctx context.Context, name string, opts app.Options) error
	SetLogMode(json, verbose bool)
}

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	json      bool
	verbose   bool
	offline   bool
	env       []string
	provider  string
	output    string
	integrity bool
	noFlatten bool
	noCombine bool
	dryRun    bool
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "lockmap",
		Short:         "Reproducible import maps for browser modules",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&c.flags.json, "json", false, "Log in JSON format")
	pf.BoolVar(&c.flags.verbose, "verbose", false, "Log debug output, including spans")
	pf.BoolVar(&c.flags.offline, "offline", false, "Serve every request from the local cache")
	pf.StringSliceVarP(&c.flags.env, "env", "e", nil, "Conditions to resolve exports with, e.g. browser,production")
	pf.StringVarP(&c.flags.provider, "provider", "p", "", "CDN serving registry packages (jspm, unpkg, jsdelivr)")
	pf.StringVarP(&c.flags.output, "output", "o", "", "Import map file, relative to the project root")
	pf.BoolVar(&c.flags.integrity, "integrity", false, "Add integrity hashes for every mapped module")
	pf.BoolVar(&c.flags.noFlatten, "no-flatten", false, "Keep one scope per package")
	pf.BoolVar(&c.flags.noCombine, "no-combine", false, "Keep subpath mappings instead of folder mappings")
	pf.BoolVar(&c.flags.dryRun, "dry-run", false, "Print the import map instead of writing files")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		c.app.SetLogMode(c.flags.json, c.flags.verbose)
	}

	rootCmd.AddCommand(c.newInstallCmd())
	rootCmd.AddCommand(c.newUpdateCmd())
	rootCmd.AddCommand(c.newLinkCmd())
	rootCmd.AddCommand(c.newUninstallCmd())
	rootCmd.AddCommand(c.newExportsCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func (c *CLI) options() app.Options {
	return app.Options{
		Env:       c.flags.env,
		Provider:  c.flags.provider,
		Output:    c.flags.output,
		Offline:   c.flags.offline,
		Integrity: c.flags.integrity,
		NoFlatten: c.flags.noFlatten,
		NoCombine: c.flags.noCombine,
		DryRun:    c.flags.dryRun,
	}
}

package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/lockmap/internal/app"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install [targets...]",
		Aliases: []string{"i"},
		Short:   "Install packages and regenerate the import map",
		Long: `Install adds each target as a primary dependency. A target is
[alias=][registry:]name[@range][/subpath] or a path to a local package.

Without targets, the dependencies of package.json are installed. Versions
already in the lockfile are kept while they satisfy the declared ranges.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, _ := cmd.Flags().GetBool("dev")
			return c.app.Install(cmd.Context(), args, app.InstallOptions{
				Options: c.options(),
				Dev:     dev,
			})
		},
	}

	cmd.Flags().BoolP("dev", "D", false, "Include devDependencies when installing from package.json")

	return cmd
}

func (c *CLI) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "update [names...]",
		Aliases: []string{"upgrade"},
		Short:   "Update dependencies to the latest versions their ranges allow",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Update(cmd.Context(), args, c.options())
		},
	}
}

func (c *CLI) newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <paths...>",
		Short: "Install local package directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Link(cmd.Context(), args, c.options())
		},
	}
}

func (c *CLI) newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall <names...>",
		Aliases: []string{"remove", "rm"},
		Short:   "Remove dependencies and regenerate the import map",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Uninstall(cmd.Context(), args, c.options())
		},
	}
}

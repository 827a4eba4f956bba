package commands

import "github.com/spf13/cobra"

func (c *CLI) newExportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exports <name>",
		Short: "Show how the exports of an installed dependency resolve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Exports(cmd.Context(), args[0], c.options())
		},
	}
}

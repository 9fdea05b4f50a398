package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh the cache whenever a local bundle changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Watch(cmd.Context())
		},
	}
}

package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/slicecache/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the profile cache and sliced artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			artifacts, _ := cmd.Flags().GetBool("artifacts")
			all, _ := cmd.Flags().GetBool("all")

			opts := app.CleanOptions{}

			switch {
			case all:
				opts.Cache = true
				opts.Artifacts = true
			case artifacts:
				opts.Artifacts = true
			default:
				// Default behavior: clean the profile cache
				opts.Cache = true
			}

			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolP("artifacts", "a", false, "Clean written configs, artifacts and fingerprints")
	cmd.Flags().Bool("all", false, "Clean the profile cache and all artifacts")

	return cmd
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/slicecache/internal/app"
)

func (c *CLI) newSliceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slice GEOMETRY",
		Short: "Slice a geometry file, reusing the previous artifact when nothing changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolveOpts, err := resolveOptions(cmd)
			if err != nil {
				return err
			}

			objects, _ := cmd.Flags().GetStringSlice("object")
			output, _ := cmd.Flags().GetString("output")
			force, _ := cmd.Flags().GetBool("force")
			noRefresh, _ := cmd.Flags().GetBool("no-refresh")

			result, err := c.app.Slice(cmd.Context(), app.SliceOptions{
				ResolveOptions:  resolveOpts,
				GeometryPath:    args[0],
				ObjectNames:     objects,
				Destination:     output,
				Force:           force,
				RefreshProfiles: !noRefresh,
			})
			if err != nil {
				return err
			}

			path := result.ArtifactPath
			if result.Destination != "" {
				path = result.Destination
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	addProfileFlags(cmd)
	cmd.Flags().StringSlice("object", nil, "Name of an exported object (repeatable)")
	cmd.Flags().StringP("output", "o", "", "Copy the artifact to this path")
	cmd.Flags().BoolP("force", "f", false, "Slice even when a matching artifact exists")
	cmd.Flags().Bool("no-refresh", false, "Use cached profiles without re-fetching them")

	return cmd
}

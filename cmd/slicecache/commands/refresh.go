package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch every configured bundle and rebuild the cache index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := c.app.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d updated, %d unchanged, %d purged, %d failed\n",
				len(report.Updated), len(report.Unchanged), len(report.Purged), len(report.Failed))
			return report.Err()
		},
	}
}

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "list [printer|filament|print]",
		Short:     "List the cached profiles",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(domain.CategoryPrinter), string(domain.CategoryFilament), string(domain.CategoryPrint)},
		RunE: func(cmd *cobra.Command, args []string) error {
			var category domain.Category
			if len(args) == 1 {
				category = domain.Category(args[0])
				if !category.Resolvable() {
					return zerr.With(zerr.Wrap(domain.ErrUnknownCategory, "failed to list profiles"), "category", args[0])
				}
			}

			entries, err := c.app.List(cmd.Context(), category)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "KEY\tSOURCE")
			for _, entry := range entries {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", entry.Key, entry.BundleOrigin)
			}
			return w.Flush()
		},
	}
}

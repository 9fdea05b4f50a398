package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/slicecache/internal/app"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the selected profiles into one slicer config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := resolveOptions(cmd)
			if err != nil {
				return err
			}

			cfg, err := c.app.Resolve(cmd.Context(), opts)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				_, err = cmd.OutOrStdout().Write([]byte(cfg.Serialize()))
				return err
			}
			if err := os.WriteFile(output, []byte(cfg.Serialize()), domain.FilePerm); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to write config"), "path", output)
			}
			return nil
		},
	}

	addProfileFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Write the config to a file instead of stdout")

	return cmd
}

func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().String("printer", "", "Printer profile (id or printer:id)")
	cmd.Flags().String("filament", "", "Filament profile (id or filament:id)")
	cmd.Flags().String("print", "", "Print profile (id or print:id)")
	cmd.Flags().StringArray("set", nil, "Override a resolved parameter (key=value)")
	cmd.Flags().StringArray("inject", nil, "Inject G-code (kind:trigger:value[:command])")
}

func resolveOptions(cmd *cobra.Command) (app.ResolveOptions, error) {
	var opts app.ResolveOptions
	var err error

	if opts.Printer, err = profileFlag(cmd, domain.CategoryPrinter); err != nil {
		return opts, err
	}
	if opts.Filament, err = profileFlag(cmd, domain.CategoryFilament); err != nil {
		return opts, err
	}
	if opts.Print, err = profileFlag(cmd, domain.CategoryPrint); err != nil {
		return opts, err
	}

	sets, _ := cmd.Flags().GetStringArray("set")
	for _, s := range sets {
		o, err := domain.ParseOverride(s)
		if err != nil {
			return opts, err
		}
		opts.Overrides = append(opts.Overrides, o)
	}

	injects, _ := cmd.Flags().GetStringArray("inject")
	for _, s := range injects {
		inj, err := domain.ParseInjection(s)
		if err != nil {
			return opts, err
		}
		opts.Injections = append(opts.Injections, inj)
	}
	return opts, nil
}

// profileFlag reads the flag named after category. A bare id gets the
// category prefix so ids that contain colons need no quoting.
func profileFlag(cmd *cobra.Command, category domain.Category) (domain.ProfileKey, error) {
	value, _ := cmd.Flags().GetString(string(category))
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if strings.HasPrefix(value, string(category)+":") {
		key, err := domain.ParseProfileKey(value)
		if err != nil {
			return "", zerr.With(err, "flag", string(category))
		}
		return key, nil
	}
	return domain.NewProfileKey(category, value), nil
}

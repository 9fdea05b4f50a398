// Package commands implements the CLI commands for slicecache.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/slicecache/internal/app"
	"go.trai.ch/slicecache/internal/build"
	"go.trai.ch/slicecache/internal/core/domain"
)

// CLI represents the command line interface for slicecache.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	stopTracing func(context.Context) error
}

// Application represents the application logic interface.
type Application interface {
	SetConfigPath(path string)
	SetLogJSON(enable bool)
	EnableTracing() func(context.Context) error

	Refresh(ctx context.Context) (*domain.RefreshReport, error)
	List(ctx context.Context, category domain.Category) ([]domain.CacheEntry, error)
	Resolve(ctx context.Context, opts app.ResolveOptions) (domain.ResolvedConfig, error)
	Slice(ctx context.Context, opts app.SliceOptions) (*app.SliceResult, error)
	Watch(ctx context.Context) error
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "slicecache",
		Short:         "Cache slicer profiles and reuse sliced artifacts",
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

	rootCmd.PersistentFlags().StringP("config", "c", "", "Settings file (default: search upward for "+domain.SettingsFileName+")")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().Bool("trace", false, "Log the duration of each traced operation")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRunE = c.configure

	rootCmd.AddCommand(c.newRefreshCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newSliceCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) configure(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	logJSON, _ := cmd.Flags().GetBool("log-json")
	trace, _ := cmd.Flags().GetBool("trace")

	c.app.SetConfigPath(configPath)
	c.app.SetLogJSON(logJSON)
	if trace && c.stopTracing == nil {
		c.stopTracing = c.app.EnableTracing()
	}
	return nil
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	err := c.rootCmd.Execute()
	if c.stopTracing != nil {
		_ = c.stopTracing(context.WithoutCancel(ctx))
		c.stopTracing = nil
	}
	return err
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

package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storyline/pkg/buildinfo"
)

// Execute runs the storyline CLI and returns an error if any command
// fails. This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, and executes the command tree. The
// logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "storyline",
		Short:        "Storyline renders step-driven narrative diagrams",
		Long:         `Storyline is a tool for authoring and presenting narrative diagrams: a graph of nodes and edges is revealed step by step, with automatic camera placement, overlap correction, and routed connectors.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/storyline/config.toml)")

	root.AddCommand(newValidateCmd())
	root.AddCommand(newRenderCmd(&configPath))
	root.AddCommand(newPlayCmd(&configPath))
	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newStoryCmd(&configPath))
	root.AddCommand(newCacheCmd(&configPath))
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}

package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/riptano/argus/internal/config"
)

var (
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "argus",
	Short: "A multi-tracker issue dashboard",
	Long: `Argus aggregates issues from multiple JIRA-style trackers into
local views and dashboards. Issues are cached locally and refreshed
incrementally, so most operations work offline against the cache.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", config.DefaultDir(), "Configuration directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

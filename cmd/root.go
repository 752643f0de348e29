// Package cmd defines and implements the CLI commands for the
// newscrawl executable: crawl, search, update and remove.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guanyuming-he/newscrawl/internal/config"
	"github.com/guanyuming-he/newscrawl/internal/logging"
)

var (
	cfgFile string

	// Populated by the root PersistentPreRunE for subcommands.
	cfg    config.Config
	logger *zap.Logger
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newscrawl",
		Short: "A focused crawler and full-text search backend for business news.",
		Long: `newscrawl crawls a curated set of business-news hosts into an
on-disk full-text index and answers text queries with optional date
ranges. A companion updater ingests RSS/Atom feeds and bounds the
index size.`,

		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg = loaded

			logger, err = logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./newscrawl.yaml)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newRemoveCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

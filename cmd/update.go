package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guanyuming-he/newscrawl/internal/feeds"
	"github.com/guanyuming-he/newscrawl/internal/fetcher"
	"github.com/guanyuming-he/newscrawl/internal/index"
)

// newUpdateCmd creates the 'update' subcommand: ingest the configured
// RSS/Atom feeds, then shrink the index to its capacity bound.
func newUpdateCmd() *cobra.Command {
	var (
		numToAdd int
		maxDocs  uint64
	)

	cmd := &cobra.Command{
		Use:   "update <db_path>",
		Short: "Ingest RSS/Atom feeds and bound the index size",
		Long: `Fetches each configured feed, adds articles that are not yet
indexed, then evicts the oldest documents until the index holds at
most the configured maximum. Maximums below 10000 are refused.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(args[0], numToAdd, maxDocs)
		},
	}
	cmd.Flags().IntVar(&numToAdd, "add", 0,
		"maximum feed items to add (0 uses the configured default)")
	cmd.Flags().Uint64Var(&maxDocs, "max", 0,
		"capacity bound after ingestion (0 uses the configured default)")
	return cmd
}

func runUpdate(dbPath string, numToAdd int, maxDocs uint64) error {
	if numToAdd == 0 {
		numToAdd = cfg.Updater.NumToAdd
	}
	if maxDocs == 0 {
		maxDocs = cfg.Updater.MaxDocs
	}

	rules, err := cfg.PolicyTable()
	if err != nil {
		return err
	}
	// An empty table would reject every feed item; feed ingestion
	// then runs unfiltered.
	if rules.Hosts() == 0 {
		rules = nil
	}

	idx, err := index.Open(dbPath, index.Options{
		FlushThreshold: cfg.Index.FlushThreshold,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := idx.Close(); cerr != nil {
			logger.Error("index close failed", zap.Error(cerr))
		}
	}()

	updater, err := feeds.New(feeds.Options{
		Index:   idx,
		Fetcher: fetcher.New(cfg.Crawler.UserAgent, cfg.Crawler.Timeout(), logger),
		Rules:   rules,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	added, err := updater.Run(cfg.Updater.Feeds, numToAdd, maxDocs)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	logger.Info("update complete", zap.Int("added", added))
	return nil
}

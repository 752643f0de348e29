package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guanyuming-he/newscrawl/internal/crawler"
	"github.com/guanyuming-he/newscrawl/internal/fetcher"
	"github.com/guanyuming-he/newscrawl/internal/index"
	"github.com/guanyuming-he/newscrawl/internal/urlx"
)

// newCrawlCmd creates the 'crawl' subcommand: run the indexer from
// the configured seed list, or resume a previously saved frontier.
func newCrawlCmd() *cobra.Command {
	var (
		resume bool
		limit  uint64
	)

	cmd := &cobra.Command{
		Use:   "crawl <db_path> <queue_path>",
		Short: "Crawl configured hosts into the index",
		Long: `Runs the breadth-first crawl over the configured per-host rules,
adding accepted pages to the index at db_path. On exit, including
SIGINT, the remaining frontier is saved to queue_path and the index
is committed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(args[0], args[1], resume, limit)
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false,
		"load the frontier from queue_path instead of the configured seeds")
	cmd.Flags().Uint64Var(&limit, "limit", 0,
		"stop after indexing this many pages (0 uses the configured limit)")
	return cmd
}

func runCrawl(dbPath, queuePath string, resume bool, limit uint64) error {
	rules, err := cfg.PolicyTable()
	if err != nil {
		return err
	}
	if rules.Hosts() == 0 {
		return fmt.Errorf("no policy rules configured; nothing would be crawled")
	}

	idx, err := index.Open(dbPath, index.Options{
		FlushThreshold: cfg.Index.FlushThreshold,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	if limit == 0 {
		limit = cfg.Crawler.IndexLimit
	}

	engine, err := crawler.New(crawler.Options{
		Index:      idx,
		Fetcher:    fetcher.New(cfg.Crawler.UserAgent, cfg.Crawler.Timeout(), logger),
		Rules:      rules,
		Logger:     logger,
		QueuePath:  queuePath,
		IndexLimit: limit,
	})
	if err != nil {
		_ = idx.Close()
		return err
	}
	// Teardown persists the frontier and commits the index on every
	// exit path.
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			logger.Error("teardown failed", zap.Error(cerr))
		}
	}()

	if resume {
		if err := engine.Resume(); err != nil {
			return err
		}
	} else {
		seeds, err := parseSeeds(cfg.Crawler.Seeds)
		if err != nil {
			return err
		}
		engine.Seed(seeds)
	}

	// SIGINT and SIGTERM stop the loop after the current iteration;
	// the deferred teardown then runs normally.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		<-signals
		logger.Info("interrupt received, finishing current page")
		engine.Interrupt()
	}()

	if err := engine.Run(); err != nil {
		return fmt.Errorf("crawl: %w", err)
	}
	logger.Info("crawl finished",
		zap.Uint64("indexed", engine.NumIndexed()),
		zap.Int("frontier_remaining", engine.FrontierLen()),
	)
	return nil
}

func parseSeeds(raws []string) ([]urlx.URL, error) {
	if len(raws) == 0 {
		return nil, fmt.Errorf("no seeds configured")
	}
	seeds := make([]urlx.URL, 0, len(raws))
	for _, raw := range raws {
		u, err := urlx.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", raw, err)
		}
		seeds = append(seeds, u)
	}
	return seeds, nil
}

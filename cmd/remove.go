package cmd

import (
	"fmt"
	"math/rand"
	"net/url"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guanyuming-he/newscrawl/internal/index"
	"github.com/guanyuming-he/newscrawl/internal/urlx"
)

// newRemoveCmd creates the 'remove' subcommand: delete specific URLs
// from the index, or purge documents by the configured per-host
// probability table.
func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <db_path> (purge | <url>...)",
		Short: "Remove documents from the index",
		Long: `With 'purge', walks the whole index and deletes each document
with its host's configured probability (remove.purge_probabilities).
Otherwise removes exactly the listed URLs.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(args[0], args[1:])
		},
	}
	return cmd
}

func runRemove(dbPath string, targets []string) error {
	idx, err := index.Open(dbPath, index.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := idx.Close(); cerr != nil {
			logger.Error("index close failed", zap.Error(cerr))
		}
	}()

	if len(targets) == 1 && targets[0] == "purge" {
		return runPurge(idx)
	}

	for _, raw := range targets {
		u, err := urlx.Parse(raw)
		if err != nil {
			return fmt.Errorf("remove %q: %w", raw, err)
		}
		if err := idx.Remove(u); err != nil {
			return err
		}
		logger.Info("removed", zap.String("url", raw))
	}
	return nil
}

// runPurge deletes documents host by host with the configured
// probabilities, mirroring the maintenance tool used to thin out
// over-represented sources.
func runPurge(idx *index.Index) error {
	probs := cfg.Remove.PurgeProbabilities
	if len(probs) == 0 {
		return fmt.Errorf("purge: no remove.purge_probabilities configured")
	}

	removed, err := idx.RemoveIf(func(doc *index.Document) bool {
		rawURL, _ := index.SplitData(doc.Data())
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return false
		}
		p, found := probs[parsed.Hostname()]
		if !found {
			return false
		}
		return rand.Float64() < p
	})
	if err != nil {
		return err
	}
	logger.Info("purge complete", zap.Int("removed", removed))
	return nil
}

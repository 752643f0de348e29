package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guanyuming-he/newscrawl/internal/searcher"
)

// newSearchCmd creates the 'search' subcommand: query an index and
// print each match's data line plus its sampled keywords.
func newSearchCmd() *cobra.Command {
	var maxResults int

	cmd := &cobra.Command{
		Use:   "search <db_path> <terms>...",
		Short: "Query the index",
		Long: `Searches the index with free text, optional title:/text: scopes
and date ranges like 06/01/2024..12/31/2024. Results print as the
stored URL and title, followed by a sample of the page's keywords.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], strings.Join(args[1:], " "), maxResults)
		},
	}
	cmd.Flags().IntVar(&maxResults, "max-results", 0,
		"maximum matches to return (0 uses the configured default)")
	return cmd
}

func runSearch(cmd *cobra.Command, dbPath, queryText string, maxResults int) error {
	s, err := searcher.Open(dbPath, searcher.Options{
		MaxResults: cfg.Search.MaxResults,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	results, err := s.Query(queryText, maxResults)
	if err != nil {
		return fmt.Errorf("query %q: %w", queryText, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "found %d results\n", len(results))
	for _, r := range results {
		fmt.Fprintln(out, r.Data())
		if len(r.Keywords) > 0 {
			fmt.Fprintln(out, strings.Join(r.Keywords, " "))
		}
	}
	return nil
}

// Package searcher answers text queries, with optional date-range
// predicates, over a read-only open of the crawl index.
package searcher

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/guanyuming-he/newscrawl/internal/dates"
	"github.com/guanyuming-he/newscrawl/internal/index"
)

// DefaultMaxResults bounds a query when the caller does not say.
const DefaultMaxResults = 64

// Options configure a Searcher.
type Options struct {
	// MaxResults overrides DefaultMaxResults when > 0.
	MaxResults int
	Logger     *zap.Logger
}

// Result is one query match.
type Result struct {
	URL      string
	Title    string
	Date     dates.Date
	Score    float64
	Keywords []string
}

// Data renders the match the way the index stores it: URL and title,
// tab-separated.
func (r Result) Data() string { return r.URL + "\t" + r.Title }

// Searcher queries one index. The underlying open is read-only, so a
// live writer in another process is not disturbed; reads see the
// last committed snapshot.
type Searcher struct {
	idx        *index.Index
	ownsIndex  bool
	maxResults int
	logger     *zap.Logger
}

// Open opens the index directory read-only for querying.
func Open(path string, opts Options) (*Searcher, error) {
	idx, err := index.OpenReadOnly(path, index.Options{Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	s := New(idx, opts)
	s.ownsIndex = true
	return s, nil
}

// New wraps an already open index, typically the writer's own handle
// in combined tools and tests.
func New(idx *index.Index, opts Options) *Searcher {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		idx:        idx,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Close releases the read-only open. A Searcher wrapping a foreign
// index leaves it alone.
func (s *Searcher) Close() error {
	if !s.ownsIndex {
		return nil
	}
	return s.idx.Close()
}

// Query parses the text into term and date-range predicates and
// returns the top matches by relevance. maxResults <= 0 falls back
// to the configured default.
func (s *Searcher) Query(text string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	parsed := parseQuery(text)
	if parsed == nil {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(parsed, maxResults, 0, false)
	req.Fields = []string{"url", "title", "date", "keywords"}

	res, err := s.idx.Bleve().Search(req)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := Result{Score: hit.Score}
		if v, ok := hit.Fields["url"].(string); ok {
			r.URL = v
		}
		if v, ok := hit.Fields["title"].(string); ok {
			r.Title = v
		}
		if v, ok := hit.Fields["date"].(string); ok {
			if d, valid := dates.ParseYYYYMMDD(v); valid {
				r.Date = d
			}
		}
		if v, ok := hit.Fields["keywords"].(string); ok && v != "" {
			r.Keywords = strings.Fields(v)
		}
		results = append(results, r)
	}
	return results, nil
}

// parseQuery builds the engine query: free terms are OR-ed together
// and matched against title and body through the same English
// analyzer used at index time; title:/text: prefixes scope a term;
// A..B tokens become date-slot range predicates that every match
// must satisfy.
func parseQuery(text string) query.Query {
	var (
		terms  []query.Query
		ranges []query.Query
	)

	for _, token := range strings.Fields(text) {
		if lo, hi, ok := parseDateRange(token); ok {
			ranges = append(ranges, dateRangeQuery(lo, hi))
			continue
		}
		switch {
		case strings.HasPrefix(token, "title:"):
			terms = append(terms, fieldMatch("title", strings.TrimPrefix(token, "title:")))
		case strings.HasPrefix(token, "text:"):
			terms = append(terms, fieldMatch("body", strings.TrimPrefix(token, "text:")))
		default:
			terms = append(terms, bleve.NewMatchQuery(token))
		}
	}

	switch {
	case len(terms) == 0 && len(ranges) == 0:
		return nil
	case len(terms) == 0:
		boolean := bleve.NewBooleanQuery()
		boolean.AddMust(bleve.NewMatchAllQuery())
		boolean.AddMust(ranges...)
		return boolean
	case len(ranges) == 0:
		return bleve.NewDisjunctionQuery(terms...)
	default:
		boolean := bleve.NewBooleanQuery()
		boolean.AddMust(bleve.NewDisjunctionQuery(terms...))
		boolean.AddMust(ranges...)
		return boolean
	}
}

func fieldMatch(field, term string) query.Query {
	q := bleve.NewMatchQuery(term)
	q.SetField(field)
	return q
}

func dateRangeQuery(lo, hi dates.Date) query.Query {
	inclusive := true
	q := bleve.NewTermRangeInclusiveQuery(
		lo.YYYYMMDD(), hi.YYYYMMDD(), &inclusive, &inclusive,
	)
	q.SetField("date")
	return q
}

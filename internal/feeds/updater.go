package feeds

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/guanyuming-he/newscrawl/internal/clock/system"
	"github.com/guanyuming-he/newscrawl/internal/dates"
	"github.com/guanyuming-he/newscrawl/internal/fetcher"
	"github.com/guanyuming-he/newscrawl/internal/index"
	"github.com/guanyuming-he/newscrawl/internal/policy"
	"github.com/guanyuming-he/newscrawl/internal/urlx"
	"github.com/guanyuming-he/newscrawl/internal/webpage"
)

// MinMaxDocs is the smallest capacity bound the updater accepts.
// Shrinking below it would gut the index on a typo.
const MinMaxDocs = 10000

// ErrMaxDocsTooSmall is returned when the requested bound is under
// MinMaxDocs.
var ErrMaxDocsTooSmall = errors.New("feeds: max docs below the safety floor")

// Fetcher retrieves a feed URL's body.
type Fetcher interface {
	Transfer(u urlx.URL, wanted []string) fetcher.Result
}

// Index is the slice of the store the updater needs.
type Index interface {
	Add(page webpage.Webpage) error
	Contains(u urlx.URL) (bool, error)
	Shrink(maxDocs uint64, order index.ShrinkPolicy) error
	Commit() error
}

// Options configure an Updater.
type Options struct {
	Index   Index
	Fetcher Fetcher
	// Rules filter feed items the way the crawler filters URLs; nil
	// accepts every item.
	Rules  *policy.Table
	Clock  dates.Clock
	Logger *zap.Logger
}

// Updater ingests configured feeds and bounds the index size.
type Updater struct {
	idx    Index
	fetch  Fetcher
	rules  *policy.Table
	clock  dates.Clock
	logger *zap.Logger
}

// New builds an Updater.
func New(opts Options) (*Updater, error) {
	if opts.Index == nil || opts.Fetcher == nil {
		return nil, errors.New("feeds: index and fetcher are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = system.New()
	}
	return &Updater{
		idx:    opts.Index,
		fetch:  opts.Fetcher,
		rules:  opts.Rules,
		clock:  opts.Clock,
		logger: opts.Logger,
	}, nil
}

// Run fetches every feed, adds up to numToAdd new items, then
// shrinks the index to maxDocs evicting oldest first. maxDocs under
// MinMaxDocs is refused.
func (u *Updater) Run(feedURLs []string, numToAdd int, maxDocs uint64) (int, error) {
	if maxDocs < MinMaxDocs {
		return 0, fmt.Errorf("%w: %d < %d", ErrMaxDocsTooSmall, maxDocs, MinMaxDocs)
	}

	added := 0
	for _, raw := range feedURLs {
		if added >= numToAdd {
			break
		}
		n, err := u.ingestFeed(raw, numToAdd-added)
		if err != nil {
			// A broken feed must not block the others.
			u.logger.Warn("feed skipped", zap.String("feed", raw), zap.Error(err))
			continue
		}
		added += n
	}

	if err := u.idx.Commit(); err != nil {
		return added, err
	}
	if err := u.idx.Shrink(maxDocs, index.OldestFirst); err != nil {
		return added, err
	}
	u.logger.Info("update finished", zap.Int("added", added))
	return added, nil
}

// ingestFeed adds up to budget new items from one feed.
func (u *Updater) ingestFeed(raw string, budget int) (int, error) {
	feedURL, err := urlx.Parse(raw)
	if err != nil {
		return 0, err
	}

	result := u.fetch.Transfer(feedURL, nil)
	if len(result.Body) == 0 {
		return 0, fmt.Errorf("feeds: empty response from %s", raw)
	}

	pages, err := ParseFeed(feedURL, result.Body, u.clock)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, page := range pages {
		if added >= budget {
			break
		}
		if page.IsEmpty() {
			continue
		}
		if u.rules != nil && !u.rules.Decide(page.URL).Index {
			continue
		}
		exists, err := u.idx.Contains(page.URL)
		if err != nil {
			return added, err
		}
		if exists {
			continue
		}
		if err := u.idx.Add(page); err != nil {
			return added, err
		}
		added++
		u.logger.Debug("feed item added", zap.String("url", page.URL.String()))
	}
	return added, nil
}

// Package crawler implements the bounded breadth-first crawl engine:
// a FIFO frontier, per-host index/recurse filters, dedup against the
// index, and crash-safe teardown that persists both the frontier and
// the index.
package crawler

import (
	"errors"
	"math"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guanyuming-he/newscrawl/internal/clock/system"
	"github.com/guanyuming-he/newscrawl/internal/dates"
	"github.com/guanyuming-he/newscrawl/internal/htmlx"
	"github.com/guanyuming-he/newscrawl/internal/policy"
	"github.com/guanyuming-he/newscrawl/internal/urlx"
	"github.com/guanyuming-he/newscrawl/internal/webpage"
)

// wantedHeaders lists the response headers the crawl needs from each
// fetch. Only the Date header feeds the date extractor.
var wantedHeaders = []string{"date"}

// Options configure a Crawler. Index, Fetcher and Rules are required.
type Options struct {
	Index   Index
	Fetcher Fetcher
	Rules   *policy.Table
	// PageIndexFilter and PageRecurseFilter default to rejecting
	// empty pages.
	PageIndexFilter   policy.PageFilter
	PageRecurseFilter policy.PageFilter
	Clock             dates.Clock
	Logger            *zap.Logger
	// QueuePath is where the frontier is persisted on teardown.
	QueuePath string
	// IndexLimit bounds how many documents one run may add;
	// 0 means unlimited.
	IndexLimit uint64
}

// Crawler runs the serial crawl loop. It owns its fetcher, parser
// and frontier; nothing is shared across goroutines except the
// interrupt flag.
type Crawler struct {
	frontier *Frontier
	index    Index
	fetch    Fetcher
	parser   *htmlx.Parser
	rules    *policy.Table

	pageIndex   policy.PageFilter
	pageRecurse policy.PageFilter
	clock       dates.Clock
	logger      *zap.Logger

	queuePath  string
	indexLimit uint64
	numIndexed uint64

	interrupted atomic.Bool
	closed      bool
}

// New builds a Crawler with an empty frontier.
func New(opts Options) (*Crawler, error) {
	if opts.Index == nil || opts.Fetcher == nil || opts.Rules == nil {
		return nil, errors.New("crawler: index, fetcher and rules are required")
	}
	if opts.PageIndexFilter == nil {
		opts.PageIndexFilter = policy.NonEmptyPage
	}
	if opts.PageRecurseFilter == nil {
		opts.PageRecurseFilter = policy.NonEmptyPage
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = system.New()
	}
	limit := opts.IndexLimit
	if limit == 0 {
		limit = math.MaxUint64
	}

	return &Crawler{
		frontier:    NewFrontier(),
		index:       opts.Index,
		fetch:       opts.Fetcher,
		parser:      htmlx.NewParser(),
		rules:       opts.Rules,
		pageIndex:   opts.PageIndexFilter,
		pageRecurse: opts.PageRecurseFilter,
		clock:       opts.Clock,
		logger: opts.Logger.With(
			zap.String("crawl_id", uuid.NewString()),
		),
		queuePath:  opts.QueuePath,
		indexLimit: limit,
	}, nil
}

// Seed fills the frontier from a list of start URLs.
func (c *Crawler) Seed(urls []urlx.URL) {
	for _, u := range urls {
		c.frontier.Push(u)
	}
}

// Resume replaces the frontier with the queue persisted at the
// configured path. Load failures fail the startup.
func (c *Crawler) Resume() error {
	frontier, err := LoadFrontier(c.queuePath)
	if err != nil {
		return err
	}
	c.frontier = frontier
	c.logger.Info("frontier resumed",
		zap.String("path", c.queuePath),
		zap.Int("urls", frontier.Len()),
	)
	return nil
}

// Interrupt asks the loop to stop. The current iteration completes;
// safe to call from a signal handler goroutine.
func (c *Crawler) Interrupt() {
	c.interrupted.Store(true)
}

// NumIndexed returns how many documents this run has added.
func (c *Crawler) NumIndexed() uint64 { return c.numIndexed }

// FrontierLen returns the number of URLs still queued.
func (c *Crawler) FrontierLen() int { return c.frontier.Len() }

// Run executes the crawl loop until the frontier drains, the index
// limit is reached, or Interrupt is called. Per-URL failures are
// swallowed; index errors propagate.
func (c *Crawler) Run() error {
	// The recursed set lives for one crawl only. Persisting it was
	// considered and rejected: pages change between runs and may
	// surface new outbound links.
	visitedRecurse := make(map[string]struct{})

	for !c.interrupted.Load() && c.numIndexed < c.indexLimit {
		u, ok := c.frontier.Pop()
		if !ok {
			break
		}
		if err := c.step(u, visitedRecurse); err != nil {
			return err
		}
	}
	return nil
}

// step processes one frontier URL.
func (c *Crawler) step(u urlx.URL, visitedRecurse map[string]struct{}) error {
	page := c.fetchAndParse(u)
	decision := c.rules.Decide(u)

	if decision.Index && c.pageIndex(page) {
		indexed, err := c.index.Contains(u)
		if err != nil {
			return err
		}
		if !indexed {
			if err := c.index.Add(page); err != nil {
				return err
			}
			c.numIndexed++
			pagesIndexed.Inc()
			c.logger.Info("indexed",
				zap.Uint64("n", c.numIndexed),
				zap.String("url", u.String()),
			)
		}
	}

	essential := u.Essential()
	if _, seen := visitedRecurse[essential]; seen {
		return nil
	}
	if !decision.Recurse || !c.pageRecurse(page) {
		return nil
	}
	visitedRecurse[essential] = struct{}{}

	for _, v := range page.Outbound {
		indexed, err := c.index.Contains(v)
		if err != nil {
			return err
		}
		if indexed {
			continue
		}
		d := c.rules.Decide(v)
		if !d.Index && !d.Recurse {
			continue
		}
		c.frontier.Push(v)
		linksEnqueued.Inc()
	}
	return nil
}

// fetchAndParse never fails: a transport or parse failure yields an
// empty page that both page filters reject.
func (c *Crawler) fetchAndParse(u urlx.URL) webpage.Webpage {
	result := c.fetch.Transfer(u, wantedHeaders)
	pagesFetched.Inc()
	if len(result.Body) == 0 {
		fetchFailures.Inc()
		c.logger.Debug("empty fetch", zap.String("url", u.String()))
	}

	doc, err := c.parser.Parse(result.Body)
	if err != nil {
		c.logger.Warn("parse failed",
			zap.String("url", u.String()), zap.Error(err))
		doc = nil
	}
	return webpage.FromHTML(u, doc, result.Body, result.Headers, c.clock)
}

// Close persists the frontier and closes the index, committing any
// buffered writes. It runs on every teardown path, including
// signal-induced early termination.
func (c *Crawler) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var saveErr error
	if c.queuePath != "" {
		saveErr = c.frontier.Save(c.queuePath)
		if saveErr != nil {
			c.logger.Error("frontier save failed", zap.Error(saveErr))
		}
	}
	if err := c.index.Close(); err != nil {
		return err
	}
	return saveErr
}

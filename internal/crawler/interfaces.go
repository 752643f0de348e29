package crawler

import (
	"github.com/guanyuming-he/newscrawl/internal/fetcher"
	"github.com/guanyuming-he/newscrawl/internal/urlx"
	"github.com/guanyuming-he/newscrawl/internal/webpage"
)

// Fetcher retrieves a URL's body plus selected response headers.
type Fetcher interface {
	Transfer(u urlx.URL, wanted []string) fetcher.Result
}

// Index is the slice of the document store the crawl loop needs.
type Index interface {
	Add(page webpage.Webpage) error
	Contains(u urlx.URL) (bool, error)
	Commit() error
	Close() error
}

// Package webpage bundles everything the index and the crawl loop
// need to know about one fetched page.
package webpage

import (
	"github.com/guanyuming-he/newscrawl/internal/dates"
	"github.com/guanyuming-he/newscrawl/internal/htmlx"
	"github.com/guanyuming-he/newscrawl/internal/urlx"
)

// Webpage is an assembled page: metadata plus, when the HTML was
// loaded, the page text and the resolved outbound links.
type Webpage struct {
	URL   urlx.URL
	Title string
	Date  dates.Date
	Text  string
	// Outbound holds only successfully resolved absolute URLs, in
	// document order. Duplicates may appear; the crawler de-dups.
	Outbound []urlx.URL
}

// New builds a metadata-only page, as produced by feed ingestion.
func New(u urlx.URL, title string, date dates.Date) Webpage {
	return Webpage{URL: u, Title: title, Date: date}
}

// FromHTML assembles a page from a parsed document. doc may be nil
// (failed fetch), in which case the page carries only its URL and the
// fallback date.
func FromHTML(u urlx.URL, doc *htmlx.Doc, body []byte, headers map[string]string, clock dates.Clock) Webpage {
	page := Webpage{
		URL:   u,
		Title: doc.Title(),
		Date:  dates.Extract(headers, body, u.String(), clock),
	}
	if doc == nil {
		return page
	}
	page.Text = doc.Text

	hrefs := doc.Hrefs()
	if len(hrefs) > 0 {
		page.Outbound = make([]urlx.URL, 0, len(hrefs))
		for _, href := range hrefs {
			resolved, err := urlx.Resolve(u, href)
			if err != nil {
				continue
			}
			page.Outbound = append(page.Outbound, resolved)
		}
	}
	return page
}

// IsEmpty reports whether the page has neither a title nor text.
// Empty pages are never stored.
func (w Webpage) IsEmpty() bool {
	return w.Title == "" && w.Text == ""
}

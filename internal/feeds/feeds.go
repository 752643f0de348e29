// Package feeds ingests RSS 2.0 and Atom feeds into the index and
// enforces the index capacity bound. Feed items become metadata-only
// pages: URL, title and publication date, no body text.
package feeds

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/guanyuming-he/newscrawl/internal/dates"
	"github.com/guanyuming-he/newscrawl/internal/urlx"
	"github.com/guanyuming-he/newscrawl/internal/webpage"
)

// ParseFeed extracts the linked articles from one feed document.
// RSS 2.0 items and Atom entries are both recognized; items without
// a usable link are dropped. Dates come from pubDate/updated through
// the free-text parser, falling back to today.
func ParseFeed(feedURL urlx.URL, body []byte, clock dates.Clock) ([]webpage.Webpage, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL.String(), err)
	}

	var pages []webpage.Webpage

	for _, item := range xmlquery.Find(doc, "//rss/channel/item") {
		if page, ok := pageFromRSSItem(feedURL, item, clock); ok {
			pages = append(pages, page)
		}
	}
	for _, entry := range xmlquery.Find(doc,
		"//*[local-name()='feed']/*[local-name()='entry']") {
		if page, ok := pageFromAtomEntry(feedURL, entry, clock); ok {
			pages = append(pages, page)
		}
	}
	return pages, nil
}

// pageFromRSSItem reads an RSS 2.0 <item>: link and pubDate are
// element text.
func pageFromRSSItem(feedURL urlx.URL, item *xmlquery.Node, clock dates.Clock) (webpage.Webpage, bool) {
	link := elementText(item, "link")
	if link == "" {
		return webpage.Webpage{}, false
	}
	u, err := resolveLink(feedURL, link)
	if err != nil {
		return webpage.Webpage{}, false
	}

	date, ok := dates.ParseFree(elementText(item, "pubDate"))
	if !ok {
		date = dates.Today(clock)
	}
	return webpage.New(u, elementText(item, "title"), date), true
}

// pageFromAtomEntry reads an Atom <entry>: the link is an href
// attribute and the date lives in <updated>.
func pageFromAtomEntry(feedURL urlx.URL, entry *xmlquery.Node, clock dates.Clock) (webpage.Webpage, bool) {
	var link string
	if el := entry.SelectElement("link"); el != nil {
		link = el.SelectAttr("href")
	}
	if link == "" {
		return webpage.Webpage{}, false
	}
	u, err := resolveLink(feedURL, link)
	if err != nil {
		return webpage.Webpage{}, false
	}

	date, ok := dates.ParseFree(elementText(entry, "updated"))
	if !ok {
		date = dates.Today(clock)
	}
	return webpage.New(u, elementText(entry, "title"), date), true
}

// resolveLink handles absolute and the discouraged-but-possible
// relative feed links.
func resolveLink(feedURL urlx.URL, link string) (urlx.URL, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return urlx.URL{}, urlx.ErrInvalidURL
	}
	return urlx.Resolve(feedURL, link)
}

func elementText(node *xmlquery.Node, name string) string {
	el := node.SelectElement(name)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.InnerText())
}

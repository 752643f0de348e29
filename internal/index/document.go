package index

import (
	"strings"

	"github.com/guanyuming-he/newscrawl/internal/dates"
	"github.com/guanyuming-he/newscrawl/internal/hash/sha256"
	"github.com/guanyuming-he/newscrawl/internal/urlx"
)

// idPrefix marks the unique identity term, following the engine
// convention for unique-ID prefixes.
const idPrefix = "Q"

// DocID derives the stable document identity for a URL:
// "Q" plus the SHA-256 hex digest of the essential form.
func DocID(u urlx.URL) string {
	return idPrefix + sha256.SumString(u.Essential())
}

// Document is the indexed view of one webpage.
type Document struct {
	// ID is the hashid under which the document is stored.
	ID string
	// URL is the full URL (query and fragment already stripped).
	URL string
	// Title is the page title as indexed.
	Title string
	// Body is the page text. Stored so that updates can re-index
	// the document in full.
	Body string
	// Date is the value held in the document's date slot.
	Date dates.Date
	// Keywords is the stemmed sample stored for display.
	Keywords []string
}

// Data renders the display blob: full URL and title, tab-separated.
// Consumers must treat only the first tab as the separator.
func (d Document) Data() string {
	return d.URL + "\t" + d.Title
}

// SplitData decomposes a data blob into URL and title.
func SplitData(data string) (url, title string) {
	if idx := strings.IndexByte(data, '\t'); idx >= 0 {
		return data[:idx], data[idx+1:]
	}
	return data, ""
}

// setField fills one stored engine field back into the document.
func (d *Document) setField(name, value string) {
	switch name {
	case "url":
		d.URL = value
	case "title":
		d.Title = value
	case "body":
		d.Body = value
	case "date":
		if parsed, ok := dates.ParseYYYYMMDD(value); ok {
			d.Date = parsed
		}
	case "keywords":
		d.Keywords = strings.Fields(value)
	}
}

// storedDoc is the shape handed to the engine. Field names match the
// index mapping.
type storedDoc struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Date     string `json:"date"`
	Keywords string `json:"keywords"`
}

func (d *Document) toStored() storedDoc {
	return storedDoc{
		URL:      d.URL,
		Title:    d.Title,
		Body:     d.Body,
		Date:     d.Date.YYYYMMDD(),
		Keywords: strings.Join(d.Keywords, " "),
	}
}

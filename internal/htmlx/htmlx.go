// Package htmlx parses HTML bytes into a queryable document plus a
// streamed concatenation of the page's text nodes.
package htmlx

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Doc is a parsed HTML page. Text holds the raw character data of
// every text token in document order, case preserved; the index
// lowercases at term time.
type Doc struct {
	doc  *goquery.Document
	Text string
}

// Parser converts HTML bytes into Docs. A Parser is reusable across
// documents; it is not safe for concurrent use.
type Parser struct {
	text strings.Builder
}

// NewParser returns a ready Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse builds a Doc from raw bytes. Nil or empty input yields a nil
// Doc. Malformed HTML is accepted; the result is best-effort.
func (p *Parser) Parse(raw []byte) (*Doc, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	p.text.Reset()
	p.text.Grow(32 * 1024)
	tkz := html.NewTokenizer(bytes.NewReader(raw))
	for {
		tt := tkz.Next()
		if tt == html.ErrorToken {
			// Includes io.EOF; the tokenizer never fails on
			// malformed markup, only on read errors.
			break
		}
		if tt == html.TextToken {
			p.text.Write(tkz.Raw())
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	return &Doc{doc: doc, Text: p.text.String()}, nil
}

// Title returns the content of the <title> element, or "".
func (d *Doc) Title() string {
	if d == nil {
		return ""
	}
	return d.doc.Find("title").First().Text()
}

// Hrefs returns the href attribute of every <a> element in document
// order, malformed values included. Filtering happens downstream.
func (d *Doc) Hrefs() []string {
	if d == nil {
		return nil
	}
	var hrefs []string
	d.doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		if href, found := sel.Attr("href"); found {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

// Package policy decides which URLs the crawler indexes and which it
// recurses into. Rules are data keyed by host: a URL whose host has
// no rule is neither indexed nor recursed.
package policy

import (
	"regexp"
	"strings"

	"github.com/guanyuming-he/newscrawl/internal/urlx"
	"github.com/guanyuming-he/newscrawl/internal/webpage"
)

// Decision is the pair of verdicts for one URL. By convention the
// recurse condition is a superset of the index condition: a page we
// index, we also explore.
type Decision struct {
	Recurse bool
	Index   bool
}

// PathRule evaluates a URL path for one host.
type PathRule func(path string) Decision

// Table maps hosts to their path rules.
type Table struct {
	rules map[string]PathRule
}

// NewTable returns an empty rules table.
func NewTable() *Table {
	return &Table{rules: make(map[string]PathRule)}
}

// Set installs the rule for a host, replacing any existing one.
func (t *Table) Set(host string, rule PathRule) {
	t.rules[strings.ToLower(host)] = rule
}

// Hosts returns the number of configured hosts.
func (t *Table) Hosts() int { return len(t.rules) }

// Decide evaluates a URL against the table.
func (t *Table) Decide(u urlx.URL) Decision {
	rule, found := t.rules[strings.ToLower(u.Host())]
	if !found {
		return Decision{}
	}
	return rule(u.Path())
}

// dashWordsRe matches at least three words joined by dashes, the
// shape of news-article slugs.
var dashWordsRe = regexp.MustCompile(`[A-Za-z](-[A-Za-z]+){2,}`)

// HasDashSeparatedWords reports whether the path contains a
// word-word-word slug.
func HasDashSeparatedWords(path string) bool {
	return dashWordsRe.MatchString(path)
}

// dateInPathRe matches a yyyy-mm-dd or dd-mm-yyyy style segment,
// with - or / separators, anchored to segment boundaries.
var dateInPathRe = regexp.MustCompile(
	`(^|/)\d{4}[-/]\d{1,2}[-/]\d{1,2}($|/)|(^|/)\d{1,2}[-/]\d{1,2}[-/]\d{4}($|/)`)

// HasDateInPath reports whether the path embeds a date.
func HasDateInPath(path string) bool {
	return dateInPathRe.MatchString(path)
}

// PageFilter evaluates a fetched, parsed page.
type PageFilter func(page webpage.Webpage) bool

// NonEmptyPage is the default page filter for both decisions: a
// failed fetch produces an empty page, which must be rejected.
func NonEmptyPage(page webpage.Webpage) bool {
	return !page.IsEmpty()
}

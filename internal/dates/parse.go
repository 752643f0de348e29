package dates

import (
	"regexp"
	"strings"
	"time"
)

// freeTextLayouts are tried in order; the first that matches wins.
// Month and weekday names appear in both abbreviated and full forms
// because Go layouts match exactly one of the two.
var freeTextLayouts = []string{
	"2006-01-02", // 2025-02-01
	"01/02/2006", // 01/02/2025 (American)
	"Jan 2 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2 Jan, 2006",
	"2 January, 2006",
	"Mon 2 Jan 2006",
	"Monday 2 January 2006",
	"Mon, 2 Jan 2006",
	"Monday, 2 January 2006",
	"Mon Jan 2 2006",
	"Monday January 2 2006",
	"Mon, Jan 2 2006",
	"Monday, January 2 2006",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
}

// ordinalRe matches day ordinals such as 1st, 22nd, 23rd, 11th.
var ordinalRe = regexp.MustCompile(`(\d)(st|nd|rd|th)`)

// isoTimestampRe captures the date part of an ISO-8601 timestamp,
// the shape Atom feeds use for <updated>.
var isoTimestampRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[Tt ]`)

// ParseFree parses a free-text English date: whitespace is trimmed
// and collapsed, ordinal suffixes are stripped, then each known
// layout is tried in order. Trailing text after a matching layout
// (time of day, timezone) is tolerated, the way feed dates carry a
// full timestamp after the calendar part.
func ParseFree(s string) (Date, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return Date{}, false
	}
	s = ordinalRe.ReplaceAllString(s, "$1")
	if m := isoTimestampRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}

	fields := strings.Fields(s)
	for _, layout := range freeTextLayouts {
		width := len(strings.Fields(layout))
		if width > len(fields) {
			continue
		}
		candidate := strings.Join(fields[:width], " ")
		if t, err := time.Parse(layout, candidate); err == nil {
			return FromTime(t), true
		}
	}
	return Date{}, false
}

// httpDateLayouts cover the RFC 7231 preferred form with and without
// the numeric timezone variant.
var httpDateLayouts = []string{
	time.RFC1123,  // Mon, 02 Jan 2006 15:04:05 MST
	time.RFC1123Z, // Mon, 02 Jan 2006 15:04:05 -0700
}

// ParseHTTPDate parses an HTTP Date header value ("Wkd, DD Mon YYYY
// hh:mm:ss GMT"). Only the calendar date is kept.
func ParseHTTPDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range httpDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), true
		}
	}

	// Tolerate a header that carries only the date part.
	fields := strings.Fields(s)
	if len(fields) >= 4 {
		prefix := strings.Join(fields[:4], " ")
		if t, err := time.Parse("Mon, 2 Jan 2006", prefix); err == nil {
			return FromTime(t), true
		}
	}
	return Date{}, false
}

package searcher

import (
	"strings"
	"time"

	"github.com/guanyuming-he/newscrawl/internal/dates"
)

// baseYear anchors two-digit years. With 1860 as the base, 25 means
// 1925 and 99 means 1899, so short dates never collide with modern
// documents.
const baseYear = 1860

// queryDateLayouts are tried in order; the American MM/DD/YYYY
// reading is preferred.
var queryDateLayouts = []string{
	"01/02/2006",
	"2006-01-02",
	"20060102",
	"01/02/06",
}

// parseDateRange recognizes range tokens of the form A..B where both
// sides parse as dates. A and B may use any recognized layout.
func parseDateRange(token string) (lo, hi dates.Date, ok bool) {
	sep := strings.Index(token, "..")
	if sep <= 0 || sep+2 >= len(token) {
		return dates.Date{}, dates.Date{}, false
	}
	lo, ok = parseQueryDate(token[:sep])
	if !ok {
		return dates.Date{}, dates.Date{}, false
	}
	hi, ok = parseQueryDate(token[sep+2:])
	if !ok {
		return dates.Date{}, dates.Date{}, false
	}
	return lo, hi, true
}

// parseQueryDate parses one side of a range.
func parseQueryDate(s string) (dates.Date, bool) {
	for _, layout := range queryDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		d := dates.FromTime(t)
		if layout == "01/02/06" {
			// Two-digit-year layout: rebase onto the epoch.
			d.Year = rebaseYear(d.Year % 100)
		}
		return d, true
	}
	return dates.Date{}, false
}

// rebaseYear maps a two-digit year into [baseYear, baseYear+99].
func rebaseYear(yy int) int {
	century := baseYear - baseYear%100
	year := century + yy
	if year < baseYear {
		year += 100
	}
	return year
}

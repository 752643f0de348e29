package dates

import (
	"bytes"

	"github.com/markusmobius/go-htmldate"
)

// FromHTML asks the htmldate heuristics for the publication date of
// an HTML document. The call is total: any internal failure,
// including a panic in the library, yields (zero, false).
func FromHTML(body []byte, pageURL string) (d Date, ok bool) {
	if len(body) == 0 {
		return Date{}, false
	}
	defer func() {
		if recover() != nil {
			d, ok = Date{}, false
		}
	}()

	res, err := htmldate.FromReader(bytes.NewReader(body), htmldate.Options{
		URL:             pageURL,
		UseOriginalDate: true,
	})
	if err != nil || res.DateTime.IsZero() {
		return Date{}, false
	}
	return FromTime(res.DateTime), true
}

// Extract derives a page's publication date: the HTTP Date header
// first, then the HTML heuristics, then the clock's today.
func Extract(headers map[string]string, body []byte, pageURL string, clock Clock) Date {
	if raw, found := headers["date"]; found {
		if d, ok := ParseHTTPDate(raw); ok {
			return d
		}
	}
	if d, ok := FromHTML(body, pageURL); ok {
		return d
	}
	return Today(clock)
}

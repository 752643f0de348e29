// Package urlx implements the URL type used to key documents across
// the crawler and the index. Query strings and fragments are dropped
// at construction and never stored.
package urlx

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// ErrInvalidURL is returned when a string cannot be parsed into an
// absolute URL with a scheme and a host.
var ErrInvalidURL = errors.New("invalid url")

// ErrBaseNotAbsolute is returned by Resolve when the base URL is not
// absolute.
var ErrBaseNotAbsolute = errors.New("base url is not absolute")

// URL is an absolute URL reduced to scheme, userinfo, host, port and
// path. Values are immutable after construction and cheap to copy.
type URL struct {
	scheme      string
	user        string
	password    string
	hasPassword bool
	host        string
	port        string
	path        string
}

// Parse builds a URL from a string. The string must carry a scheme
// and a host; query and fragment parts are discarded.
func Parse(raw string) (URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return URL{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return URL{}, fmt.Errorf("%w: %q has no scheme or host", ErrInvalidURL, raw)
	}

	u := URL{
		scheme: parsed.Scheme,
		host:   parsed.Hostname(),
		port:   parsed.Port(),
		path:   parsed.EscapedPath(),
	}
	if parsed.User != nil {
		u.user = parsed.User.Username()
		u.password, u.hasPassword = parsed.User.Password()
	}
	return u, nil
}

// FromParts builds a URL from a host and a path, with the scheme
// defaulted to https.
func FromParts(host, path string) (URL, error) {
	if host == "" {
		return URL{}, fmt.Errorf("%w: empty host", ErrInvalidURL)
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return URL{scheme: "https", host: host, path: path}, nil
}

// IsAbsolute reports whether the URL carries a scheme. Zero values
// are not absolute.
func (u URL) IsAbsolute() bool { return u.scheme != "" }

// Scheme returns the URL scheme.
func (u URL) Scheme() string { return u.scheme }

// Host returns the host without the port.
func (u URL) Host() string { return u.host }

// Port returns the port or "" if absent.
func (u URL) Port() string { return u.port }

// Path returns the path component, possibly empty.
func (u URL) Path() string { return u.path }

// Authority returns [user[:password]@]host[:port].
func (u URL) Authority() string {
	var b strings.Builder
	b.Grow(32)
	if u.user != "" {
		b.WriteString(u.user)
		if u.hasPassword {
			b.WriteByte(':')
			b.WriteString(u.password)
		}
		b.WriteByte('@')
	}
	b.WriteString(u.host)
	if u.port != "" {
		b.WriteByte(':')
		b.WriteString(u.port)
	}
	return b.String()
}

// Essential returns authority+path with a single trailing slash
// trimmed. This is the stable identity used wherever a URL is
// hashed, de-duplicated or compared.
func (u URL) Essential() string {
	essential := u.Authority() + u.path
	return strings.TrimSuffix(essential, "/")
}

// String renders the full URL without query or fragment.
func (u URL) String() string {
	if !u.IsAbsolute() {
		return u.Authority() + u.path
	}
	return u.scheme + "://" + u.Authority() + u.path
}

// stripWhitespace removes every whitespace rune. Hrefs scraped from
// real pages occasionally wrap across lines.
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

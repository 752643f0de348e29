package urlx

import (
	"fmt"
	"net/url"
	"strings"
)

// Resolve turns a reference found inside the document at base into an
// absolute URL, following the relevant subset of RFC 3986 section
// 5.2. An absolute reference is returned as-is (minus query and
// fragment). Whitespace inside the reference is stripped before
// parsing.
func Resolve(base URL, ref string) (URL, error) {
	ref = stripWhitespace(ref)

	if abs, err := Parse(ref); err == nil {
		return abs, nil
	}

	if !base.IsAbsolute() {
		return URL{}, ErrBaseNotAbsolute
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return URL{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "" || parsed.Opaque != "" {
		// Carries a scheme (javascript:, mailto:, tel:) but did not
		// parse as an absolute document URL above.
		return URL{}, fmt.Errorf("%w: %q", ErrInvalidURL, ref)
	}

	out := URL{scheme: base.scheme}
	refPath := parsed.EscapedPath()
	if parsed.Host != "" {
		// Network-path reference: authority comes from the reference.
		out.host = parsed.Hostname()
		out.port = parsed.Port()
		if parsed.User != nil {
			out.user = parsed.User.Username()
			out.password, out.hasPassword = parsed.User.Password()
		}
		out.path = collapseDotSegments(refPath)
		return out, nil
	}

	out.user = base.user
	out.password = base.password
	out.hasPassword = base.hasPassword
	out.host = base.host
	out.port = base.port

	switch {
	case strings.HasPrefix(refPath, "/"):
		out.path = refPath
	case base.path == "":
		out.path = "/" + refPath
	default:
		// Drop base's last segment, keep everything up to and
		// including the final slash, then append the reference.
		merged := base.path
		if idx := strings.LastIndexByte(merged, '/'); idx >= 0 {
			merged = merged[:idx+1]
		}
		out.path = merged + refPath
	}
	out.path = collapseDotSegments(out.path)
	return out, nil
}

// collapseDotSegments removes "." and ".." segments per RFC 3986
// section 5.2.4.
func collapseDotSegments(p string) string {
	if p == "" {
		return p
	}
	rooted := strings.HasPrefix(p, "/")
	trailing := strings.HasSuffix(p, "/") ||
		strings.HasSuffix(p, "/.") || strings.HasSuffix(p, "/..")

	var kept []string
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(kept) > 0 {
				kept = kept[:len(kept)-1]
			}
		default:
			kept = append(kept, seg)
		}
	}

	out := strings.Join(kept, "/")
	if rooted {
		out = "/" + out
	}
	if trailing && !strings.HasSuffix(out, "/") {
		out += "/"
	}
	return out
}

// Package fetcher implements the blocking HTTP client used by the
// crawl loop, built on the Colly collector.
package fetcher

import (
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/guanyuming-he/newscrawl/internal/urlx"
)

// DefaultUserAgent is a realistic desktop browser string; some news
// sites refuse obviously robotic agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

const maxRedirects = 50

// bodyReserve pre-sizes the body buffer to the typical size of a
// text-heavy article page.
const bodyReserve = 64 * 1024

// Result is the outcome of a single transfer. A transport failure
// yields a zero Result, never an error: the crawl loop treats empty
// bodies as "skip this URL".
type Result struct {
	Body []byte
	// Headers holds the requested response headers, keyed by
	// lowercase name. Only names asked for in Transfer appear.
	Headers map[string]string
}

// Client performs blocking GETs over one reused collector so that
// same-host requests share keep-alive connections. A Client must not
// be used concurrently; the crawl is serial.
type Client struct {
	collector *colly.Collector
	logger    *zap.Logger

	// per-transfer scratch, valid only inside Transfer.
	body    []byte
	headers *http.Header
}

// New builds a Client with the fixed crawl transport settings.
func New(userAgent string, timeout time.Duration, logger *zap.Logger) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	collector := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.IgnoreRobotsTxt(),
	)
	collector.AllowURLRevisit = true
	collector.WithTransport(&http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	})
	if timeout > 0 {
		collector.SetRequestTimeout(timeout)
	}
	collector.SetRedirectHandler(func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	})

	client := &Client{collector: collector, logger: logger}

	collector.OnResponse(func(r *colly.Response) {
		buf := make([]byte, 0, bodyReserve)
		client.body = append(buf, r.Body...)
		client.headers = r.Headers
	})
	collector.OnError(func(_ *colly.Response, err error) {
		client.logger.Debug("fetch failed", zap.Error(err))
	})

	return client
}

// Transfer performs one GET and records the requested response
// headers (matched case-insensitively, stored under lowercase keys).
func (c *Client) Transfer(u urlx.URL, wanted []string) Result {
	c.body = nil
	c.headers = nil

	if err := c.collector.Visit(u.String()); err != nil {
		c.logger.Debug("visit rejected", zap.String("url", u.String()), zap.Error(err))
		return Result{}
	}

	result := Result{Body: c.body}
	if c.headers != nil && len(wanted) > 0 {
		result.Headers = make(map[string]string, len(wanted))
		for _, name := range wanted {
			if value := c.headers.Get(name); value != "" {
				result.Headers[strings.ToLower(name)] = value
			}
		}
	}
	c.body = nil
	c.headers = nil
	return result
}

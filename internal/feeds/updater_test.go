package feeds

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guanyuming-he/newscrawl/internal/fetcher"
	"github.com/guanyuming-he/newscrawl/internal/index"
	"github.com/guanyuming-he/newscrawl/internal/policy"
	"github.com/guanyuming-he/newscrawl/internal/urlx"
)

type fakeFetcher struct {
	bodies map[string]string
}

func (f *fakeFetcher) Transfer(u urlx.URL, _ []string) fetcher.Result {
	return fetcher.Result{Body: []byte(f.bodies[u.String()])}
}

func rssWithItems(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<item>
			<title>Item %d</title>
			<link>https://news.example.com/item-%d</link>
			<pubDate>Sat, 01 Feb 2025 08:30:00 GMT</pubDate>
			</item>`, i, i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func openIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, err := index.Open(filepath.Join(t.TempDir(), "db"), index.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestUpdaterRun(t *testing.T) {
	idx := openIndex(t)
	fetch := &fakeFetcher{bodies: map[string]string{
		"https://news.example.com/rss/business.xml": rssWithItems(5),
	}}

	u, err := New(Options{Index: idx, Fetcher: fetch, Clock: clock})
	require.NoError(t, err)

	added, err := u.Run(
		[]string{"https://news.example.com/rss/business.xml"}, 100, MinMaxDocs)
	require.NoError(t, err)
	assert.Equal(t, 5, added)

	n, err := idx.NumDocuments()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	// A second run adds nothing: every item is already indexed.
	added, err = u.Run(
		[]string{"https://news.example.com/rss/business.xml"}, 100, MinMaxDocs)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestUpdaterBudget(t *testing.T) {
	idx := openIndex(t)
	fetch := &fakeFetcher{bodies: map[string]string{
		"https://news.example.com/rss/business.xml": rssWithItems(5),
	}}

	u, err := New(Options{Index: idx, Fetcher: fetch, Clock: clock})
	require.NoError(t, err)

	added, err := u.Run(
		[]string{"https://news.example.com/rss/business.xml"}, 2, MinMaxDocs)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
}

func TestUpdaterRefusesSmallMaxDocs(t *testing.T) {
	idx := openIndex(t)
	u, err := New(Options{Index: idx, Fetcher: &fakeFetcher{}, Clock: clock})
	require.NoError(t, err)

	_, err = u.Run(nil, 10, MinMaxDocs-1)
	assert.ErrorIs(t, err, ErrMaxDocsTooSmall)
}

func TestUpdaterSkipsBrokenFeed(t *testing.T) {
	idx := openIndex(t)
	fetch := &fakeFetcher{bodies: map[string]string{
		"https://bad.example.com/feed.xml":          "",
		"https://news.example.com/rss/business.xml": rssWithItems(1),
	}}

	u, err := New(Options{Index: idx, Fetcher: fetch, Clock: clock})
	require.NoError(t, err)

	added, err := u.Run([]string{
		"https://bad.example.com/feed.xml",
		"https://news.example.com/rss/business.xml",
	}, 100, MinMaxDocs)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestUpdaterRespectsRules(t *testing.T) {
	idx := openIndex(t)
	fetch := &fakeFetcher{bodies: map[string]string{
		"https://news.example.com/rss/business.xml": rssWithItems(3),
	}}
	rules := policy.NewTable() // empty: no host accepted

	u, err := New(Options{Index: idx, Fetcher: fetch, Rules: rules, Clock: clock})
	require.NoError(t, err)

	added, err := u.Run(
		[]string{"https://news.example.com/rss/business.xml"}, 100, MinMaxDocs)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

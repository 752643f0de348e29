package index

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guanyuming-he/newscrawl/internal/dates"
	"github.com/guanyuming-he/newscrawl/internal/urlx"
	"github.com/guanyuming-he/newscrawl/internal/webpage"
)

func openTemp(t *testing.T) (*Index, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db")
	idx, err := Open(path, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx, path
}

func page(t *testing.T, raw, title, text string, d dates.Date) webpage.Webpage {
	t.Helper()
	u, err := urlx.Parse(raw)
	require.NoError(t, err)
	return webpage.Webpage{URL: u, Title: title, Date: d, Text: text}
}

func count(t *testing.T, idx *Index) uint64 {
	t.Helper()
	n, err := idx.NumDocuments()
	require.NoError(t, err)
	return n
}

var day = dates.Date{Year: 2025, Month: time.January, Day: 15}

func TestIndexLifecycle(t *testing.T) {
	idx, _ := openTemp(t)

	assert.Equal(t, uint64(0), count(t, idx))

	p1 := page(t, "https://news.example.com/a", "T1", "hello world", day)
	require.NoError(t, idx.Add(p1))
	assert.Equal(t, uint64(1), count(t, idx))

	doc, err := idx.GetByURL(p1.URL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.Data(), p1.URL.String()+"\tT1"),
		"data = %q", doc.Data())
	assert.Equal(t, day, doc.Date)

	// Re-adding the same URL replaces, never duplicates.
	p1b := page(t, "https://news.example.com/a", "T1", "different text entirely", day)
	require.NoError(t, idx.Add(p1b))
	assert.Equal(t, uint64(1), count(t, idx))

	doc, err = idx.GetByURL(p1.URL)
	require.NoError(t, err)
	assert.Equal(t, "different text entirely", doc.Body)

	// Empty pages are not stored.
	empty := page(t, "https://news.example.com/empty", "", "", day)
	require.NoError(t, idx.Add(empty))
	assert.Equal(t, uint64(1), count(t, idx))
}

func TestGetByURLMissing(t *testing.T) {
	idx, _ := openTemp(t)
	u, err := urlx.Parse("https://news.example.com/none")
	require.NoError(t, err)

	_, err = idx.GetByURL(u)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemove(t *testing.T) {
	idx, _ := openTemp(t)

	p := page(t, "https://news.example.com/gone", "Title", "body", day)
	require.NoError(t, idx.Add(p))
	require.NoError(t, idx.Commit())

	require.NoError(t, idx.Remove(p.URL))
	_, err := idx.GetByURL(p.URL)
	assert.ErrorIs(t, err, ErrNotFound)

	// Removing an absent URL silently succeeds.
	require.NoError(t, idx.Remove(p.URL))
}

func TestUncommittedWritesAreVisible(t *testing.T) {
	idx, _ := openTemp(t)

	p := page(t, "https://news.example.com/pending", "Pending", "text", day)
	require.NoError(t, idx.Add(p))

	// No commit yet: the writer still sees its own modification.
	doc, err := idx.GetByURL(p.URL)
	require.NoError(t, err)
	assert.Equal(t, "Pending", doc.Title)
	assert.Equal(t, uint64(1), count(t, idx))
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	idx, err := Open(path, Options{})
	require.NoError(t, err)

	p := page(t, "https://news.example.com/persist", "Kept", "alpha beta", day)
	require.NoError(t, idx.Add(p))
	require.NoError(t, idx.Close())

	reopened, err := Open(path, Options{})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	assert.Equal(t, uint64(1), count(t, reopened))
	doc, err := reopened.GetByURL(p.URL)
	require.NoError(t, err)
	assert.Equal(t, "Kept", doc.Title)
}

func TestShrinkOldestFirst(t *testing.T) {
	idx, _ := openTemp(t)

	urls := make([]urlx.URL, 16)
	for i := 0; i < 16; i++ {
		d := dates.Date{Year: 2025, Month: time.January, Day: i + 1}
		p := page(t, fmt.Sprintf("https://news.example.com/p%02d", i),
			fmt.Sprintf("Title %d", i), "some text", d)
		urls[i] = p.URL
		require.NoError(t, idx.Add(p))
	}
	require.NoError(t, idx.Shrink(8, OldestFirst))

	assert.Equal(t, uint64(8), count(t, idx))
	for i := 0; i < 8; i++ {
		_, err := idx.GetByURL(urls[i])
		assert.ErrorIs(t, err, ErrNotFound, "page %d should be evicted", i)
	}
	for i := 8; i < 16; i++ {
		_, err := idx.GetByURL(urls[i])
		assert.NoError(t, err, "page %d should survive", i)
	}
}

func TestShrinkNewestFirst(t *testing.T) {
	idx, _ := openTemp(t)

	var oldest, newest urlx.URL
	for i := 0; i < 4; i++ {
		d := dates.Date{Year: 2025, Month: time.March, Day: i + 1}
		p := page(t, fmt.Sprintf("https://news.example.com/n%d", i),
			fmt.Sprintf("N %d", i), "text", d)
		if i == 0 {
			oldest = p.URL
		}
		if i == 3 {
			newest = p.URL
		}
		require.NoError(t, idx.Add(p))
	}
	require.NoError(t, idx.Shrink(2, NewestFirst))

	assert.Equal(t, uint64(2), count(t, idx))
	_, err := idx.GetByURL(oldest)
	assert.NoError(t, err)
	_, err = idx.GetByURL(newest)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShrinkNoopWhenSmall(t *testing.T) {
	idx, _ := openTemp(t)
	p := page(t, "https://news.example.com/only", "Only", "text", day)
	require.NoError(t, idx.Add(p))

	require.NoError(t, idx.Shrink(100, OldestFirst))
	assert.Equal(t, uint64(1), count(t, idx))
}

func TestRemoveIf(t *testing.T) {
	idx, _ := openTemp(t)

	keep := page(t, "https://keep.example.com/a", "Keep", "text", day)
	drop1 := page(t, "https://drop.example.com/a", "Drop A", "text", day)
	drop2 := page(t, "https://drop.example.com/b", "Drop B", "text", day)
	for _, p := range []webpage.Webpage{keep, drop1, drop2} {
		require.NoError(t, idx.Add(p))
	}

	removed, err := idx.RemoveIf(func(doc *Document) bool {
		url, _ := SplitData(doc.Data())
		return strings.Contains(url, "drop.example.com")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, uint64(1), count(t, idx))

	_, err = idx.GetByURL(keep.URL)
	assert.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	idx, _ := openTemp(t)

	p := page(t, "https://news.example.com/upd", "Before", "text", day)
	require.NoError(t, idx.Add(p))

	err := idx.Update(p.URL, func(doc *Document) bool {
		doc.Title = "After"
		return true
	})
	require.NoError(t, err)

	doc, err := idx.GetByURL(p.URL)
	require.NoError(t, err)
	assert.Equal(t, "After", doc.Title)
	assert.Equal(t, uint64(1), count(t, idx))

	// An unmodified mutator leaves the document alone.
	err = idx.Update(p.URL, func(doc *Document) bool {
		doc.Title = "Ignored"
		return false
	})
	require.NoError(t, err)
	doc, err = idx.GetByURL(p.URL)
	require.NoError(t, err)
	assert.Equal(t, "After", doc.Title)
}

func TestUpdateAll(t *testing.T) {
	idx, _ := openTemp(t)

	for i := 0; i < 3; i++ {
		p := page(t, fmt.Sprintf("https://news.example.com/u%d", i),
			fmt.Sprintf("U %d", i), "text", day)
		require.NoError(t, idx.Add(p))
	}

	newDay := dates.Date{Year: 2025, Month: time.June, Day: 1}
	modified, err := idx.UpdateAll(func(doc *Document) bool {
		if doc.Title == "U 1" {
			doc.Date = newDay
			return true
		}
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, modified)
}

func TestDocID(t *testing.T) {
	a, err := urlx.Parse("https://news.example.com/x/")
	require.NoError(t, err)
	b, err := urlx.Parse("https://news.example.com/x")
	require.NoError(t, err)

	// Trailing slash does not change identity.
	assert.Equal(t, DocID(a), DocID(b))
	assert.True(t, strings.HasPrefix(DocID(a), "Q"))
	assert.Len(t, DocID(a), 1+64)
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	idx, err := Open(path, Options{})
	require.NoError(t, err)
	p := page(t, "https://news.example.com/ro", "RO", "text", day)
	require.NoError(t, idx.Add(p))
	require.NoError(t, idx.Close())

	ro, err := OpenReadOnly(path, Options{})
	require.NoError(t, err)
	defer func() { _ = ro.Close() }()

	assert.ErrorIs(t, ro.Add(p), ErrReadOnly)
	assert.ErrorIs(t, ro.Remove(p.URL), ErrReadOnly)
	doc, err := ro.GetByURL(p.URL)
	require.NoError(t, err)
	assert.Equal(t, "RO", doc.Title)
}

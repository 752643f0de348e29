// Package index implements the on-disk inverted full-text store.
// Documents are keyed by the SHA-256 hashid of their essential URL,
// carry a sortable YYYYMMDD date slot, and are searchable by title,
// body text and date range. A single writer owns the directory;
// concurrent read-only opens see the last committed snapshot.
package index

import (
	"errors"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	index_api "github.com/blevesearch/bleve_index_api"
	"go.uber.org/zap"

	"github.com/guanyuming-he/newscrawl/internal/urlx"
	"github.com/guanyuming-he/newscrawl/internal/webpage"
)

// ErrNotFound is returned when no document exists for a lookup key.
var ErrNotFound = errors.New("index: document not found")

// ErrReadOnly is returned by mutating operations on a read-only open.
var ErrReadOnly = errors.New("index: opened read-only")

// DefaultFlushThreshold is the number of buffered write operations
// after which the open batch is flushed automatically. It mirrors
// the engine-default flush threshold and can be raised through
// configuration for bulk indexing runs.
const DefaultFlushThreshold = 10000

// ShrinkPolicy selects which end of the date order Shrink evicts.
type ShrinkPolicy int

const (
	// OldestFirst evicts the documents with the smallest dates.
	OldestFirst ShrinkPolicy = iota
	// NewestFirst evicts the documents with the largest dates.
	NewestFirst
)

// Options tune an Index open.
type Options struct {
	// FlushThreshold overrides DefaultFlushThreshold when > 0.
	FlushThreshold int
	Logger         *zap.Logger
}

// Index is the writable full-text store. It is not safe for
// concurrent use; the crawl is serial and there is one writer per
// directory.
type Index struct {
	idx      bleve.Index
	logger   *zap.Logger
	readOnly bool

	// Buffered writes. The overlay maps make uncommitted documents
	// visible to lookups, the way an engine writer sees its own
	// pending modifications.
	batch          *bleve.Batch
	batchOps       int
	flushThreshold int
	pendingAdd     map[string]*Document
	pendingDel     map[string]struct{}
}

// Open creates the index directory if missing, otherwise opens the
// existing store read-write.
func Open(path string, opts Options) (*Index, error) {
	var (
		blv bleve.Index
		err error
	)
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		blv, err = bleve.New(path, buildMapping())
	} else {
		blv, err = bleve.Open(path)
		if err == bleve.ErrorIndexMetaMissing {
			// An existing but empty directory: initialize it.
			// Remove only succeeds when the directory is empty.
			if rmErr := os.Remove(path); rmErr == nil {
				blv, err = bleve.New(path, buildMapping())
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	return newIndex(blv, false, opts), nil
}

// OpenReadOnly opens an existing index for searching only. Reads see
// the last committed snapshot.
func OpenReadOnly(path string, opts Options) (*Index, error) {
	blv, err := bleve.OpenUsing(path, map[string]interface{}{
		"read_only": true,
	})
	if err != nil {
		return nil, fmt.Errorf("open index %s read-only: %w", path, err)
	}
	return newIndex(blv, true, opts), nil
}

func newIndex(blv bleve.Index, readOnly bool, opts Options) *Index {
	threshold := opts.FlushThreshold
	if threshold <= 0 {
		threshold = DefaultFlushThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		idx:            blv,
		logger:         logger,
		readOnly:       readOnly,
		batch:          blv.NewBatch(),
		flushThreshold: threshold,
		pendingAdd:     make(map[string]*Document),
		pendingDel:     make(map[string]struct{}),
	}
}

// buildMapping defines the document shape: English-analyzed title
// and body (stemmed at index time, the query side uses the same
// analyzer), a keyword date slot, and stored-only url/keywords.
func buildMapping() mapping.IndexMapping {
	title := bleve.NewTextFieldMapping()
	title.Analyzer = en.AnalyzerName
	title.Store = true

	body := bleve.NewTextFieldMapping()
	body.Analyzer = en.AnalyzerName
	body.Store = true

	date := bleve.NewTextFieldMapping()
	date.Analyzer = keyword.Name
	date.Store = true

	urlField := bleve.NewTextFieldMapping()
	urlField.Index = false
	urlField.Store = true

	keywords := bleve.NewTextFieldMapping()
	keywords.Index = false
	keywords.Store = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("title", title)
	doc.AddFieldMappingsAt("body", body)
	doc.AddFieldMappingsAt("date", date)
	doc.AddFieldMappingsAt("url", urlField)
	doc.AddFieldMappingsAt("keywords", keywords)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = en.AnalyzerName
	return m
}

// Bleve exposes the underlying engine index for the query side.
func (i *Index) Bleve() bleve.Index { return i.idx }

// NumDocuments returns the document count, including writes buffered
// in the open batch.
func (i *Index) NumDocuments() (uint64, error) {
	count, err := i.idx.DocCount()
	if err != nil {
		return 0, fmt.Errorf("doc count: %w", err)
	}
	for id := range i.pendingAdd {
		if !i.committedHas(id) {
			count++
		}
	}
	for id := range i.pendingDel {
		if i.committedHas(id) {
			count--
		}
	}
	return count, nil
}

func (i *Index) committedHas(id string) bool {
	doc, err := i.idx.Document(id)
	return err == nil && doc != nil
}

// Add upserts a webpage. Pages with neither title nor text are not
// stored. An existing document under the same hashid is replaced
// atomically.
func (i *Index) Add(page webpage.Webpage) error {
	if i.readOnly {
		return ErrReadOnly
	}
	if page.IsEmpty() {
		return nil
	}

	doc := &Document{
		ID:       DocID(page.URL),
		URL:      page.URL.String(),
		Title:    page.Title,
		Body:     page.Text,
		Date:     page.Date,
		Keywords: sampleKeywords(page.Title, page.Text),
	}
	return i.stage(doc)
}

// stage buffers one upsert, flushing when the batch fills up.
func (i *Index) stage(doc *Document) error {
	if err := i.batch.Index(doc.ID, doc.toStored()); err != nil {
		return fmt.Errorf("stage document: %w", err)
	}
	delete(i.pendingDel, doc.ID)
	i.pendingAdd[doc.ID] = doc
	i.batchOps++
	if i.batchOps >= i.flushThreshold {
		return i.Commit()
	}
	return nil
}

// Remove deletes the document stored for the URL. Removing an absent
// URL silently succeeds.
func (i *Index) Remove(u urlx.URL) error {
	return i.removeID(DocID(u))
}

func (i *Index) removeID(id string) error {
	if i.readOnly {
		return ErrReadOnly
	}
	i.batch.Delete(id)
	delete(i.pendingAdd, id)
	i.pendingDel[id] = struct{}{}
	i.batchOps++
	if i.batchOps >= i.flushThreshold {
		return i.Commit()
	}
	return nil
}

// GetByURL looks a document up by its URL's hashid.
func (i *Index) GetByURL(u urlx.URL) (*Document, error) {
	return i.GetByID(DocID(u))
}

// Contains reports whether a document exists for the URL.
func (i *Index) Contains(u urlx.URL) (bool, error) {
	_, err := i.GetByURL(u)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByID looks a document up by hashid.
func (i *Index) GetByID(id string) (*Document, error) {
	if _, deleted := i.pendingDel[id]; deleted {
		return nil, ErrNotFound
	}
	if doc, pending := i.pendingAdd[id]; pending {
		cp := *doc
		return &cp, nil
	}
	return i.committedDoc(id)
}

func (i *Index) committedDoc(id string) (*Document, error) {
	raw, err := i.idx.Document(id)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if raw == nil {
		return nil, ErrNotFound
	}
	doc := &Document{ID: id}
	raw.VisitFields(func(field index_api.Field) {
		doc.setField(field.Name(), string(field.Value()))
	})
	return doc, nil
}

// Commit flushes buffered writes to disk. It is also invoked on
// Close so teardown always persists.
func (i *Index) Commit() error {
	if i.readOnly || i.batchOps == 0 {
		return nil
	}
	if err := i.idx.Batch(i.batch); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	i.logger.Debug("index committed", zap.Int("ops", i.batchOps))
	i.batch.Reset()
	i.batchOps = 0
	i.pendingAdd = make(map[string]*Document)
	i.pendingDel = make(map[string]struct{})
	return nil
}

// Close commits pending writes and releases the store.
func (i *Index) Close() error {
	commitErr := i.Commit()
	closeErr := i.idx.Close()
	if commitErr != nil {
		return commitErr
	}
	return closeErr
}

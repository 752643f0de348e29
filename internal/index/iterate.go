package index

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"

	"github.com/guanyuming-he/newscrawl/internal/urlx"
)

// iterPageSize bounds how many hits one iteration page loads.
const iterPageSize = 1000

var storedFields = []string{"url", "title", "body", "date", "keywords"}

// forEach visits every committed document in stable ID order.
// Callers must not mutate the index during iteration; collect first,
// mutate after.
func (i *Index) forEach(visit func(doc *Document) error) error {
	from := 0
	for {
		req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
		req.Size = iterPageSize
		req.From = from
		req.Fields = storedFields
		req.SortBy([]string{"_id"})

		res, err := i.idx.Search(req)
		if err != nil {
			return fmt.Errorf("iterate: %w", err)
		}
		if len(res.Hits) == 0 {
			return nil
		}
		for _, hit := range res.Hits {
			if err := visit(docFromHit(hit)); err != nil {
				return err
			}
		}
		from += len(res.Hits)
	}
}

func docFromHit(hit *search.DocumentMatch) *Document {
	doc := &Document{ID: hit.ID}
	for name, value := range hit.Fields {
		if s, ok := value.(string); ok {
			doc.setField(name, s)
		}
	}
	return doc
}

// RemoveIf deletes every document the predicate accepts. The
// predicate runs over a full iteration first; deletions are applied
// only after the iteration finishes.
func (i *Index) RemoveIf(pred func(*Document) bool) (int, error) {
	if i.readOnly {
		return 0, ErrReadOnly
	}
	if err := i.Commit(); err != nil {
		return 0, err
	}

	var doomed []string
	err := i.forEach(func(doc *Document) error {
		if pred(doc) {
			doomed = append(doomed, doc.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, id := range doomed {
		if err := i.removeID(id); err != nil {
			return 0, err
		}
	}
	return len(doomed), i.Commit()
}

// Update loads the document for a URL, hands it to the mutator and
// replaces it only when the mutator reports a modification.
func (i *Index) Update(u urlx.URL, mutator func(*Document) bool) error {
	if i.readOnly {
		return ErrReadOnly
	}
	doc, err := i.GetByURL(u)
	if err != nil {
		return err
	}
	if !mutator(doc) {
		return nil
	}
	return i.stage(doc)
}

// UpdateAll applies the mutator to every document, replacing those it
// reports as modified.
func (i *Index) UpdateAll(mutator func(*Document) bool) (int, error) {
	if i.readOnly {
		return 0, ErrReadOnly
	}
	if err := i.Commit(); err != nil {
		return 0, err
	}

	var modified []*Document
	err := i.forEach(func(doc *Document) error {
		if mutator(doc) {
			modified = append(modified, doc)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, doc := range modified {
		if err := i.stage(doc); err != nil {
			return 0, err
		}
	}
	return len(modified), i.Commit()
}

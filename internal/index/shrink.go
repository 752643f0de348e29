package index

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"
)

// Shrink bounds the index to at most maxDocs documents. Documents
// are ranked by the date slot; OldestFirst evicts the smallest dates,
// NewestFirst the largest. A no-op when already within the bound.
func (i *Index) Shrink(maxDocs uint64, policy ShrinkPolicy) error {
	if i.readOnly {
		return ErrReadOnly
	}
	if err := i.Commit(); err != nil {
		return err
	}

	count, err := i.idx.DocCount()
	if err != nil {
		return fmt.Errorf("shrink: %w", err)
	}
	if count <= maxDocs {
		return nil
	}
	remaining := count - maxDocs

	order := []string{"date", "_id"}
	if policy == NewestFirst {
		order = []string{"-date", "_id"}
	}

	deleted := uint64(0)
	for remaining > 0 {
		size := iterPageSize
		if remaining < uint64(size) {
			size = int(remaining)
		}

		req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
		req.Size = size
		req.SortBy(order)

		res, err := i.idx.Search(req)
		if err != nil {
			return fmt.Errorf("shrink: %w", err)
		}
		if len(res.Hits) == 0 {
			break
		}
		for _, hit := range res.Hits {
			if err := i.removeID(hit.ID); err != nil {
				return err
			}
		}
		if err := i.Commit(); err != nil {
			return err
		}
		deleted += uint64(len(res.Hits))
		remaining -= uint64(len(res.Hits))
	}

	i.logger.Info("index shrunk",
		zap.Uint64("deleted", deleted),
		zap.Uint64("max_docs", maxDocs),
	)
	return nil
}

// file: internal/catalog/index.go
// version: 1.0.0
// guid: 9b0c1d2e-3f4a-5b6c-7d8e-9f0a1b2c3d4e

package catalog

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
)

// indexFields are the medicine fields carried in the full-text index.
const (
	fieldName         = "name"
	fieldBrandName    = "brand_name"
	fieldManufacturer = "manufacturer_name"
)

// Hit is one ranked full-text result: a record ID with the index's native
// relevance score.
type Hit struct {
	ID    string
	Score float64
}

// Index wraps a bleve full-text index over medicine name, brand name, and
// manufacturer name. Both store backends share this implementation.
type Index struct {
	idx bleve.Index
}

// NewMemIndex creates an in-memory full-text index. The index is rebuilt
// from the store at startup and on catalog reimport.
func NewMemIndex() (*Index, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create full-text index: %w", err)
	}
	return &Index{idx: idx}, nil
}

// Add indexes one medicine. Nil-safe for optional fields.
func (x *Index) Add(id, name, brandName, manufacturerName string) error {
	doc := map[string]string{
		fieldName:         name,
		fieldBrandName:    brandName,
		fieldManufacturer: manufacturerName,
	}
	return x.idx.Index(id, doc)
}

// Remove deletes one medicine from the index.
func (x *Index) Remove(id string) error {
	return x.idx.Delete(id)
}

// Query runs a ranked match query across all indexed fields and returns up
// to limit hits ordered by relevance descending.
func (x *Index) Query(ctx context.Context, query string, limit int) ([]Hit, error) {
	nameQ := bleve.NewMatchQuery(query)
	nameQ.SetField(fieldName)
	brandQ := bleve.NewMatchQuery(query)
	brandQ.SetField(fieldBrandName)
	mfrQ := bleve.NewMatchQuery(query)
	mfrQ.SetField(fieldManufacturer)

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(nameQ, brandQ, mfrQ), limit, 0, false)
	res, err := x.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("full-text query failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// Close releases index resources.
func (x *Index) Close() error {
	return x.idx.Close()
}

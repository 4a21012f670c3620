// file: internal/catalog/pebble_store.go
// version: 1.1.0
// guid: 0c1d2e3f-4a5b-6c7d-8e9f-0a1b2c3d4e5f

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/cockroachdb/pebble/v2"

	"github.com/rxscribe/rxscribe/internal/models"
)

// PebbleStore implements the Store interface using PebbleDB.
//
// Key Schema:
// - medicine:<id> -> Medicine JSON
//
// Scans iterate the medicine keyspace; ranked full-text retrieval is
// delegated to the shared bleve index, rebuilt from the keyspace at open.
type PebbleStore struct {
	db    *pebble.DB
	index *Index
}

const medicineKeyPrefix = "medicine:"

func medicineKey(id string) []byte {
	return []byte(medicineKeyPrefix + id)
}

// NewPebbleStore creates a new PebbleDB store.
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}

	index, err := NewMemIndex()
	if err != nil {
		db.Close()
		return nil, err
	}

	store := &PebbleStore{db: db, index: index}

	count := 0
	err = store.scanMedicines(func(m *models.Medicine) bool {
		if err := store.indexMedicine(m); err != nil {
			log.Printf("[WARN] failed to index medicine %s: %v", m.ID, err)
		}
		count++
		return true
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to build full-text index: %w", err)
	}
	if count > 0 {
		log.Printf("Indexed %d medicines for full-text search", count)
	}

	return store, nil
}

func (p *PebbleStore) indexMedicine(m *models.Medicine) error {
	brand := ""
	if m.BrandName != nil {
		brand = *m.BrandName
	}
	return p.index.Add(m.ID, m.Name, brand, m.ManufacturerName)
}

// scanMedicines iterates every medicine. The callback returns false to stop.
func (p *PebbleStore) scanMedicines(fn func(*models.Medicine) bool) error {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(medicineKeyPrefix),
		UpperBound: []byte(medicineKeyPrefix + "\xff"),
	})
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var m models.Medicine
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return fmt.Errorf("corrupt medicine record at %s: %w", iter.Key(), err)
		}
		if !fn(&m) {
			break
		}
	}
	return iter.Error()
}

// Close closes the database and the full-text index.
func (p *PebbleStore) Close() error {
	if err := p.index.Close(); err != nil {
		log.Printf("[WARN] failed to close full-text index: %v", err)
	}
	return p.db.Close()
}

// Reset deletes all medicines and resets the full-text index.
func (p *PebbleStore) Reset() error {
	if err := p.db.DeleteRange([]byte(medicineKeyPrefix), []byte(medicineKeyPrefix+"\xff"), pebble.Sync); err != nil {
		return fmt.Errorf("failed to reset medicines: %w", err)
	}
	index, err := NewMemIndex()
	if err != nil {
		return err
	}
	old := p.index
	p.index = index
	if err := old.Close(); err != nil {
		log.Printf("[WARN] failed to close old index: %v", err)
	}
	return nil
}

// CreateMedicine stores and indexes a medicine.
func (p *PebbleStore) CreateMedicine(m *models.Medicine) (*models.Medicine, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("medicine name is required")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal medicine: %w", err)
	}
	if err := p.db.Set(medicineKey(m.ID), data, pebble.Sync); err != nil {
		return nil, fmt.Errorf("failed to store medicine: %w", err)
	}
	if err := p.indexMedicine(m); err != nil {
		return nil, fmt.Errorf("failed to index medicine: %w", err)
	}
	return m, nil
}

// GetMedicineByID returns one medicine or nil when absent.
func (p *PebbleStore) GetMedicineByID(id string) (*models.Medicine, error) {
	value, closer, err := p.db.Get(medicineKey(id))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medicine %s: %w", id, err)
	}
	defer closer.Close()

	var m models.Medicine
	if err := json.Unmarshal(value, &m); err != nil {
		return nil, fmt.Errorf("corrupt medicine record %s: %w", id, err)
	}
	return &m, nil
}

// GetAllMedicines returns a page of medicines ordered by name.
func (p *PebbleStore) GetAllMedicines(limit, offset int) ([]models.Medicine, error) {
	var all []models.Medicine
	err := p.scanMedicines(func(m *models.Medicine) bool {
		all = append(all, *m)
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// CountMedicines returns the total number of catalog entries.
func (p *PebbleStore) CountMedicines() (int, error) {
	count := 0
	err := p.scanMedicines(func(*models.Medicine) bool {
		count++
		return true
	})
	return count, err
}

// Stats returns aggregate catalog statistics.
func (p *PebbleStore) Stats() (*models.CatalogStats, error) {
	manufacturers := make(map[string]struct{})
	categories := make(map[string]struct{})
	total := 0

	err := p.scanMedicines(func(m *models.Medicine) bool {
		total++
		manufacturers[m.ManufacturerName] = struct{}{}
		if m.Category != nil {
			categories[*m.Category] = struct{}{}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return &models.CatalogStats{
		TotalMedicines:      total,
		TotalManufacturers:  len(manufacturers),
		TotalCategories:     len(categories),
		RecognitionAccuracy: RecognitionAccuracy,
	}, nil
}

// SearchByToken retrieves records whose name or brand tokens tolerantly match
// the query, ordered by best token rank.
func (p *PebbleStore) SearchByToken(ctx context.Context, query string, limit int) ([]models.Medicine, error) {
	var pool []models.Medicine
	err := p.scanMedicines(func(m *models.Medicine) bool {
		if ctx.Err() != nil {
			return false
		}
		if bestTokenRank(query, m) >= 0 {
			pool = append(pool, *m)
		}
		return len(pool) < limit*4
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rankMedicines(query, pool)
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}

// SearchFullText runs the ranked full-text query via the bleve index and
// resolves hits back to stored records.
func (p *PebbleStore) SearchFullText(ctx context.Context, query string, limit int) ([]models.ScoredMedicine, error) {
	hits, err := p.index.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]models.ScoredMedicine, 0, len(hits))
	for _, hit := range hits {
		m, err := p.GetMedicineByID(hit.ID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			continue
		}
		results = append(results, models.ScoredMedicine{Medicine: *m, Score: hit.Score})
	}
	return results, nil
}

// SearchSubstring is the plain case-insensitive substring fallback over name
// and brand name.
func (p *PebbleStore) SearchSubstring(ctx context.Context, query string, limit int) ([]models.Medicine, error) {
	needle := strings.ToLower(query)
	var matched []models.Medicine
	err := p.scanMedicines(func(m *models.Medicine) bool {
		if ctx.Err() != nil {
			return false
		}
		if strings.Contains(strings.ToLower(m.Name), needle) ||
			(m.BrandName != nil && strings.Contains(strings.ToLower(*m.BrandName), needle)) {
			matched = append(matched, *m)
		}
		return len(matched) < limit
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return matched, nil
}

// file: internal/catalog/sqlite_store.go
// version: 1.3.0
// guid: 8b9c0d1e-2f3a-4b5c-6d7e-8f9a0b1c2d3e

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rxscribe/rxscribe/internal/models"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const medicineSelectColumns = `
	id, source_id, manufacturer_name, name, rx_required,
	short_composition, slug, brand_name, power, category,
	mg_id, internal_id
`

// maxTokenScanRows bounds the fuzzy token scan when the LIKE pool comes up
// short. Short queries are rare enough that a bounded scan is acceptable.
const maxTokenScanRows = 5000

func scanMedicine(scanner rowScanner, m *models.Medicine) error {
	return scanner.Scan(
		&m.ID, &m.SourceID, &m.ManufacturerName, &m.Name, &m.RxRequired,
		&m.ShortComposition, &m.Slug, &m.BrandName, &m.Power, &m.Category,
		&m.MgID, &m.InternalID,
	)
}

// SQLiteStore implements the Store interface using SQLite3, with full-text
// retrieval delegated to a shared bleve index.
type SQLiteStore struct {
	db    *sql.DB
	index *Index
}

// NewSQLiteStore creates a new SQLite store and rebuilds the full-text index
// from any existing rows.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	index, err := NewMemIndex()
	if err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db, index: index}

	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := store.rebuildIndex(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to build full-text index: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS medicines (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL DEFAULT '',
		manufacturer_name TEXT NOT NULL,
		name TEXT NOT NULL,
		rx_required TEXT,
		short_composition TEXT,
		slug TEXT,
		brand_name TEXT,
		power TEXT,
		category TEXT,
		mg_id INTEGER,
		internal_id INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_medicines_name ON medicines(name);
	CREATE INDEX IF NOT EXISTS idx_medicines_brand_name ON medicines(brand_name);
	CREATE INDEX IF NOT EXISTS idx_medicines_manufacturer ON medicines(manufacturer_name);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) rebuildIndex() error {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT %s FROM medicines`, medicineSelectColumns))
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var m models.Medicine
		if err := scanMedicine(rows, &m); err != nil {
			return err
		}
		if err := s.indexMedicine(&m); err != nil {
			return err
		}
		count++
	}
	if count > 0 {
		log.Printf("Indexed %d medicines for full-text search", count)
	}
	return rows.Err()
}

func (s *SQLiteStore) indexMedicine(m *models.Medicine) error {
	brand := ""
	if m.BrandName != nil {
		brand = *m.BrandName
	}
	return s.index.Add(m.ID, m.Name, brand, m.ManufacturerName)
}

// Close closes the database and the full-text index.
func (s *SQLiteStore) Close() error {
	if err := s.index.Close(); err != nil {
		log.Printf("[WARN] failed to close full-text index: %v", err)
	}
	return s.db.Close()
}

// Reset drops all medicines and resets the full-text index.
func (s *SQLiteStore) Reset() error {
	if _, err := s.db.Exec(`DELETE FROM medicines`); err != nil {
		return fmt.Errorf("failed to reset medicines: %w", err)
	}
	index, err := NewMemIndex()
	if err != nil {
		return err
	}
	old := s.index
	s.index = index
	if err := old.Close(); err != nil {
		log.Printf("[WARN] failed to close old index: %v", err)
	}
	return nil
}

// CreateMedicine inserts a medicine and indexes it for full-text retrieval.
func (s *SQLiteStore) CreateMedicine(m *models.Medicine) (*models.Medicine, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("medicine name is required")
	}
	query := fmt.Sprintf(`INSERT INTO medicines (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, medicineSelectColumns)
	_, err := s.db.Exec(query,
		m.ID, m.SourceID, m.ManufacturerName, m.Name, m.RxRequired,
		m.ShortComposition, m.Slug, m.BrandName, m.Power, m.Category,
		m.MgID, m.InternalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert medicine: %w", err)
	}
	if err := s.indexMedicine(m); err != nil {
		return nil, fmt.Errorf("failed to index medicine: %w", err)
	}
	return m, nil
}

// GetMedicineByID returns one medicine or nil when absent.
func (s *SQLiteStore) GetMedicineByID(id string) (*models.Medicine, error) {
	query := fmt.Sprintf(`SELECT %s FROM medicines WHERE id = ?`, medicineSelectColumns)
	var m models.Medicine
	err := scanMedicine(s.db.QueryRow(query, id), &m)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medicine %s: %w", id, err)
	}
	return &m, nil
}

// GetAllMedicines returns a page of medicines ordered by name.
func (s *SQLiteStore) GetAllMedicines(limit, offset int) ([]models.Medicine, error) {
	query := fmt.Sprintf(`SELECT %s FROM medicines ORDER BY name LIMIT ? OFFSET ?`, medicineSelectColumns)
	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	defer rows.Close()
	return collectMedicines(rows)
}

// CountMedicines returns the total number of catalog entries.
func (s *SQLiteStore) CountMedicines() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM medicines`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count medicines: %w", err)
	}
	return count, nil
}

// Stats returns aggregate catalog statistics.
func (s *SQLiteStore) Stats() (*models.CatalogStats, error) {
	stats := &models.CatalogStats{RecognitionAccuracy: RecognitionAccuracy}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM medicines`).Scan(&stats.TotalMedicines); err != nil {
		return nil, fmt.Errorf("failed to count medicines: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT manufacturer_name) FROM medicines`).Scan(&stats.TotalManufacturers); err != nil {
		return nil, fmt.Errorf("failed to count manufacturers: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT category) FROM medicines WHERE category IS NOT NULL`).Scan(&stats.TotalCategories); err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	return stats, nil
}

// SearchByToken retrieves records whose name or brand tokens tolerantly match
// the query. A substring pool is tried first; if it comes up short, a bounded
// scan re-ranks tokens with subsequence fuzzy matching.
func (s *SQLiteStore) SearchByToken(ctx context.Context, query string, limit int) ([]models.Medicine, error) {
	pool, err := s.SearchSubstring(ctx, query, limit*4)
	if err != nil {
		return nil, err
	}

	if len(pool) < limit {
		extra, err := s.fuzzyTokenScan(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool, len(pool))
		for _, m := range pool {
			seen[m.ID] = true
		}
		for _, m := range extra {
			if !seen[m.ID] {
				pool = append(pool, m)
			}
		}
	}

	rankMedicines(query, pool)
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}

func (s *SQLiteStore) fuzzyTokenScan(ctx context.Context, query string, limit int) ([]models.Medicine, error) {
	sqlQuery := fmt.Sprintf(`SELECT %s FROM medicines LIMIT ?`, medicineSelectColumns)
	rows, err := s.db.QueryContext(ctx, sqlQuery, maxTokenScanRows)
	if err != nil {
		return nil, fmt.Errorf("failed token scan: %w", err)
	}
	defer rows.Close()

	var matched []models.Medicine
	for rows.Next() {
		var m models.Medicine
		if err := scanMedicine(rows, &m); err != nil {
			return nil, err
		}
		if bestTokenRank(query, &m) >= 0 {
			matched = append(matched, m)
			if len(matched) >= limit*4 {
				break
			}
		}
	}
	return matched, rows.Err()
}

// bestTokenRank returns the best (lowest) fuzzy rank of the query against the
// name and brand tokens of a medicine, or -1 when no token matches.
func bestTokenRank(query string, m *models.Medicine) int {
	best := -1
	consider := func(field string) {
		for _, token := range strings.Fields(field) {
			if r := fuzzy.RankMatchNormalizedFold(query, token); r >= 0 {
				if best < 0 || r < best {
					best = r
				}
			}
		}
	}
	consider(m.Name)
	if m.BrandName != nil {
		consider(*m.BrandName)
	}
	return best
}

// rankMedicines orders a pool by best token rank ascending, keeping store
// order among records without a token match.
func rankMedicines(query string, pool []models.Medicine) {
	sort.SliceStable(pool, func(i, j int) bool {
		ri := bestTokenRank(query, &pool[i])
		rj := bestTokenRank(query, &pool[j])
		if ri < 0 {
			return false
		}
		if rj < 0 {
			return true
		}
		return ri < rj
	})
}

// SearchFullText runs the ranked full-text query via the bleve index and
// resolves hits back to catalog rows, preserving index order and scores.
func (s *SQLiteStore) SearchFullText(ctx context.Context, query string, limit int) ([]models.ScoredMedicine, error) {
	hits, err := s.index.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]models.ScoredMedicine, 0, len(hits))
	for _, hit := range hits {
		m, err := s.GetMedicineByID(hit.ID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			// Index can briefly trail the table after a reset.
			continue
		}
		results = append(results, models.ScoredMedicine{Medicine: *m, Score: hit.Score})
	}
	return results, nil
}

// SearchSubstring is the plain case-insensitive substring fallback over name
// and brand name.
func (s *SQLiteStore) SearchSubstring(ctx context.Context, query string, limit int) ([]models.Medicine, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	sqlQuery := fmt.Sprintf(
		`SELECT %s FROM medicines WHERE LOWER(name) LIKE ? OR LOWER(brand_name) LIKE ? ORDER BY name LIMIT ?`,
		medicineSelectColumns,
	)
	rows, err := s.db.QueryContext(ctx, sqlQuery, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("substring search failed: %w", err)
	}
	defer rows.Close()
	return collectMedicines(rows)
}

func collectMedicines(rows *sql.Rows) ([]models.Medicine, error) {
	var medicines []models.Medicine
	for rows.Next() {
		var m models.Medicine
		if err := scanMedicine(rows, &m); err != nil {
			return nil, err
		}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}

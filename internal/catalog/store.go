// file: internal/catalog/store.go
// version: 1.2.0
// guid: 8a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3d

package catalog

import (
	"context"
	"fmt"

	"github.com/rxscribe/rxscribe/internal/models"
)

// Store defines the interface for catalog record retrieval and maintenance.
// This abstraction supports both SQLite (default) and PebbleDB backends, and
// a mock for tests. The matching core consumes only the three Search methods.
type Store interface {
	// Lifecycle
	Close() error
	Reset() error

	// Medicines
	CreateMedicine(m *models.Medicine) (*models.Medicine, error)
	GetMedicineByID(id string) (*models.Medicine, error)
	GetAllMedicines(limit, offset int) ([]models.Medicine, error)
	CountMedicines() (int, error)
	Stats() (*models.CatalogStats, error)

	// SearchByToken retrieves records whose name or brand tokens tolerantly
	// match the query. Used for short queries where recall beats precision.
	SearchByToken(ctx context.Context, query string, limit int) ([]models.Medicine, error)

	// SearchFullText retrieves ranked records across name, brand name, and
	// manufacturer name, carrying the index's native relevance score.
	SearchFullText(ctx context.Context, query string, limit int) ([]models.ScoredMedicine, error)

	// SearchSubstring is the guaranteed-available fallback: plain
	// case-insensitive substring match on name and brand name.
	SearchSubstring(ctx context.Context, query string, limit int) ([]models.Medicine, error)
}

// RecognitionAccuracy is the published accuracy figure surfaced in catalog
// statistics.
const RecognitionAccuracy = 94

// Global store instance
var GlobalStore Store

// InitializeStore initializes the catalog store based on configuration.
// SQLite is the default backend; PebbleDB is available for deployments that
// prefer a pure key-value store.
func InitializeStore(dbType, path string) error {
	var err error

	switch dbType {
	case "sqlite", "sqlite3", "":
		GlobalStore, err = NewSQLiteStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
	case "pebble":
		GlobalStore, err = NewPebbleStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize PebbleDB store: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database type: %s (supported: sqlite, pebble)", dbType)
	}

	return nil
}

// CloseStore closes the global store.
func CloseStore() error {
	if GlobalStore != nil {
		return GlobalStore.Close()
	}
	return nil
}

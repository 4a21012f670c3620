// file: internal/catalog/mock_store.go
// version: 1.1.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package catalog

import (
	"context"

	"github.com/rxscribe/rxscribe/internal/models"
)

// MockStore is a simple mock implementation for testing the search strategy
// and the services built on top of it.
type MockStore struct {
	CloseFunc           func() error
	ResetFunc           func() error
	CreateMedicineFunc  func(m *models.Medicine) (*models.Medicine, error)
	GetMedicineByIDFunc func(id string) (*models.Medicine, error)
	GetAllMedicinesFunc func(limit, offset int) ([]models.Medicine, error)
	CountMedicinesFunc  func() (int, error)
	StatsFunc           func() (*models.CatalogStats, error)
	SearchByTokenFunc   func(ctx context.Context, query string, limit int) ([]models.Medicine, error)
	SearchFullTextFunc  func(ctx context.Context, query string, limit int) ([]models.ScoredMedicine, error)
	SearchSubstringFunc func(ctx context.Context, query string, limit int) ([]models.Medicine, error)
}

// Close calls the mock implementation if set.
func (m *MockStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Reset calls the mock implementation if set.
func (m *MockStore) Reset() error {
	if m.ResetFunc != nil {
		return m.ResetFunc()
	}
	return nil
}

// CreateMedicine calls the mock implementation if set.
func (m *MockStore) CreateMedicine(med *models.Medicine) (*models.Medicine, error) {
	if m.CreateMedicineFunc != nil {
		return m.CreateMedicineFunc(med)
	}
	return med, nil
}

// GetMedicineByID calls the mock implementation if set.
func (m *MockStore) GetMedicineByID(id string) (*models.Medicine, error) {
	if m.GetMedicineByIDFunc != nil {
		return m.GetMedicineByIDFunc(id)
	}
	return nil, nil
}

// GetAllMedicines calls the mock implementation if set.
func (m *MockStore) GetAllMedicines(limit, offset int) ([]models.Medicine, error) {
	if m.GetAllMedicinesFunc != nil {
		return m.GetAllMedicinesFunc(limit, offset)
	}
	return nil, nil
}

// CountMedicines calls the mock implementation if set.
func (m *MockStore) CountMedicines() (int, error) {
	if m.CountMedicinesFunc != nil {
		return m.CountMedicinesFunc()
	}
	return 0, nil
}

// Stats calls the mock implementation if set.
func (m *MockStore) Stats() (*models.CatalogStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc()
	}
	return &models.CatalogStats{RecognitionAccuracy: RecognitionAccuracy}, nil
}

// SearchByToken calls the mock implementation if set.
func (m *MockStore) SearchByToken(ctx context.Context, query string, limit int) ([]models.Medicine, error) {
	if m.SearchByTokenFunc != nil {
		return m.SearchByTokenFunc(ctx, query, limit)
	}
	return nil, nil
}

// SearchFullText calls the mock implementation if set.
func (m *MockStore) SearchFullText(ctx context.Context, query string, limit int) ([]models.ScoredMedicine, error) {
	if m.SearchFullTextFunc != nil {
		return m.SearchFullTextFunc(ctx, query, limit)
	}
	return nil, nil
}

// SearchSubstring calls the mock implementation if set.
func (m *MockStore) SearchSubstring(ctx context.Context, query string, limit int) ([]models.Medicine, error) {
	if m.SearchSubstringFunc != nil {
		return m.SearchSubstringFunc(ctx, query, limit)
	}
	return nil, nil
}

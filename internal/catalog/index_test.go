// file: internal/catalog/index_test.go
// version: 1.0.0
// guid: 3c4d5e6f-7a8b-9c0d-1e2f-3a4b5c6d7e90

package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewMemIndex()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndexQueryAcrossFields(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Add("m-1", "Amoxicillin Clavulanate", "Augmentin", "GSK"))
	require.NoError(t, idx.Add("m-2", "Crocin Advance", "", "GSK"))
	require.NoError(t, idx.Add("m-3", "Azithral", "", "Alembic"))

	// Brand name is searchable.
	hits, err := idx.Query(context.Background(), "augmentin", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "m-1", hits[0].ID)
	assert.Greater(t, hits[0].Score, 0.0)

	// Manufacturer is searchable and can match multiple records.
	hits, err = idx.Query(context.Background(), "gsk", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestIndexQueryLimit(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Add("m-1", "Crocin 100", "", "GSK"))
	require.NoError(t, idx.Add("m-2", "Crocin 200", "", "GSK"))
	require.NoError(t, idx.Add("m-3", "Crocin 650", "", "GSK"))

	hits, err := idx.Query(context.Background(), "crocin", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestIndexRemove(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Add("m-1", "Azithral", "", "Alembic"))
	require.NoError(t, idx.Remove("m-1"))

	hits, err := idx.Query(context.Background(), "azithral", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexNoMatches(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Add("m-1", "Azithral", "", "Alembic"))

	hits, err := idx.Query(context.Background(), "paracetamol", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

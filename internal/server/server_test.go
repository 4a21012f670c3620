// file: internal/server/server_test.go
// version: 2.0.0
// guid: 8a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3e

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxscribe/rxscribe/internal/cache"
	"github.com/rxscribe/rxscribe/internal/catalog"
	"github.com/rxscribe/rxscribe/internal/config"
	"github.com/rxscribe/rxscribe/internal/models"
	"github.com/rxscribe/rxscribe/internal/recognizer"
	"github.com/rxscribe/rxscribe/internal/search"
)

func strPtr(s string) *string { return &s }

func testMedicine(id, name string, brand *string) models.Medicine {
	return models.Medicine{ID: id, Name: name, BrandName: brand, ManufacturerName: "Acme Pharma"}
}

// newTestServer wires a full server against a mock store and the static
// recognizer.
func newTestServer(store catalog.Store) *Server {
	gin.SetMode(gin.TestMode)
	config.AppConfig = config.Config{}

	retriever := search.NewRetriever(store, cache.New[[]models.Medicine](time.Minute), search.DefaultOptions())
	reconciler := search.NewReconciler(retriever, search.DefaultReconcilerOptions())
	return NewServer(store, retriever, reconciler, recognizer.NewStaticRecognizer())
}

func catalogByQuery(resultsByQuery map[string][]models.Medicine) *catalog.MockStore {
	return &catalog.MockStore{
		SearchFullTextFunc: func(ctx context.Context, q string, limit int) ([]models.ScoredMedicine, error) {
			var scored []models.ScoredMedicine
			for i, m := range resultsByQuery[q] {
				scored = append(scored, models.ScoredMedicine{Medicine: m, Score: float64(len(resultsByQuery[q]) - i)})
			}
			return scored, nil
		},
	}
}

func doRequest(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	store := &catalog.MockStore{
		CountMedicinesFunc: func() (int, error) { return 42, nil },
	}
	s := newTestServer(store)

	w := doRequest(s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	metrics := resp["metrics"].(map[string]any)
	assert.Equal(t, float64(42), metrics["medicines"])
}

func TestSearchEndpoint(t *testing.T) {
	store := catalogByQuery(map[string][]models.Medicine{
		"augmentin": {testMedicine("m-1", "Augmentin", strPtr("Augmentin 625"))},
	})
	s := newTestServer(store)

	w := doRequest(s, http.MethodGet, "/api/v1/medicines/search?q=Augmentin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Medicines, 1)
	assert.Equal(t, "m-1", resp.Medicines[0].ID)
	assert.Equal(t, 1, resp.Meta.Count)
	assert.Equal(t, "Augmentin", resp.Meta.Query)
}

func TestSearchEndpointEmptyQuery(t *testing.T) {
	called := false
	store := &catalog.MockStore{
		SearchFullTextFunc: func(ctx context.Context, q string, limit int) ([]models.ScoredMedicine, error) {
			called = true
			return nil, nil
		},
	}
	s := newTestServer(store)

	w := doRequest(s, http.MethodGet, "/api/v1/medicines/search", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Medicines)
	assert.False(t, called, "empty query must not reach the store")
	assert.Contains(t, w.Body.String(), `"medicines":[]`, "empty result must be [] not null")
}

func TestSearchEndpointDegradesOnStoreFailure(t *testing.T) {
	store := &catalog.MockStore{
		SearchFullTextFunc: func(ctx context.Context, q string, limit int) ([]models.ScoredMedicine, error) {
			return nil, fmt.Errorf("index down")
		},
		SearchSubstringFunc: func(ctx context.Context, q string, limit int) ([]models.Medicine, error) {
			return nil, fmt.Errorf("db down")
		},
	}
	s := newTestServer(store)

	w := doRequest(s, http.MethodGet, "/api/v1/medicines/search?q=augmentin", nil)
	assert.Equal(t, http.StatusOK, w.Code, "retrieval failure degrades to empty, not 500")
}

func TestListMedicines(t *testing.T) {
	store := &catalog.MockStore{
		GetAllMedicinesFunc: func(limit, offset int) ([]models.Medicine, error) {
			assert.Equal(t, 2, limit)
			assert.Equal(t, 1, offset)
			return []models.Medicine{testMedicine("m-1", "Augmentin", nil), testMedicine("m-2", "Azithral", nil)}, nil
		},
	}
	s := newTestServer(store)

	w := doRequest(s, http.MethodGet, "/api/v1/medicines?limit=2&offset=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["count"])
}

func TestGetMedicine(t *testing.T) {
	m := testMedicine("m-1", "Augmentin", nil)
	store := &catalog.MockStore{
		GetMedicineByIDFunc: func(id string) (*models.Medicine, error) {
			if id == "m-1" {
				return &m, nil
			}
			return nil, nil
		},
	}
	s := newTestServer(store)

	w := doRequest(s, http.MethodGet, "/api/v1/medicines/m-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view models.MedicineView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "Augmentin", view.Name)

	w = doRequest(s, http.MethodGet, "/api/v1/medicines/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetStatistics(t *testing.T) {
	store := &catalog.MockStore{
		StatsFunc: func() (*models.CatalogStats, error) {
			return &models.CatalogStats{
				TotalMedicines:      100,
				TotalManufacturers:  10,
				TotalCategories:     5,
				RecognitionAccuracy: catalog.RecognitionAccuracy,
			}, nil
		},
	}
	s := newTestServer(store)

	w := doRequest(s, http.MethodGet, "/api/v1/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.CatalogStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 100, stats.TotalMedicines)
	assert.Equal(t, 94, stats.RecognitionAccuracy)
}

func TestRecognizeEndpoint(t *testing.T) {
	store := catalogByQuery(map[string][]models.Medicine{
		"augmentin":   {testMedicine("m-aug", "Augmentin", nil)},
		"azithral":    {testMedicine("m-azi", "Azithral", nil)},
		"amoxicillin": {testMedicine("m-amx", "Amoxicillin", nil)},
	})
	s := newTestServer(store)

	body, _ := json.Marshal(models.RecognizeRequest{
		Strokes: [][]models.StrokePoint{{{X: 1, Y: 2, Time: 3}}},
	})
	w := doRequest(s, http.MethodPost, "/api/v1/recognize", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.RecognizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Candidates, 3)
	require.Len(t, resp.Matches, 3)

	// Highest confidence candidate produces the top match.
	assert.Equal(t, "m-aug", resp.Matches[0].Medicine.ID)
	assert.InDelta(t, 0.95, resp.Matches[0].MatchScore, 1e-9)
	assert.Equal(t, models.MatchedFieldName, resp.Matches[0].MatchedField)
	assert.Equal(t, 3, resp.Meta.Count)
}

func TestRecognizeRejectsMissingStrokes(t *testing.T) {
	s := newTestServer(&catalog.MockStore{})

	w := doRequest(s, http.MethodPost, "/api/v1/recognize", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(s, http.MethodPost, "/api/v1/recognize", []byte(`{"strokes":[]}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(s, http.MethodPost, "/api/v1/recognize", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecognizeEmptyMatchesIsArray(t *testing.T) {
	store := &catalog.MockStore{} // nothing retrievable
	s := newTestServer(store)

	body, _ := json.Marshal(models.RecognizeRequest{
		Strokes: [][]models.StrokePoint{{{X: 1, Y: 2, Time: 3}}},
	})
	w := doRequest(s, http.MethodPost, "/api/v1/recognize", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"matches":[]`, "no matches must serialize as [] not null")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&catalog.MockStore{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/medicines", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

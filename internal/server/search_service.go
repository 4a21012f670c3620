// file: internal/server/search_service.go
// version: 1.0.0
// guid: 6e7f8a9b-0c1d-2e3f-4a5b-6c7d8e9f0a1b

package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rxscribe/rxscribe/internal/models"
)

// searchMedicines handles GET /api/v1/medicines/search?q=...
// Retrieval errors degrade to an empty result, the endpoint never 500s on a
// backend hiccup.
func (s *Server) searchMedicines(c *gin.Context) {
	if s.retriever == nil {
		RespondWithServiceUnavailable(c, "search is not initialized")
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	start := time.Now()

	var views []models.MedicineView
	if query != "" {
		for _, m := range s.retriever.Search(c.Request.Context(), query) {
			views = append(views, m.View())
		}
	}
	if views == nil {
		views = []models.MedicineView{}
	}

	c.JSON(http.StatusOK, models.SearchResponse{
		Medicines: views,
		Meta: models.ResponseMeta{
			DurationMS: time.Since(start).Milliseconds(),
			Count:      len(views),
			Query:      query,
		},
	})
}

// listMedicines handles GET /api/v1/medicines with pagination.
func (s *Server) listMedicines(c *gin.Context) {
	if s.store == nil {
		RespondWithServiceUnavailable(c, "catalog is not initialized")
		return
	}

	params := ParsePaginationParams(c)

	medicines, err := s.store.GetAllMedicines(params.Limit, params.Offset)
	if err != nil {
		RespondWithInternalError(c, err.Error())
		return
	}

	views := make([]models.MedicineView, 0, len(medicines))
	for i := range medicines {
		views = append(views, medicines[i].View())
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  views,
		"count":  len(views),
		"limit":  params.Limit,
		"offset": params.Offset,
	})
}

// getMedicine handles GET /api/v1/medicines/:id
func (s *Server) getMedicine(c *gin.Context) {
	if s.store == nil {
		RespondWithServiceUnavailable(c, "catalog is not initialized")
		return
	}

	id := c.Param("id")
	medicine, err := s.store.GetMedicineByID(id)
	if err != nil {
		RespondWithInternalError(c, err.Error())
		return
	}
	if medicine == nil {
		RespondWithNotFound(c, "medicine", id)
		return
	}

	c.JSON(http.StatusOK, medicine.View())
}

// getStatistics handles GET /api/v1/statistics
func (s *Server) getStatistics(c *gin.Context) {
	if s.store == nil {
		RespondWithServiceUnavailable(c, "catalog is not initialized")
		return
	}

	stats, err := s.store.Stats()
	if err != nil {
		RespondWithInternalError(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, stats)
}

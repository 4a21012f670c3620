// file: internal/server/recognition_service.go
// version: 1.0.0
// guid: 7f8a9b0c-1d2e-3f4a-5b6c-7d8e9f0a1b2c

package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rxscribe/rxscribe/internal/metrics"
	"github.com/rxscribe/rxscribe/internal/models"
)

// recognize handles POST /api/v1/recognize: strokes in, recognition
// candidates plus ranked catalog matches out.
func (s *Server) recognize(c *gin.Context) {
	if s.recognizer == nil || s.reconciler == nil {
		RespondWithServiceUnavailable(c, "recognition is not initialized")
		return
	}

	var req models.RecognizeRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	if len(req.Strokes) == 0 {
		RespondWithValidationError(c, "strokes", "at least one stroke is required")
		return
	}

	start := time.Now()
	defer func() {
		metrics.ObserveRecognitionDuration(time.Since(start))
	}()

	candidates, err := s.recognizer.Recognize(c.Request.Context(), req.Strokes)
	if err != nil {
		log.Printf("[ERROR] recognition failed: %v", err)
		RespondWithInternalError(c, "recognition failed")
		return
	}

	matches := s.reconciler.Reconcile(c.Request.Context(), candidates)
	if matches == nil {
		matches = []models.MedicineMatch{}
	}
	if candidates == nil {
		candidates = []models.RecognitionCandidate{}
	}

	c.JSON(http.StatusOK, models.RecognizeResponse{
		Candidates: candidates,
		Matches:    matches,
		Meta: models.ResponseMeta{
			DurationMS: time.Since(start).Milliseconds(),
			Count:      len(matches),
		},
	})
}

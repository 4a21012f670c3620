// file: internal/recognizer/recognizer.go
// version: 1.0.0
// guid: 8b9c0d1e-2f3a-4b5c-6d7e-8f9a0b1c2d3e

package recognizer

import (
	"context"

	"github.com/rxscribe/rxscribe/internal/models"
)

// Recognizer turns stroke geometry into ordered text candidates. The
// matching core consumes the candidates; recognition itself is an external
// capability behind this interface.
type Recognizer interface {
	Recognize(ctx context.Context, strokes [][]models.StrokePoint) ([]models.RecognitionCandidate, error)
}

// StaticRecognizer returns a fixed candidate list regardless of input. Used
// in development and tests, where a deterministic recognizer stands in for
// the hosted recognition API.
type StaticRecognizer struct {
	Candidates []models.RecognitionCandidate
}

// NewStaticRecognizer creates a recognizer with the default demo candidates.
func NewStaticRecognizer() *StaticRecognizer {
	return &StaticRecognizer{
		Candidates: []models.RecognitionCandidate{
			{Text: "Augmentin", Confidence: 0.95},
			{Text: "Azithral", Confidence: 0.78},
			{Text: "Amoxicillin", Confidence: 0.65},
		},
	}
}

// Recognize returns the configured candidates.
func (s *StaticRecognizer) Recognize(_ context.Context, _ [][]models.StrokePoint) ([]models.RecognitionCandidate, error) {
	out := make([]models.RecognitionCandidate, len(s.Candidates))
	copy(out, s.Candidates)
	return out, nil
}

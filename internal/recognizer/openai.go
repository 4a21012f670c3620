// file: internal/recognizer/openai.go
// version: 1.1.0
// guid: 9c0d1e2f-3a4b-5c6d-7e8f-9a0b1c2d3e4f

package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/rxscribe/rxscribe/internal/models"
)

// maxStrokePoints bounds the serialized geometry sent to the model.
const maxStrokePoints = 2000

// OpenAIRecognizer asks a chat model to read serialized stroke geometry and
// propose medicine-name candidates with confidences.
type OpenAIRecognizer struct {
	client     *openai.Client
	model      string
	maxRetries int
	enabled    bool
}

// NewOpenAIRecognizer creates an OpenAI-backed recognizer. With no API key
// it is created disabled and every call fails fast.
func NewOpenAIRecognizer(apiKey string, enabled bool) *OpenAIRecognizer {
	if !enabled || apiKey == "" {
		return &OpenAIRecognizer{enabled: false}
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &OpenAIRecognizer{
		client:     &client,
		model:      "gpt-4o-mini",
		maxRetries: 2,
		enabled:    true,
	}
}

// IsEnabled returns whether the recognizer is enabled.
func (r *OpenAIRecognizer) IsEnabled() bool {
	return r.enabled
}

type candidatePayload struct {
	Candidates []models.RecognitionCandidate `json:"candidates"`
}

// Recognize serializes the strokes and asks the model for ranked candidates.
func (r *OpenAIRecognizer) Recognize(ctx context.Context, strokes [][]models.StrokePoint) ([]models.RecognitionCandidate, error) {
	if !r.enabled {
		return nil, fmt.Errorf("OpenAI recognizer is not enabled")
	}
	if len(strokes) == 0 {
		return nil, fmt.Errorf("no strokes provided")
	}

	systemPrompt := `You are an expert at reading handwritten medicine names from digitizer stroke data.
The input is a list of pen strokes; each stroke is a sequence of (x, y, t) points in drawing order.

Infer what word was written. Handwriting on prescriptions is messy: consider likely medicine
names, partial words, and common confusions (a/o, m/n, cl/d).

Return ONLY valid JSON of this shape, candidates ordered from most to least likely:
{
  "candidates": [
    {"text": "word", "confidence": 0.95}
  ]
}

Confidence is a number in [0,1]. Return at most 5 candidates.`

	userPrompt := fmt.Sprintf("Read this handwriting sample:\n\n%s", serializeStrokes(strokes))

	jsonObjectFormat := shared.NewResponseFormatJSONObjectParam()

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[WARN] recognition attempt %d after error: %v", attempt+1, lastErr)
			time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
		}

		completion, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(userPrompt),
			},
			Model:       shared.ChatModel(r.model),
			Temperature: param.NewOpt(0.1),
			MaxTokens:   param.NewOpt[int64](500),
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &jsonObjectFormat,
			},
		})
		if err != nil {
			lastErr = fmt.Errorf("OpenAI API call failed: %w", err)
			continue
		}
		if len(completion.Choices) == 0 {
			lastErr = fmt.Errorf("no response from OpenAI")
			continue
		}

		candidates, err := parseCandidates(completion.Choices[0].Message.Content)
		if err != nil {
			lastErr = err
			continue
		}
		return candidates, nil
	}
	return nil, lastErr
}

// parseCandidates validates the model output: malformed candidates are
// dropped, the rest are returned ordered by confidence descending.
func parseCandidates(content string) ([]models.RecognitionCandidate, error) {
	var payload candidatePayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse recognition response: %w", err)
	}

	valid := make([]models.RecognitionCandidate, 0, len(payload.Candidates))
	for _, c := range payload.Candidates {
		c.Text = strings.TrimSpace(c.Text)
		if c.Valid() {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("recognition response contained no usable candidates")
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Confidence > valid[j].Confidence
	})
	return valid, nil
}

func serializeStrokes(strokes [][]models.StrokePoint) string {
	var b strings.Builder
	points := 0
	for i, stroke := range strokes {
		fmt.Fprintf(&b, "stroke %d:", i+1)
		for _, p := range stroke {
			if points >= maxStrokePoints {
				b.WriteString(" …")
				return b.String()
			}
			fmt.Fprintf(&b, " (%.0f,%.0f,%d)", p.X, p.Y, p.Time)
			points++
		}
		b.WriteString("\n")
	}
	return b.String()
}

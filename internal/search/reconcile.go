// file: internal/search/reconcile.go
// version: 1.1.0
// guid: 5e6f7a8b-9c0d-1e2f-3a4b-5c6d7e8f9a0b

package search

import (
	"context"
	"sort"
	"time"

	"github.com/rxscribe/rxscribe/internal/metrics"
	"github.com/rxscribe/rxscribe/internal/models"
	"github.com/rxscribe/rxscribe/internal/similarity"
)

// Reconciliation defaults. The per-candidate cap keeps low-confidence
// candidates from dominating the global list.
const (
	DefaultPerCandidateLimit = 5
	DefaultMaxMatches        = 10
	DefaultScoreThreshold    = 0.6
)

// ReconcilerOptions configures a Reconciler.
type ReconcilerOptions struct {
	PerCandidateLimit int
	MaxMatches        int
	ScoreThreshold    float64
}

// DefaultReconcilerOptions returns the production reconciliation configuration.
func DefaultReconcilerOptions() ReconcilerOptions {
	return ReconcilerOptions{
		PerCandidateLimit: DefaultPerCandidateLimit,
		MaxMatches:        DefaultMaxMatches,
		ScoreThreshold:    DefaultScoreThreshold,
	}
}

// Reconciler turns ordered recognition candidates into a globally ranked,
// deduplicated match list. Candidates arrive confidence-ordered from the
// recognizer; the first candidate to claim a record keeps it, so the
// highest-confidence interpretation of each record wins.
type Reconciler struct {
	retriever *Retriever
	opts      ReconcilerOptions
}

// NewReconciler creates a Reconciler over a Retriever.
func NewReconciler(retriever *Retriever, opts ReconcilerOptions) *Reconciler {
	if opts.PerCandidateLimit < 1 {
		opts.PerCandidateLimit = DefaultPerCandidateLimit
	}
	if opts.MaxMatches < 1 {
		opts.MaxMatches = DefaultMaxMatches
	}
	if opts.ScoreThreshold <= 0 {
		opts.ScoreThreshold = DefaultScoreThreshold
	}
	return &Reconciler{retriever: retriever, opts: opts}
}

// Reconcile retrieves and scores catalog records for each candidate and
// returns the ranked match list, capped at MaxMatches. Malformed candidates
// are skipped; an empty candidate list yields an empty result.
func (r *Reconciler) Reconcile(ctx context.Context, candidates []models.RecognitionCandidate) []models.MedicineMatch {
	start := time.Now()
	defer func() {
		metrics.ObserveReconcileDuration(time.Since(start))
	}()

	seen := make(map[string]bool)
	var matches []models.MedicineMatch

	for _, candidate := range candidates {
		if !candidate.Valid() {
			continue
		}

		retrieved := r.retriever.Search(ctx, candidate.Text)
		if len(retrieved) > r.opts.PerCandidateLimit {
			retrieved = retrieved[:r.opts.PerCandidateLimit]
		}

		for i := range retrieved {
			medicine := &retrieved[i]
			if seen[medicine.ID] {
				continue
			}
			seen[medicine.ID] = true

			fieldScore, matchedField := scoreFields(candidate.Text, medicine)
			if fieldScore <= r.opts.ScoreThreshold {
				continue
			}

			matches = append(matches, models.MedicineMatch{
				Medicine:     medicine.View(),
				MatchScore:   fieldScore * candidate.Confidence,
				MatchedField: matchedField,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	if len(matches) > r.opts.MaxMatches {
		matches = matches[:r.opts.MaxMatches]
	}
	return matches
}

// scoreFields returns the better of the name and brand similarity scores and
// which field produced it. Name wins ties.
func scoreFields(text string, m *models.Medicine) (float64, string) {
	nameScore := similarity.CombinedSimilarity(text, m.Name)
	brandScore := 0.0
	if m.BrandName != nil {
		brandScore = similarity.CombinedSimilarity(text, *m.BrandName)
	}
	if nameScore >= brandScore {
		return nameScore, models.MatchedFieldName
	}
	return brandScore, models.MatchedFieldBrand
}

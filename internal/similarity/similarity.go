// file: internal/similarity/similarity.go
// version: 1.0.0
// guid: 2b3c4d5e-6f7a-8b9c-0d1e-2f3a4b5c6d7e

package similarity

import (
	"sort"
	"strings"
)

// Blend weights for CombinedSimilarity. Edit closeness dominates fragment
// overlap; tunable, but the defaults match production behavior.
const (
	LevenshteinWeight = 0.7
	JaccardWeight     = 0.3
)

// Default parameters for FuzzyFilter.
const (
	DefaultNgramSize       = 2
	DefaultFilterThreshold = 0.6
	DefaultFilterLimit     = 10
)

// Scored holds one fuzzy-filtered candidate with its similarity score.
type Scored struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// LevenshteinDistance computes the edit distance between two strings after
// case folding. Identical strings return 0 without building the table; that
// is part of the contract, not just a shortcut.
func LevenshteinDistance(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 0
	}
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// Single-row DP
	prev := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev = curr
	}
	return prev[lb]
}

// Similarity returns a normalized similarity in [0,1] based on edit
// distance. Two empty strings are defined as identical.
func Similarity(a, b string) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(LevenshteinDistance(a, b))/float64(maxLen)
}

// NgramJaccard returns the Jaccard coefficient of the two strings' n-gram
// sets after case folding and whitespace stripping. An empty union yields 0.
func NgramJaccard(a, b string, n int) float64 {
	if n < 1 {
		n = DefaultNgramSize
	}
	na := ngrams(a, n)
	nb := ngrams(b, n)

	union := len(nb)
	intersection := 0
	for g := range na {
		if _, ok := nb[g]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// CombinedSimilarity blends edit-distance similarity with bigram overlap.
func CombinedSimilarity(a, b string) float64 {
	return LevenshteinWeight*Similarity(a, b) + JaccardWeight*NgramJaccard(a, b, DefaultNgramSize)
}

// FuzzyFilter scores every candidate against the query, keeps scores at or
// above threshold, and returns them sorted descending, capped at limit.
// Ties keep the candidates' original relative order.
func FuzzyFilter(query string, candidates []string, threshold float64, limit int) []Scored {
	if limit <= 0 {
		limit = DefaultFilterLimit
	}
	results := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		s := Similarity(query, c)
		if s >= threshold {
			results = append(results, Scored{Text: c, Score: s})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func ngrams(s string, n int) map[string]struct{} {
	normalized := strings.Join(strings.Fields(strings.ToLower(s)), "")
	set := make(map[string]struct{})
	for i := 0; i+n <= len(normalized); i++ {
		set[normalized[i:i+n]] = struct{}{}
	}
	return set
}

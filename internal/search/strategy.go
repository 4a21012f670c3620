// file: internal/search/strategy.go
// version: 1.2.0
// guid: 4d5e6f7a-8b9c-0d1e-2f3a-4b5c6d7e8f9a

package search

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rxscribe/rxscribe/internal/cache"
	"github.com/rxscribe/rxscribe/internal/catalog"
	"github.com/rxscribe/rxscribe/internal/metrics"
	"github.com/rxscribe/rxscribe/internal/models"
	"github.com/rxscribe/rxscribe/internal/similarity"
)

// Retrieval defaults. Overridable per Retriever so tests can tighten them.
const (
	DefaultMinQueryLen   = 2
	DefaultShortQueryMax = 3
	DefaultResultLimit   = 50
	DefaultCacheTTL      = 5 * time.Minute
)

// Tier labels used for logging and metrics.
const (
	tierShort    = "short"
	tierLong     = "long"
	tierFallback = "fallback"
)

// Options configures a Retriever.
type Options struct {
	MinQueryLen   int
	ShortQueryMax int
	ResultLimit   int
	CacheTTL      time.Duration
}

// DefaultOptions returns the production retrieval configuration.
func DefaultOptions() Options {
	return Options{
		MinQueryLen:   DefaultMinQueryLen,
		ShortQueryMax: DefaultShortQueryMax,
		ResultLimit:   DefaultResultLimit,
		CacheTTL:      DefaultCacheTTL,
	}
}

// Retriever chooses a retrieval tier per query, memoizes results in a TTL
// cache, and degrades to a substring fallback on store errors. Retrieval
// never returns an error to its caller; the worst outcome is an empty set.
type Retriever struct {
	store catalog.Store
	cache *cache.Cache[[]models.Medicine]
	opts  Options
}

// tierFunc is one retrieval strategy in the ordered fallback chain.
type tierFunc struct {
	name string
	run  func(ctx context.Context, query string) ([]models.Medicine, error)
}

// NewRetriever creates a Retriever. A nil cache disables memoization (every
// lookup goes to the store), which is also the degraded mode for cache
// unavailability.
func NewRetriever(store catalog.Store, queryCache *cache.Cache[[]models.Medicine], opts Options) *Retriever {
	if opts.MinQueryLen < 1 {
		opts.MinQueryLen = DefaultMinQueryLen
	}
	if opts.ShortQueryMax < opts.MinQueryLen {
		opts.ShortQueryMax = DefaultShortQueryMax
	}
	if opts.ResultLimit < 1 {
		opts.ResultLimit = DefaultResultLimit
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &Retriever{store: store, cache: queryCache, opts: opts}
}

// Normalize lowercases, trims, and strips diacritics from a query. Cache
// keys and all store lookups operate on the normalized form.
func Normalize(query string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, query)
	if err != nil {
		// Diacritic stripping is best-effort; the lowered form still works.
		return query
	}
	return folded
}

// Search retrieves catalog records for a query. Queries below the minimum
// length return an empty result without touching the store.
func (r *Retriever) Search(ctx context.Context, query string) []models.Medicine {
	normalized := Normalize(query)
	if len([]rune(normalized)) < r.opts.MinQueryLen {
		return nil
	}

	if r.cache != nil {
		if cached, ok := r.cache.Get(normalized); ok {
			metrics.IncCacheHit()
			return cached
		}
		metrics.IncCacheMiss()
	}

	results := r.retrieve(ctx, normalized)

	// Empty results are cached too: repeated misses are as expensive as hits.
	if r.cache != nil {
		r.cache.SetWithTTL(normalized, results, r.opts.CacheTTL)
		r.cache.Sweep()
	}
	return results
}

// retrieve runs the ordered strategy chain: the tier chosen by query length,
// then the plain substring fallback. Each strategy only runs if the previous
// one failed.
func (r *Retriever) retrieve(ctx context.Context, normalized string) []models.Medicine {
	chain := []tierFunc{
		r.tierForQuery(normalized),
		{name: tierFallback, run: r.substringTier},
	}

	for _, tier := range chain {
		results, err := tier.run(ctx, normalized)
		if err != nil {
			log.Printf("[WARN] %s retrieval failed for %q: %v", tier.name, normalized, err)
			metrics.IncSearchFailed(tier.name)
			continue
		}
		metrics.IncSearch(tier.name)
		if len(results) > r.opts.ResultLimit {
			results = results[:r.opts.ResultLimit]
		}
		return results
	}
	return nil
}

func (r *Retriever) tierForQuery(normalized string) tierFunc {
	if len([]rune(normalized)) <= r.opts.ShortQueryMax {
		return tierFunc{name: tierShort, run: r.shortTier}
	}
	return tierFunc{name: tierLong, run: r.longTier}
}

// shortTier handles 2-3 character queries with tolerant token retrieval,
// ordered by field similarity. Short strings are ambiguous, so this tier
// favors recall over precision.
func (r *Retriever) shortTier(ctx context.Context, query string) ([]models.Medicine, error) {
	results, err := r.store.SearchByToken(ctx, query, r.opts.ResultLimit)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return fieldSimilarity(query, &results[i]) > fieldSimilarity(query, &results[j])
	})
	return results, nil
}

// longTier handles queries of 4+ characters: ranked full-text retrieval
// united with a substring pass so prefix-only matches are still found, then
// ordered by the deterministic tie-break buckets.
func (r *Retriever) longTier(ctx context.Context, query string) ([]models.Medicine, error) {
	scored, err := r.store.SearchFullText(ctx, query, r.opts.ResultLimit)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		medicine models.Medicine
		score    float64
		fullText bool
	}

	byID := make(map[string]int, len(scored))
	combined := make([]ranked, 0, len(scored))
	for _, sm := range scored {
		byID[sm.Medicine.ID] = len(combined)
		combined = append(combined, ranked{medicine: sm.Medicine, score: sm.Score, fullText: true})
	}

	// The substring pass is best-effort within this tier; the full-text
	// results alone are a valid tier outcome.
	substr, err := r.store.SearchSubstring(ctx, query, r.opts.ResultLimit)
	if err != nil {
		log.Printf("[WARN] substring union failed for %q: %v", query, err)
	} else {
		for _, m := range substr {
			if _, ok := byID[m.ID]; ok {
				continue
			}
			byID[m.ID] = len(combined)
			combined = append(combined, ranked{medicine: m})
		}
	}

	sort.SliceStable(combined, func(i, j int) bool {
		bi := tieBreakBucket(query, &combined[i].medicine, combined[i].fullText)
		bj := tieBreakBucket(query, &combined[j].medicine, combined[j].fullText)
		if bi != bj {
			return bi < bj
		}
		return combined[i].score > combined[j].score
	})

	results := make([]models.Medicine, 0, len(combined))
	for _, c := range combined {
		results = append(results, c.medicine)
	}
	return results, nil
}

// substringTier is the guaranteed-available fallback.
func (r *Retriever) substringTier(ctx context.Context, query string) ([]models.Medicine, error) {
	return r.store.SearchSubstring(ctx, query, r.opts.ResultLimit)
}

// Tie-break buckets for long-query result ordering. Lower sorts first.
//
//	1 exact name, 2 exact brand, 3 name prefix, 4 brand prefix,
//	5 full-text match on name, 6 full-text match on brand, 7 everything else.
func tieBreakBucket(query string, m *models.Medicine, fullText bool) int {
	name := strings.ToLower(m.Name)
	brand := ""
	if m.BrandName != nil {
		brand = strings.ToLower(*m.BrandName)
	}

	switch {
	case name == query:
		return 1
	case brand != "" && brand == query:
		return 2
	case strings.HasPrefix(name, query):
		return 3
	case brand != "" && strings.HasPrefix(brand, query):
		return 4
	case fullText && tokensMatch(name, query):
		return 5
	case fullText && tokensMatch(brand, query):
		return 6
	default:
		return 7
	}
}

// tokensMatch reports whether every query token matches some field token by
// equality or prefix. Both inputs must already be lowercased.
func tokensMatch(field, query string) bool {
	if field == "" {
		return false
	}
	fieldTokens := strings.Fields(field)
	for _, qt := range strings.Fields(query) {
		found := false
		for _, ft := range fieldTokens {
			if strings.HasPrefix(ft, qt) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func fieldSimilarity(query string, m *models.Medicine) float64 {
	score := similarity.Similarity(query, m.Name)
	if m.BrandName != nil {
		if b := similarity.Similarity(query, *m.BrandName); b > score {
			score = b
		}
	}
	return score
}

// file: internal/metrics/metrics.go
// version: 1.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	searchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rxscribe",
		Name:      "searches_total",
		Help:      "Total number of catalog searches by retrieval tier",
	}, []string{"tier"})
	searchFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rxscribe",
		Name:      "searches_failed_total",
		Help:      "Total number of failed retrievals by tier (before fallback)",
	}, []string{"tier"})
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rxscribe",
		Name:      "query_cache_hits_total",
		Help:      "Total number of query cache hits",
	})
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rxscribe",
		Name:      "query_cache_misses_total",
		Help:      "Total number of query cache misses",
	})
	recognitionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rxscribe",
		Name:      "recognition_duration_seconds",
		Help:      "Histogram of handwriting recognition durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10),
	})
	reconcileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rxscribe",
		Name:      "reconcile_duration_seconds",
		Help:      "Histogram of match reconciliation durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.005, 1.6, 10),
	})

	medicinesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rxscribe",
		Name:      "medicines_total",
		Help:      "Current total number of medicines in the catalog",
	})
	memoryAllocGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rxscribe",
		Name:      "process_memory_alloc_bytes",
		Help:      "Current process memory allocation (runtime.Alloc)",
	})
	goroutinesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rxscribe",
		Name:      "process_goroutines",
		Help:      "Number of currently running goroutines",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(searchTotal, searchFailed, cacheHits, cacheMisses,
			recognitionDuration, reconcileDuration,
			medicinesGauge, memoryAllocGauge, goroutinesGauge)
	})
}

// Search lifecycle helpers
func IncSearch(tier string)       { searchTotal.WithLabelValues(tier).Inc() }
func IncSearchFailed(tier string) { searchFailed.WithLabelValues(tier).Inc() }
func IncCacheHit()                { cacheHits.Inc() }
func IncCacheMiss()               { cacheMisses.Inc() }
func ObserveRecognitionDuration(d time.Duration) {
	recognitionDuration.Observe(d.Seconds())
}
func ObserveReconcileDuration(d time.Duration) {
	reconcileDuration.Observe(d.Seconds())
}

// Gauges
func SetMedicines(n int)      { medicinesGauge.Set(float64(n)) }
func SetMemoryAlloc(b uint64) { memoryAllocGauge.Set(float64(b)) }
func SetGoroutines(n int)     { goroutinesGauge.Set(float64(n)) }

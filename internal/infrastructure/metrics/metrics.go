// Package metrics exposes Prometheus collectors for the scraping pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes
const (
	OutcomeOK           = "ok"
	OutcomeNetworkError = "network_error"
	OutcomeHTTPError    = "http_error"
)

var (
	sourceFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecosnap",
		Name:      "source_fetch_total",
		Help:      "Source page fetches by source and outcome.",
	}, []string{"source", "outcome"})

	sourceFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ecosnap",
		Name:      "source_fetch_duration_seconds",
		Help:      "Source page fetch latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	sourceFragments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecosnap",
		Name:      "source_fragments_total",
		Help:      "Fragments extracted by source and attribute class.",
	}, []string{"source", "class"})

	scrapeResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecosnap",
		Name:      "scrape_results_total",
		Help:      "Scrape runs by result (ingredients, empty, aborted).",
	}, []string{"result"})

	fallbackResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecosnap",
		Name:      "fallback_total",
		Help:      "Generative fallback invocations by result.",
	}, []string{"result"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecosnap",
		Name:      "cache_lookups_total",
		Help:      "Attribute cache lookups by result (hit, miss).",
	}, []string{"result"})

	cacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ecosnap",
		Name:      "cache_entries",
		Help:      "Entries currently held by the attribute cache.",
	})
)

// Cache lookup results
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// ObserveFetch records one source fetch
func ObserveFetch(source, outcome string, elapsed time.Duration) {
	sourceFetches.WithLabelValues(source, outcome).Inc()
	sourceFetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// AddFragments records how many fragments of a class a source produced
func AddFragments(source, class string, n int) {
	if n > 0 {
		sourceFragments.WithLabelValues(source, class).Add(float64(n))
	}
}

// ObserveScrape records the outcome of one orchestrator run
func ObserveScrape(result string) {
	scrapeResults.WithLabelValues(result).Inc()
}

// ObserveFallback records the outcome of one fallback invocation
func ObserveFallback(result string) {
	fallbackResults.WithLabelValues(result).Inc()
}

// ObserveCacheLookup records one cache read
func ObserveCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

// SetCacheEntries reports the current cache size
func SetCacheEntries(n int) {
	cacheEntries.Set(float64(n))
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream, cache, discovery and build counters, partitioned by provider or chain.

var (
	// Fetcher
	FetcherRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweeper",
		Subsystem: "fetcher",
		Name:      "requests_total",
		Help:      "Upstream request attempts by outcome",
	}, []string{"provider", "outcome"})

	FetcherLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sweeper",
		Subsystem: "fetcher",
		Name:      "request_duration_seconds",
		Help:      "Duration of a full credential-rotating fetch",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"provider"})

	// Caches
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweeper",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups by cache name and result",
	}, []string{"cache", "result"})

	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweeper",
		Subsystem: "cache",
		Name:      "invalidations_total",
		Help:      "Global cache version bumps",
	}, []string{"cache"})

	StoredSnapshots = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sweeper",
		Subsystem: "cache",
		Name:      "stored_snapshots",
		Help:      "Balance snapshots stored after the last prune",
	})

	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sweeper",
		Subsystem: "cache",
		Name:      "evicted_snapshots_total",
		Help:      "Balance snapshots evicted after storage exhaustion",
	})

	// Registry
	RegistryRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweeper",
		Subsystem: "registry",
		Name:      "refreshes_total",
		Help:      "Verified token list refreshes by outcome",
	}, []string{"chain", "outcome"})

	// Discovery
	DiscoveryRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweeper",
		Subsystem: "discovery",
		Name:      "runs_total",
		Help:      "Token discovery runs by source",
	}, []string{"chain", "source"})

	DiscoveryFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweeper",
		Subsystem: "discovery",
		Name:      "filtered_tokens_total",
		Help:      "Tokens dropped by the discovery filter, by reason",
	}, []string{"chain", "reason"})

	// Builder
	BuildPrechecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweeper",
		Subsystem: "builder",
		Name:      "prechecks_total",
		Help:      "Transfer simulations by result",
	}, []string{"chain", "result"})

	BuildBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sweeper",
		Subsystem: "builder",
		Name:      "batch_calls",
		Help:      "Number of calls in built batches",
		Buckets:   prometheus.LinearBuckets(1, 1, 10),
	}, []string{"chain"})

	// Submission
	BatchesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweeper",
		Subsystem: "submission",
		Name:      "batches_published_total",
		Help:      "Batches handed off to the submitter, by outcome",
	}, []string{"chain", "outcome"})
)

// Handler returns the HTTP handler serving the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

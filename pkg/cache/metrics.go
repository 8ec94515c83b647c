package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks fresh cache hits.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "menu_cache_hits_total",
			Help: "Total number of fresh cache hits",
		},
	)

	// CacheMisses tracks cache misses (absent or expired on Get).
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "menu_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheStaleHits tracks expired entries served via GetStale.
	CacheStaleHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "menu_cache_stale_hits_total",
			Help: "Total number of expired cache entries served as fallback",
		},
	)

	// CacheErrors tracks storage operation errors by operation.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_cache_errors_total",
			Help: "Total number of cache storage errors",
		},
		[]string{"operation"}, // "get", "set", "clear", "sweep", "scan"
	)
)

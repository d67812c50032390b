package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks page cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datatable_cache_hits_total",
			Help: "Total number of page cache hits",
		},
	)

	// CacheMisses tracks page cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datatable_cache_misses_total",
			Help: "Total number of page cache misses",
		},
	)

	// CacheStoredBytes tracks bytes written to the store
	CacheStoredBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datatable_cache_stored_bytes_total",
			Help: "Total bytes written to the page cache",
		},
	)

	// CacheQuotaRejections tracks writes refused because the store was full
	CacheQuotaRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datatable_cache_quota_rejections_total",
			Help: "Total number of page cache writes refused for quota",
		},
	)

	// CacheInvalidations tracks explicit invalidations by scope
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datatable_cache_invalidations_total",
			Help: "Total number of page cache invalidations",
		},
		[]string{"scope"}, // "entry", "all"
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datatable_cache_errors_total",
			Help: "Total number of page cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "clear"
	)
)

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks page cache hits
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courtsync_cache_hits_total",
			Help: "Total number of page cache hits",
		},
	)

	// cacheMisses tracks page cache misses
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courtsync_cache_misses_total",
			Help: "Total number of page cache misses",
		},
	)

	// cacheErrors tracks cache operation errors
	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtsync_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "purge"
	)
)

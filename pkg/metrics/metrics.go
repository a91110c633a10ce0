// Package metrics provides the centralized Prometheus metrics registry for
// courtsync. All metrics are defined in their respective packages (client,
// paginate, cache, throttle) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by courtsync.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - courtsync_requests_total{outcome} (Counter): HTTP attempts by outcome (success, retryable, fatal)
//   - courtsync_request_duration_seconds (Histogram): Attempt duration
//   - courtsync_retries_total{reason} (Counter): Retry attempts by reason (status, network)
//   - courtsync_retry_backoff_seconds (Histogram): Backoff delay before each retry
//   - courtsync_retry_exhausted_total (Counter): Requests that exhausted the attempt budget
//
// Pagination Metrics (pkg/paginate):
//   - courtsync_pages_total (Counter): Pages fetched across all runs
//   - courtsync_records_total (Counter): Records yielded across all runs
//
// Cache Metrics (pkg/cache):
//   - courtsync_cache_hits_total (Counter): Page cache hits
//   - courtsync_cache_misses_total (Counter): Page cache misses
//   - courtsync_cache_errors_total{operation} (Counter): Cache operation errors
//
// Throttle Metrics (pkg/throttle):
//   - courtsync_throttle_cooloffs_total (Counter): Cool-off windows recorded after 429 responses
//   - courtsync_throttle_waits_total (Counter): Requests delayed by an active cool-off
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(courtsync_cache_hits_total[5m])) /
//   (sum(rate(courtsync_cache_hits_total[5m])) + sum(rate(courtsync_cache_misses_total[5m])))
//
//   # Retry Rate
//   rate(courtsync_retries_total[5m])
//
//   # Exhaustion Rate
//   rate(courtsync_retry_exhausted_total[5m])
//
//   # P95 Attempt Latency
//   histogram_quantile(0.95, rate(courtsync_request_duration_seconds_bucket[5m]))

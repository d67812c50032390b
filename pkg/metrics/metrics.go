// Package metrics exposes the Prometheus registry used by the data table
// client. Metrics are defined in their own packages (cache, client,
// viewer) via promauto; this package serves them and documents them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry all metrics register with.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back everything registered with Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - datatable_cache_hits_total (Counter): Page cache hits
//   - datatable_cache_misses_total (Counter): Page cache misses, corrupt entries included
//   - datatable_cache_stored_bytes_total (Counter): Bytes written to the page store
//   - datatable_cache_quota_rejections_total (Counter): Writes refused because the store is full
//   - datatable_cache_invalidations_total{scope} (Counter): Invalidations, scope "entry" or "all"
//   - datatable_cache_errors_total{operation} (Counter): Store errors by operation
//
// Fetch Metrics (pkg/client):
//   - datatable_requests_total{status} (Counter): Data API requests by HTTP status
//   - datatable_request_duration_seconds (Histogram): Data API request duration
//   - datatable_errors_total{class} (Counter): Fetch failures, class "network" or "malformed"
//   - datatable_fetches_total{source} (Counter): Pages served by source, "cache" or "network"
//
// Viewer Metrics (pkg/viewer):
//   - datatable_viewer_loads_total{result} (Counter): Loads by result, "ok", "error" or "stale"
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(datatable_cache_hits_total[5m])) /
//   (sum(rate(datatable_cache_hits_total[5m])) + sum(rate(datatable_cache_misses_total[5m])))
//
//   # Invalid Data Rate
//   rate(datatable_errors_total{class="malformed"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(datatable_request_duration_seconds_bucket[5m]))
//
//   # Out-of-order responses discarded
//   rate(datatable_viewer_loads_total{result="stale"}[5m])

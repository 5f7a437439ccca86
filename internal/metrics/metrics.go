// Package metrics exposes Prometheus instrumentation for the explorer.
package metrics

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eth_block_explorer/internal/core/selection"
)

const namespace = "blockexplorer"

// Outcome label values.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	resultHit      = "hit"
	resultMiss     = "miss"
)

// Recorder implements selection.Metrics and the cache and HTTP instrumentation of the explorer.
type Recorder struct {
	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	staleDiscarded *prometheus.CounterVec
	cacheRequests  *prometheus.CounterVec
	subscribers    prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// Compile-time check to ensure Recorder implements selection.Metrics
var _ selection.Metrics = (*Recorder)(nil)

// NewRecorder registers all collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		fetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Number of provider calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Latency of provider calls by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		staleDiscarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_discarded_total",
			Help:      "Number of provider results dropped because a newer request superseded them.",
		}, []string{"operation"}),
		cacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Number of cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_subscribers",
			Help:      "Number of active view state subscribers.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Tracks the number of HTTP requests.",
		}, []string{"method", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Tracks the latencies for HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}
}

// ObserveFetch records the outcome and latency of one provider call.
func (r *Recorder) ObserveFetch(operation string, duration time.Duration, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	r.fetchTotal.WithLabelValues(operation, outcome).Inc()
	r.fetchDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// StaleResultDiscarded counts a result dropped for a superseded request.
func (r *Recorder) StaleResultDiscarded(operation string) {
	r.staleDiscarded.WithLabelValues(operation).Inc()
}

// CacheHit counts a lookup served from cache.
func (r *Recorder) CacheHit(cache string) {
	r.cacheRequests.WithLabelValues(cache, resultHit).Inc()
}

// CacheMiss counts a lookup that went to the node.
func (r *Recorder) CacheMiss(cache string) {
	r.cacheRequests.WithLabelValues(cache, resultMiss).Inc()
}

// SetSubscribers reports the current number of state subscribers.
func (r *Recorder) SetSubscribers(n int) {
	r.subscribers.Set(float64(n))
}

// Middleware instruments every routed request.
func (r *Recorder) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerCounter(
			r.httpRequests,
			promhttp.InstrumentHandlerDuration(r.httpDuration, next),
		)
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

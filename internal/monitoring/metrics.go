// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipescrapexter"

// Metrics holds the Prometheus collectors for imports and the HTTP API.
// It satisfies scraper.MetricsRecorder.
type Metrics struct {
	registry prometheus.Gatherer

	fetchesTotal       *prometheus.CounterVec
	fetchDuration      *prometheus.HistogramVec
	extractionsTotal   *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	failuresTotal      *prometheus.CounterVec
	cacheLookups       *prometheus.CounterVec
	recordsWritten     *prometheus.CounterVec
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a fresh registry that also carries
// the Go and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewMetricsWithRegistry(registry, registry)
}

// NewMetricsWithRegistry registers the collectors on reg
func NewMetricsWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	buckets := []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30}

	return &Metrics{
		registry: gatherer,
		fetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Page fetches by fetcher and HTTP status code",
		}, []string{"fetcher", "status_code"}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching pages",
			Buckets:   buckets,
		}, []string{"fetcher"}),
		extractionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Successful extractions by winning strategy",
		}, []string{"strategy"}),
		extractionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent parsing and normalizing a page",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"strategy"}),
		failuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_failures_total",
			Help:      "Failed imports by pipeline stage and failure kind",
		}, []string{"stage", "kind"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Import cache lookups by result",
		}, []string{"result"}),
		recordsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Recipes written by output format or store",
		}, []string{"target"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route, method and status code",
		}, []string{"route", "method", "status_code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency",
			Buckets:   buckets,
		}, []string{"route"}),
	}
}

// RecordFetch counts a fetch. statusCode is 0 when no response arrived.
func (m *Metrics) RecordFetch(fetcher string, statusCode int, d time.Duration) {
	m.fetchesTotal.WithLabelValues(fetcher, strconv.Itoa(statusCode)).Inc()
	m.fetchDuration.WithLabelValues(fetcher).Observe(d.Seconds())
}

func (m *Metrics) RecordExtraction(strategy string, d time.Duration) {
	m.extractionsTotal.WithLabelValues(strategy).Inc()
	m.extractionDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func (m *Metrics) RecordFailure(stage, kind string) {
	m.failuresTotal.WithLabelValues(stage, kind).Inc()
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordWritten counts recipes handed to an output writer or store
func (m *Metrics) RecordWritten(target string, count int) {
	m.recordsWritten.WithLabelValues(target).Add(float64(count))
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request count and latency under route
func (m *Metrics) InstrumentHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

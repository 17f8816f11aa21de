// Package metrics provides Prometheus metrics for the HR dashboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the dashboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Prediction Metrics - the attrition scoring flow
	predictions       *prometheus.CounterVec
	predictionErrors  *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	modelLoads        *prometheus.CounterVec
	modelLoadLatency  prometheus.Histogram

	// Dataset Metrics - one-time load of the flat files
	datasetLoadDuration prometheus.Histogram
	datasetLoads        prometheus.Counter
	datasetRows         *prometheus.GaugeVec

	// Chart Metrics - server-side rendering and its cache
	chartRenders       *prometheus.CounterVec
	chartRenderLatency prometheus.Histogram
	chartCacheHits     prometheus.Counter
	chartCacheMisses   prometheus.Counter
	chartCacheEntries  prometheus.Gauge

	// Prerender Metrics - background chart warming
	prerenderJobs      *prometheus.CounterVec
	prerenderQueueSize prometheus.Gauge
	prerenderWorkers   prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hrdash",
		subsystem:        "dashboard",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Total number of attrition predictions by risk label"),
		[]string{"label"},
	)
	m.predictionErrors = auto.NewCounterVec(
		m.counterOpts("prediction_errors_total", "Total number of failed predictions by error kind"),
		[]string{"kind"},
	)
	m.predictionLatency = auto.NewHistogram(
		m.histogramOpts("prediction_latency_milliseconds", "Latency of one assemble+classify call in milliseconds"),
	)
	m.modelLoads = auto.NewCounterVec(
		m.counterOpts("model_loads_total", "Model artifact load attempts by outcome"),
		[]string{"outcome"},
	)
	m.modelLoadLatency = auto.NewHistogram(
		m.histogramOpts("model_load_latency_milliseconds", "Model artifact load latency in milliseconds"),
	)

	m.datasetLoadDuration = auto.NewHistogram(
		m.histogramOpts("dataset_load_duration_milliseconds", "Duration of the one-time dataset load in milliseconds"),
	)
	m.datasetLoads = auto.NewCounter(
		m.counterOpts("dataset_loads_total", "Number of times the flat input files were read"),
	)
	m.datasetRows = auto.NewGaugeVec(
		m.gaugeOpts("dataset_rows", "Rows loaded per input table"),
		[]string{"table"},
	)

	m.chartRenders = auto.NewCounterVec(
		m.counterOpts("chart_renders_total", "Charts rendered to PNG by chart id"),
		[]string{"chart"},
	)
	m.chartRenderLatency = auto.NewHistogram(
		m.histogramOpts("chart_render_latency_milliseconds", "Chart render latency in milliseconds"),
	)
	m.chartCacheHits = auto.NewCounter(
		m.counterOpts("chart_cache_hits_total", "Chart cache hits"),
	)
	m.chartCacheMisses = auto.NewCounter(
		m.counterOpts("chart_cache_misses_total", "Chart cache misses"),
	)
	m.chartCacheEntries = auto.NewGauge(
		m.gaugeOpts("chart_cache_entries", "Rendered charts currently cached"),
	)

	m.prerenderJobs = auto.NewCounterVec(
		m.counterOpts("prerender_jobs_total", "Chart warming jobs by outcome"),
		[]string{"outcome"},
	)
	m.prerenderQueueSize = auto.NewGauge(
		m.gaugeOpts("prerender_queue_size", "Chart warming jobs waiting in the queue"),
	)
	m.prerenderWorkers = auto.NewGauge(
		m.gaugeOpts("prerender_workers_active", "Chart warming workers currently running"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	gcOpts := m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds")
	gcOpts.Buckets = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}
	m.systemGCPauseTime = auto.NewHistogram(gcOpts)
}

// Prediction Metrics Functions.

// RecordPrediction counts a successful prediction under its risk label.
func RecordPrediction(label string) {
	globalManager.predictions.WithLabelValues(label).Inc()
}

// RecordPredictionError counts a failed prediction by error kind.
func RecordPredictionError(kind string) {
	globalManager.predictionErrors.WithLabelValues(kind).Inc()
}

// RecordPredictionLatency records prediction latency in milliseconds.
func RecordPredictionLatency(latencyMs float64) {
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordModelLoad counts a model load attempt; outcome is "ok" or "error".
func RecordModelLoad(outcome string, latencyMs float64) {
	globalManager.modelLoads.WithLabelValues(outcome).Inc()
	globalManager.modelLoadLatency.Observe(latencyMs)
}

// Dataset Metrics Functions.

// RecordDatasetLoad records one read of the input files.
func RecordDatasetLoad(durationMs float64) {
	globalManager.datasetLoads.Inc()
	globalManager.datasetLoadDuration.Observe(durationMs)
}

// UpdateDatasetRows sets the row count for a loaded table.
func UpdateDatasetRows(table string, rows int) {
	globalManager.datasetRows.WithLabelValues(table).Set(float64(rows))
}

// Chart Metrics Functions.

// RecordChartRender records a chart render and its latency.
func RecordChartRender(chart string, latencyMs float64) {
	globalManager.chartRenders.WithLabelValues(chart).Inc()
	globalManager.chartRenderLatency.Observe(latencyMs)
}

// RecordChartCacheHit increments the chart cache hit counter.
func RecordChartCacheHit() {
	globalManager.chartCacheHits.Inc()
}

// RecordChartCacheMiss increments the chart cache miss counter.
func RecordChartCacheMiss() {
	globalManager.chartCacheMisses.Inc()
}

// UpdateChartCacheEntries sets the number of cached charts.
func UpdateChartCacheEntries(n int) {
	globalManager.chartCacheEntries.Set(float64(n))
}

// Prerender Metrics Functions.

// RecordPrerenderJob counts a finished warming job; outcome is "ok", "error" or "dropped".
func RecordPrerenderJob(outcome string) {
	globalManager.prerenderJobs.WithLabelValues(outcome).Inc()
}

// UpdatePrerenderQueueSize sets the number of queued warming jobs.
func UpdatePrerenderQueueSize(n int) {
	globalManager.prerenderQueueSize.Set(float64(n))
}

// UpdatePrerenderWorkers sets the number of running warming workers.
func UpdatePrerenderWorkers(n int) {
	globalManager.prerenderWorkers.Set(float64(n))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package metrics provides Prometheus metrics for the regatta scoring service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Buckets tuned for sub-millisecond scoring of small fleets.
var scoringBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50} //nolint:gochecknoglobals // constant bucket layout

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Scoring
	scoreboardsComputed prometheus.Counter
	scoringLatency      prometheus.Histogram
	absencePenalties    prometheus.Counter
	discardsApplied     prometheus.Counter
	uncompletedRaces    prometheus.Counter

	// Domain size
	skippers prometheus.Gauge
	regattas prometheus.Gauge
	races    prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	duplicateRequests   prometheus.Counter

	// Repository
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Recompute queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            *prometheus.CounterVec

	// Live feed
	liveClients   prometheus.Gauge
	livePublished prometheus.Counter
	liveDropped   prometheus.Counter

	// Errors by component
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // dedicated registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "regatta",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// Enabled reports whether collection is on.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often background gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: buckets, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.scoreboardsComputed = m.counter("scoreboards_computed_total", "Total number of scoreboards computed")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Latency of a single scoreboard computation in milliseconds", scoringBuckets)
	m.absencePenalties = m.counter("absence_penalties_total", "Total DNS/DNF/no-show penalties assigned across computations")
	m.discardsApplied = m.counter("discards_applied_total", "Total race results discarded across computations")
	m.uncompletedRaces = m.counter("uncompleted_races_total", "Total races seen without any finishing order")

	m.skippers = m.gauge("skippers", "Number of skippers on the roster")
	m.regattas = m.gauge("regattas", "Number of regattas in the store")
	m.races = m.gauge("races", "Number of races across all regattas")

	m.httpRequests = promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http", Name: "requests_total",
		Help: "Total number of HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http", Name: "request_duration_milliseconds",
		Help: "HTTP request duration in milliseconds", Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http", Name: "errors_total",
		Help: "HTTP errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})
	m.duplicateRequests = m.counter("duplicate_requests_total", "Mutation requests rejected because their idempotency key was replayed")

	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Store write latency in milliseconds", m.histogramBuckets)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Store read latency in milliseconds", m.histogramBuckets)

	m.queueSize = m.gauge("queue_size", "Pending scoreboard recompute notifications")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the recompute queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Recompute notifications enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Recompute notifications dequeued")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Recompute notifications rejected", "reason")

	m.workerCount = m.gauge("worker_count", "Number of recompute workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time to load, score and publish one regatta", m.histogramBuckets)
	m.workerErrors = m.counterVec("worker_errors_total", "Recompute worker failures", "stage")

	m.liveClients = m.gauge("live_clients", "Connected live scoreboard websocket clients")
	m.livePublished = m.counter("live_published_total", "Scoreboards published to live rooms")
	m.liveDropped = m.counter("live_dropped_total", "Live messages dropped for slow clients")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// Scoring.

// RecordScoreboard records one scoreboard computation.
func RecordScoreboard(latencyMs float64, penalties, discards, uncompleted int) {
	globalManager.scoreboardsComputed.Inc()
	globalManager.scoringLatency.Observe(latencyMs)
	globalManager.absencePenalties.Add(float64(penalties))
	globalManager.discardsApplied.Add(float64(discards))
	globalManager.uncompletedRaces.Add(float64(uncompleted))
}

// Domain size.

// UpdateDomainSize sets the skipper, regatta and race gauges.
func UpdateDomainSize(skippers, regattas, races int) {
	globalManager.skippers.Set(float64(skippers))
	globalManager.regattas.Set(float64(regattas))
	globalManager.races.Set(float64(races))
}

// HTTP.

// RecordHTTPRequest records an HTTP request with its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordDuplicateRequest counts a replayed idempotency key.
func RecordDuplicateRequest() {
	globalManager.duplicateRequests.Inc()
}

// Repository.

// RecordRepositoryUpdateLatency records a store write.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records a store read.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// Queue.

// UpdateQueueSize sets the pending notification count.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted notification.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a consumed notification.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected notification.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// Workers.

// UpdateWorkerCount sets the worker gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records one recompute.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed recompute stage.
func RecordWorkerError(stage string) {
	globalManager.workerErrors.WithLabelValues(stage).Inc()
}

// Live feed.

// UpdateLiveClients sets the connected websocket client gauge.
func UpdateLiveClients(count int) {
	globalManager.liveClients.Set(float64(count))
}

// RecordLivePublish counts a scoreboard broadcast.
func RecordLivePublish() {
	globalManager.livePublished.Inc()
}

// RecordLiveDrop counts a message dropped for a slow client.
func RecordLiveDrop() {
	globalManager.liveDropped.Inc()
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry that holds every service metric.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

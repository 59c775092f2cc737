// Package metrics provides Prometheus metrics for the comfortloop service.
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

// Manager manages all Prometheus metrics for the comfortloop service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Classification path
	estimatesClassified *prometheus.CounterVec
	estimatesDuplicate  prometheus.Counter
	predictionErrors    prometheus.Counter

	// Controller cycles
	cyclesTotal      *prometheus.CounterVec
	actionsTotal     *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	lastAdjustment   prometheus.Gauge
	currentSetpoint  prometheus.Gauge
	comfortRangeMin  prometheus.Gauge
	comfortRangeMax  prometheus.Gauge
	setpointCommands prometheus.Counter

	// Collaborator health
	deviceErrors *prometheus.CounterVec
	storeErrors  *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec

	// Tick queue
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	ticksDropped  prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
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
		namespace:        "comfortloop",
		subsystem:        "controller",
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

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.estimatesClassified = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("estimates_classified_total"),
		Help: "Skin-temperature estimates classified, by comfort label",
	}, []string{"classification"})

	m.estimatesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("estimates_duplicate_total"),
		Help: "Health samples dropped because their sample id was already seen",
	})

	m.predictionErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("prediction_errors_total"),
		Help: "Skin-temperature predictions that failed",
	})

	m.cyclesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("cycles_total"),
		Help: "Adjustment cycles by outcome (debounced, no_range, insufficient_history, device_unavailable, decided)",
	}, []string{"outcome"})

	m.actionsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("actions_total"),
		Help: "Actions recorded by decided cycles",
	}, []string{"action"})

	m.cycleDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("cycle_duration_seconds"),
		Help:    "Wall time of adjustment cycles that passed the debounce gate",
		Buckets: m.histogramBuckets,
	})

	m.lastAdjustment = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("last_adjustment_timestamp_seconds"),
		Help: "Unix time of the last decided cycle",
	})

	m.currentSetpoint = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("setpoint_celsius"),
		Help: "Device target temperature as last observed or commanded",
	})

	m.comfortRangeMin = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("comfort_range_min_celsius"),
		Help: "Lower bound of the configured comfort range",
	})

	m.comfortRangeMax = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("comfort_range_max_celsius"),
		Help: "Upper bound of the configured comfort range",
	})

	m.setpointCommands = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("setpoint_commands_total"),
		Help: "Setpoint commands accepted by the device",
	})

	m.deviceErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("device_errors_total"),
		Help: "Device failures by operation (read, set)",
	}, []string{"op"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("store_errors_total"),
		Help: "Persistence failures by operation",
	}, []string{"op"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("store_latency_milliseconds"),
		Help:    "Persistence call latency in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"op"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("tick_queue_size"),
		Help: "Pending scheduler ticks",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("tick_queue_capacity"),
		Help: "Capacity of the scheduler tick queue",
	})

	m.ticksDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("ticks_coalesced_total"),
		Help: "Scheduler ticks dropped because a tick was already pending",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http", ConstLabels: labels,
		Name: m.name("requests_total"),
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http", ConstLabels: labels,
		Name:    m.name("request_duration_milliseconds"),
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http", ConstLabels: labels,
		Name: m.name("errors_total"),
		Help: "HTTP responses with status >= 400 by endpoint and error type",
	}, []string{"endpoint", "method", "error_type"})
}

// RecordEstimateClassified counts one classified estimate.
func RecordEstimateClassified(classification string) {
	if globalManager.enabled {
		globalManager.estimatesClassified.WithLabelValues(classification).Inc()
	}
}

// RecordEstimateDuplicate counts a deduplicated health sample.
func RecordEstimateDuplicate() {
	if globalManager.enabled {
		globalManager.estimatesDuplicate.Inc()
	}
}

// RecordPredictionError counts a failed prediction.
func RecordPredictionError() {
	if globalManager.enabled {
		globalManager.predictionErrors.Inc()
	}
}

// RecordCycle counts a cycle outcome.
func RecordCycle(outcome string) {
	if globalManager.enabled {
		globalManager.cyclesTotal.WithLabelValues(outcome).Inc()
	}
}

// RecordAction counts an action taken by a decided cycle.
func RecordAction(action string) {
	if globalManager.enabled {
		globalManager.actionsTotal.WithLabelValues(action).Inc()
	}
}

// RecordCycleDuration observes the wall time of a cycle.
func RecordCycleDuration(d time.Duration) {
	if globalManager.enabled {
		globalManager.cycleDuration.Observe(d.Seconds())
	}
}

// UpdateLastAdjustment stores the time of the last decided cycle.
func UpdateLastAdjustment(t time.Time) {
	if globalManager.enabled {
		globalManager.lastAdjustment.Set(float64(t.Unix()))
	}
}

// UpdateSetpoint stores the latest known device setpoint.
func UpdateSetpoint(celsius float64) {
	if globalManager.enabled {
		globalManager.currentSetpoint.Set(celsius)
	}
}

// UpdateComfortRange stores the configured comfort bounds.
func UpdateComfortRange(minTemp, maxTemp float64) {
	if globalManager.enabled {
		globalManager.comfortRangeMin.Set(minTemp)
		globalManager.comfortRangeMax.Set(maxTemp)
	}
}

// RecordSetpointCommand counts a setpoint command accepted by the device.
func RecordSetpointCommand() {
	if globalManager.enabled {
		globalManager.setpointCommands.Inc()
	}
}

// RecordDeviceError counts a device failure.
func RecordDeviceError(op string) {
	if globalManager.enabled {
		globalManager.deviceErrors.WithLabelValues(op).Inc()
	}
}

// RecordStoreError counts a persistence failure.
func RecordStoreError(op string) {
	if globalManager.enabled {
		globalManager.storeErrors.WithLabelValues(op).Inc()
	}
}

// RecordStoreLatency observes the latency of a persistence call.
func RecordStoreLatency(op string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
	}
}

// UpdateQueueSize updates the pending tick gauge.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity updates the tick queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordTickCoalesced counts a tick dropped while another was pending.
func RecordTickCoalesced() {
	if globalManager.enabled {
		globalManager.ticksDropped.Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByEndpoint records an error response for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RefreshInterval returns how often sampled gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

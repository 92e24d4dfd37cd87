// Package metrics provides Prometheus metrics for the atelier service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the atelier service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	payoutBuckets    []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Money
	commissionsCalculated  prometheus.Counter
	designerPayout         prometheus.Histogram
	reconciliationFailures prometheus.Counter

	// Progression
	styleCreditsAwarded   *prometheus.CounterVec
	styleCreditDuplicates prometheus.Counter
	styleboxesScored      *prometheus.CounterVec
	rankFallbacks         prometheus.Counter
	founderPurchases      *prometheus.CounterVec
	totalDesigners        prometheus.Gauge

	// Publication
	statusTransitions   *prometheus.CounterVec
	transitionsRejected *prometheus.CounterVec
	autoApprovals       prometheus.Counter
	autoApproveSweep    prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository
	repositoryLatency *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
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
		namespace:        "atelier",
		subsystem:        "progression",
		histogramBuckets: prometheus.DefBuckets,
		payoutBuckets:    []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
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
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.commissionsCalculated = auto.NewCounter(m.counterOpts(
		"commissions_calculated_total", "Total number of sales whose commission was calculated and recorded"))
	m.designerPayout = auto.NewHistogram(m.histogramOpts(
		"designer_payout", "Designer payout per recorded sale in currency units", m.payoutBuckets))
	m.reconciliationFailures = auto.NewCounter(m.counterOpts(
		"reconciliation_failures_total", "Sales whose payout was computed but could not be recorded"))

	m.styleCreditsAwarded = auto.NewCounterVec(m.counterOpts(
		"style_credits_awarded_total", "Style credits added to designer ledgers by source"),
		[]string{"source"})
	m.styleCreditDuplicates = auto.NewCounter(m.counterOpts(
		"style_credit_duplicates_total", "Ledger entries ignored because their id was already recorded"))
	m.styleboxesScored = auto.NewCounterVec(m.counterOpts(
		"styleboxes_scored_total", "Graded stylebox submissions by difficulty"),
		[]string{"difficulty"})
	m.rankFallbacks = auto.NewCounter(m.counterOpts(
		"rank_fallback_total", "Stored rank identifiers that did not resolve and fell back to the lowest rank"))
	m.founderPurchases = auto.NewCounterVec(m.counterOpts(
		"founder_purchases_total", "Founder tier purchases by tier"),
		[]string{"tier"})
	m.totalDesigners = auto.NewGauge(m.gaugeOpts(
		"total_designers", "Number of designers with a progression record"))

	m.statusTransitions = auto.NewCounterVec(m.counterOpts(
		"status_transitions_total", "Applied publication status transitions"),
		[]string{"from", "to"})
	m.transitionsRejected = auto.NewCounterVec(m.counterOpts(
		"status_transitions_rejected_total", "Publication transitions refused by reason"),
		[]string{"reason"})
	m.autoApprovals = auto.NewCounter(m.counterOpts(
		"auto_approvals_total", "Projects approved after waiting out the review deadline"))
	m.autoApproveSweep = auto.NewHistogram(m.histogramOpts(
		"auto_approve_sweep_duration_milliseconds", "Duration of one auto-approve sweep in milliseconds", m.histogramBuckets))

	m.httpRequests = auto.NewCounterVec(m.counterOpts(
		"http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})

	m.repositoryLatency = auto.NewHistogramVec(m.histogramOpts(
		"repository_latency_milliseconds", "Repository operation latency in milliseconds", m.histogramBuckets),
		[]string{"operation"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts(
		"errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts(
		"errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts(
		"system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts(
		"system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordCommission counts a recorded sale and observes the designer's payout.
func RecordCommission(designerPayout float64) {
	globalManager.commissionsCalculated.Inc()
	globalManager.designerPayout.Observe(designerPayout)
}

// RecordReconciliationFailure counts a sale that could not be persisted.
func RecordReconciliationFailure() {
	globalManager.reconciliationFailures.Inc()
}

// RecordStyleCreditsAwarded adds amount to the awarded counter for source.
func RecordStyleCreditsAwarded(source string, amount float64) {
	if amount <= 0 {
		return
	}
	globalManager.styleCreditsAwarded.WithLabelValues(source).Add(amount)
}

// RecordStyleCreditDuplicate counts an ignored duplicate ledger entry.
func RecordStyleCreditDuplicate() {
	globalManager.styleCreditDuplicates.Inc()
}

// RecordStyleboxScored counts a graded submission.
func RecordStyleboxScored(difficulty string) {
	globalManager.styleboxesScored.WithLabelValues(difficulty).Inc()
}

// RecordRankFallback counts an unresolvable stored rank identifier.
func RecordRankFallback() {
	globalManager.rankFallbacks.Inc()
}

// RecordFounderPurchase counts a founder tier purchase.
func RecordFounderPurchase(tier string) {
	globalManager.founderPurchases.WithLabelValues(tier).Inc()
}

// UpdateTotalDesigners sets the designer count.
func UpdateTotalDesigners(count int) {
	globalManager.totalDesigners.Set(float64(count))
}

// RecordStatusTransition counts an applied publication transition.
func RecordStatusTransition(from, to string) {
	globalManager.statusTransitions.WithLabelValues(from, to).Inc()
}

// RecordTransitionRejected counts a refused transition; reason is illegal or stale.
func RecordTransitionRejected(reason string) {
	globalManager.transitionsRejected.WithLabelValues(reason).Inc()
}

// RecordAutoApproval counts one automatic approval.
func RecordAutoApproval() {
	globalManager.autoApprovals.Inc()
}

// RecordAutoApproveSweep records the duration of one sweep.
func RecordAutoApproveSweep(durationMs float64) {
	globalManager.autoApproveSweep.Observe(durationMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRepositoryLatency records the latency of one repository operation.
func RecordRepositoryLatency(operation string, latencyMs float64) {
	globalManager.repositoryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

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

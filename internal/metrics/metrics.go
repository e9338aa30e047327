package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "hse_service"
)

// Layout write outcomes.
const (
	LayoutWriteWritten   = "written"
	LayoutWriteUnchanged = "skipped_unchanged"
	LayoutWriteFailed    = "failed"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Layout metrics
	LayoutWritesTotal   *prometheus.CounterVec
	LayoutSessionsLive  prometheus.Gauge
	LayoutReconciles    prometheus.Counter
	MentionsSynthesized prometheus.Counter

	// Billing metrics
	WebhookEventsTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// New creates and registers all metrics with the default registry.
func New(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)

	if logger == nil {
		logger = zap.NewNop()
	}

	gatherer := prometheus.DefaultGatherer
	if g, ok := registerer.(prometheus.Gatherer); ok {
		gatherer = g
	}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),
		LayoutWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "layout_writes_total",
				Help:      "Layout persistence attempts by outcome",
			},
			[]string{"result"},
		),
		LayoutSessionsLive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "layout_sessions_live",
				Help:      "Number of dashboard layout sessions held in memory",
			},
		),
		LayoutReconciles: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "layout_reconciles_total",
				Help:      "Number of widget-set reconciliations that changed a layout",
			},
		),
		MentionsSynthesized: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mention_notifications_synthesized_total",
				Help:      "Synthetic task-mention notifications added to feeds",
			},
		),
		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "billing_webhook_events_total",
				Help:      "Billing webhook events by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		gatherer: gatherer,
		logger:   logger,
	}
}

// RecordHTTPRequest records one served request. endpoint must be the route pattern.
func (m *Metrics) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// ObserveLayoutWrite records the outcome of a layout persistence attempt.
func (m *Metrics) ObserveLayoutWrite(result string) {
	if m == nil {
		return
	}
	m.LayoutWritesTotal.WithLabelValues(result).Inc()
}

// ObserveReconcile counts a reconciliation that changed a document.
func (m *Metrics) ObserveReconcile() {
	if m == nil {
		return
	}
	m.LayoutReconciles.Inc()
}

func (m *Metrics) SetLayoutSessions(n int) {
	if m == nil {
		return
	}
	m.LayoutSessionsLive.Set(float64(n))
}

func (m *Metrics) RecordMentionsSynthesized(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.MentionsSynthesized.Add(float64(n))
}

func (m *Metrics) RecordWebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// Gatherer returns the registry the metrics were registered with.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// ShouldSkipEndpoint reports whether a path is excluded from HTTP metrics.
func ShouldSkipEndpoint(path string) bool {
	return path == "/metrics" || path == "/health"
}

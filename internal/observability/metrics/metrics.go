package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics instruments inbound HTTP traffic.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// Metrics exposes application-level counters for the billing jobs.
type Metrics struct {
	sweepBlocked        prometheus.Counter
	reconcileOutcomes   *prometheus.CounterVec
	stockCorrections    prometheus.Counter
	temporaryUnlocks    *prometheus.CounterVec
	gateDecisions       *prometheus.CounterVec
	providerCallLatency *prometheus.HistogramVec
}

func NewHTTPMetrics(serviceName string) *HTTPMetrics {
	constLabels := prometheus.Labels{"service": normalizeService(serviceName)}

	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "Duration of HTTP requests in seconds",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status"},
		),
	}
	prometheus.MustRegister(m.requests, m.duration)
	return m
}

func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": normalizeService(serviceName)}

	m := &Metrics{
		sweepBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "balcao_sweep_blocked_total",
			Help:        "Tenants paused by the overdue sweep",
			ConstLabels: constLabels,
		}),
		reconcileOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "balcao_reconcile_outcomes_total",
			Help:        "Per-tenant reconciliation outcomes",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		stockCorrections: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "balcao_stock_corrections_total",
			Help:        "Products corrected by stock recalculation",
			ConstLabels: constLabels,
		}),
		temporaryUnlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "balcao_temporary_unlocks_total",
			Help:        "Temporary unlock attempts by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "balcao_gate_decisions_total",
			Help:        "Access gate decisions by kind",
			ConstLabels: constLabels,
		}, []string{"decision"}),
		providerCallLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "balcao_billing_provider_seconds",
			Help:        "Latency of billing provider calls",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"operation", "outcome"}),
	}
	prometheus.MustRegister(
		m.sweepBlocked,
		m.reconcileOutcomes,
		m.stockCorrections,
		m.temporaryUnlocks,
		m.gateDecisions,
		m.providerCallLatency,
	)
	return m
}

func (m *Metrics) AddSweepBlocked(n int) {
	if m == nil {
		return
	}
	m.sweepBlocked.Add(float64(n))
}

func (m *Metrics) IncReconcileOutcome(outcome string) {
	if m == nil {
		return
	}
	m.reconcileOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddStockCorrections(n int) {
	if m == nil {
		return
	}
	m.stockCorrections.Add(float64(n))
}

func (m *Metrics) IncTemporaryUnlock(result string) {
	if m == nil {
		return
	}
	m.temporaryUnlocks.WithLabelValues(result).Inc()
}

func (m *Metrics) IncGateDecision(decision string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObserveProviderCall(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.providerCallLatency.WithLabelValues(operation, outcome).Observe(elapsed.Seconds())
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requests.WithLabelValues(c.Request.Method, route, status).Inc()
		m.duration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

func normalizeService(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "balcao"
	}
	return name
}

package metrics

import (
	"sync"

	"github.com/arloliu/lessor/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metric registration is deferred until first use so constructing a
// collector never panics on duplicate registration; MustRegister fires at
// most once per collector instance.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	renewals         prometheus.Counter
	evictions        *prometheus.CounterVec
	activeLeases     prometheus.Gauge
	checkOutcomes    *prometheus.CounterVec
	scheduleFailures prometheus.Counter
	pendingChecks    prometheus.Gauge
	sweepDuration    prometheus.Histogram
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "lessor" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "lessor"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.renewals = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "renewals_total",
			Help:      "Total lease renewals received.",
		})

		p.evictions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "evictions_total",
			Help:      "Total evicted connections by reason (expired, no_heartbeat).",
		}, []string{"reason"})

		p.activeLeases = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      "active_leases",
			Help:      "Current number of connections with a renewal record.",
		})

		p.checkOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "check_outcomes_total",
			Help:      "Total fired expiry checks by outcome (expired, rearmed, superseded, missing).",
		}, []string{"outcome"})

		p.scheduleFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "schedule_failures_total",
			Help:      "Total expiry checks that could not be scheduled or were dropped before running.",
		})

		p.pendingChecks = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      "pending_checks",
			Help:      "Current number of connections with an expiry check in flight.",
		})

		p.sweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration in seconds of heartbeat-less sweep passes.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		})

		p.reg.MustRegister(p.renewals)
		p.reg.MustRegister(p.evictions)
		p.reg.MustRegister(p.activeLeases)
		p.reg.MustRegister(p.checkOutcomes)
		p.reg.MustRegister(p.scheduleFailures)
		p.reg.MustRegister(p.pendingChecks)
		p.reg.MustRegister(p.sweepDuration)
	})
}

// LeaseMetrics implementation

// RecordRenewal increments the renewal counter.
func (p *PrometheusCollector) RecordRenewal() {
	p.ensureRegistered()
	p.renewals.Inc()
}

// RecordEviction increments the eviction counter for the given reason.
func (p *PrometheusCollector) RecordEviction(reason string) {
	p.ensureRegistered()
	p.evictions.WithLabelValues(reason).Inc()
}

// RecordActiveLeases sets the active leases gauge.
func (p *PrometheusCollector) RecordActiveLeases(count int) {
	p.ensureRegistered()
	p.activeLeases.Set(float64(count))
}

// CheckMetrics implementation

// RecordCheckOutcome increments the outcome counter for a fired check.
func (p *PrometheusCollector) RecordCheckOutcome(outcome string) {
	p.ensureRegistered()
	p.checkOutcomes.WithLabelValues(outcome).Inc()
}

// RecordScheduleFailure increments the schedule failure counter.
func (p *PrometheusCollector) RecordScheduleFailure() {
	p.ensureRegistered()
	p.scheduleFailures.Inc()
}

// RecordPendingChecks sets the pending checks gauge.
func (p *PrometheusCollector) RecordPendingChecks(count int) {
	p.ensureRegistered()
	p.pendingChecks.Set(float64(count))
}

// SweepMetrics implementation

// RecordSweepDuration observes one sweep pass duration in seconds.
func (p *PrometheusCollector) RecordSweepDuration(duration float64) {
	p.ensureRegistered()
	p.sweepDuration.Observe(duration)
}

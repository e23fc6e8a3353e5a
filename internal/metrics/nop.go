package metrics

import "github.com/arloliu/lessor/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	metrics := metrics.NewNop()
//	mgr := lessor.NewManager(&cfg, source, sink, lessor.WithMetrics(metrics))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// LeaseMetrics implementation

// RecordRenewal discards the renewal counter.
func (n *NopMetrics) RecordRenewal() {
	// No-op
}

// RecordEviction discards the eviction counter.
func (n *NopMetrics) RecordEviction(_ /* reason */ string) {
	// No-op
}

// RecordActiveLeases discards the active leases gauge.
func (n *NopMetrics) RecordActiveLeases(_ /* count */ int) {
	// No-op
}

// CheckMetrics implementation

// RecordCheckOutcome discards the check outcome counter.
func (n *NopMetrics) RecordCheckOutcome(_ /* outcome */ string) {
	// No-op
}

// RecordScheduleFailure discards the schedule failure counter.
func (n *NopMetrics) RecordScheduleFailure() {
	// No-op
}

// RecordPendingChecks discards the pending checks gauge.
func (n *NopMetrics) RecordPendingChecks(_ /* count */ int) {
	// No-op
}

// SweepMetrics implementation

// RecordSweepDuration discards the sweep duration metric.
func (n *NopMetrics) RecordSweepDuration(_ /* duration */ float64) {
	// No-op
}

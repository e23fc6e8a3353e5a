package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheus_Defaults(t *testing.T) {
	collector := NewPrometheus(nil, "")

	require.NotNil(t, collector)
	require.Equal(t, "lessor", collector.namespace)
}

func TestPrometheusCollector_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewPrometheus(reg, "lessor_test")

	collector.RecordRenewal()
	collector.RecordRenewal()
	collector.RecordEviction("expired")
	collector.RecordEviction("no_heartbeat")
	collector.RecordEviction("no_heartbeat")
	collector.RecordActiveLeases(7)
	collector.RecordCheckOutcome("rearmed")
	collector.RecordScheduleFailure()
	collector.RecordPendingChecks(3)
	collector.RecordSweepDuration(0.25)

	require.Equal(t, float64(2), testutil.ToFloat64(collector.renewals))
	require.Equal(t, float64(1), testutil.ToFloat64(collector.evictions.WithLabelValues("expired")))
	require.Equal(t, float64(2), testutil.ToFloat64(collector.evictions.WithLabelValues("no_heartbeat")))
	require.Equal(t, float64(7), testutil.ToFloat64(collector.activeLeases))
	require.Equal(t, float64(1), testutil.ToFloat64(collector.checkOutcomes.WithLabelValues("rearmed")))
	require.Equal(t, float64(1), testutil.ToFloat64(collector.scheduleFailures))
	require.Equal(t, float64(3), testutil.ToFloat64(collector.pendingChecks))
}

func TestPrometheusCollector_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewPrometheus(reg, "lessor_test")

	// Repeated recording must not attempt duplicate registration.
	require.NotPanics(t, func() {
		for range 10 {
			collector.RecordRenewal()
			collector.RecordSweepDuration(0.01)
		}
	})
}

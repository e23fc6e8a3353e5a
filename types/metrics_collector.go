package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from internal goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	LeaseMetrics
	CheckMetrics
	SweepMetrics
}

// LeaseMetrics defines metrics for lease lifecycle events.
type LeaseMetrics interface {
	// RecordRenewal records a single lease renewal.
	RecordRenewal()

	// RecordEviction records an evicted connection.
	//
	// Parameters:
	//   - reason: Eviction reason ("expired", "no_heartbeat")
	RecordEviction(reason string)

	// RecordActiveLeases sets the current number of tracked leases (gauge metric).
	//
	// Parameters:
	//   - count: Current number of connections with a renewal record
	RecordActiveLeases(count int)
}

// CheckMetrics defines metrics for expiry-check scheduling and outcomes.
type CheckMetrics interface {
	// RecordCheckOutcome records the outcome of a fired expiry check.
	//
	// Parameters:
	//   - outcome: Check outcome ("expired", "rearmed", "superseded", "missing")
	RecordCheckOutcome(outcome string)

	// RecordScheduleFailure records an expiry check that could not be
	// scheduled, or that was dropped before it ran.
	RecordScheduleFailure()

	// RecordPendingChecks sets the current number of pending expiry checks (gauge metric).
	//
	// Parameters:
	//   - count: Current number of connections with a check in flight
	RecordPendingChecks(count int)
}

// SweepMetrics defines metrics for the heartbeat-less fallback sweep.
type SweepMetrics interface {
	// RecordSweepDuration records the time taken for one sweep pass.
	//
	// Parameters:
	//   - duration: Time taken in seconds
	RecordSweepDuration(duration float64)
}

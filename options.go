package lessor

import "k8s.io/utils/clock"

// Option configures a Manager with optional dependencies.
type Option func(*managerOptions)

// managerOptions holds optional Manager configuration.
type managerOptions struct {
	logger    Logger
	metrics   MetricsCollector
	clock     clock.Clock
	scheduler Scheduler
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewManager
//
// Example:
//
//	logger := zap.NewExample().Sugar()
//	mgr := lessor.NewManager(&cfg, source, sink, lessor.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewManager
//
// Example:
//
//	metrics := metrics.NewPrometheus(nil, "lessor")
//	mgr := lessor.NewManager(&cfg, source, sink, lessor.WithMetrics(metrics))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *managerOptions) {
		o.metrics = metrics
	}
}

// WithClock sets the clock used for renewal timestamps, expiry arithmetic
// and the sweep interval. Tests inject a fake clock to drive expiry
// deterministically; production uses the real clock by default.
//
// Parameters:
//   - c: Clock implementation (see k8s.io/utils/clock)
//
// Returns:
//   - Option: Functional option for NewManager
//
// Example:
//
//	fakeClock := testingclock.NewFakeClock(time.Now())
//	mgr := lessor.NewManager(&cfg, source, sink, lessor.WithClock(fakeClock))
func WithClock(c clock.Clock) Option {
	return func(o *managerOptions) {
		o.clock = c
	}
}

// WithScheduler sets a custom expiry-check scheduler, replacing the built-in
// hashed wheel timer.
//
// The caller owns the scheduler's lifecycle: the manager will not start or
// stop an injected scheduler, it only schedules checks on it. The scheduler
// must honor the types.Task contract, in particular calling Drop for tasks
// that will never run, or pending-check state will leak.
//
// Parameters:
//   - scheduler: Scheduler implementation
//
// Returns:
//   - Option: Functional option for NewManager
func WithScheduler(scheduler Scheduler) Option {
	return func(o *managerOptions) {
		o.scheduler = scheduler
	}
}

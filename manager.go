package lessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"

	"github.com/arloliu/lessor/internal/gate"
	"github.com/arloliu/lessor/internal/ledger"
	"github.com/arloliu/lessor/internal/logging"
	"github.com/arloliu/lessor/internal/metrics"
	"github.com/arloliu/lessor/internal/wheel"
)

// Manager tracks connection liveness through renewable leases and evicts
// connections whose lease expires.
//
// Manager is the main entry point of the lessor library. It handles:
//   - Recording lease renewals with wall-clock timestamps
//   - Arming at most one pending expiry check per connection
//   - Re-arming checks for the remaining window while renewals keep arriving
//   - Evicting expired connections through the configured EvictionSink
//   - Sweeping for connections that own data but never renewed at all
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Renew is non-blocking and never returns an error
//   - TTL changes through SetTTL take effect on the next expiry computation
//
// Lifecycle:
//   - Create with NewManager()
//   - Call Start() to launch the scheduler and the fallback sweeper
//   - Call Renew() on every client heartbeat
//   - Call Stop() for graceful shutdown
//
// Testing:
// Consumers can define minimal interfaces for mocking:
//
//	type LeaseTracker interface {
//	    Renew(connectID string)
//	    ActiveLeases() int
//	}
type Manager struct {
	cfg       Config
	ownership OwnershipSource
	sink      EvictionSink

	// Optional dependencies
	metrics   MetricsCollector
	logger    Logger
	clock     clock.Clock
	scheduler Scheduler

	// Internal components
	ledger *ledger.Ledger
	gate   *gate.Gate
	wheel  *wheel.Wheel // owned scheduler; nil when one was injected

	// State management
	ttlMillis atomic.Int64
	started   atomic.Bool
	resetCh   chan struct{}

	// Lifecycle management
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool // guarded by mu
}

// NewManager creates a new Manager instance with the provided configuration.
//
// The Manager keeps a renewal ledger keyed by connection identifier and
// turns missing renewals into disconnect notifications:
//   - Renewals stamp the ledger and arm a single pending expiry check
//   - Expired leases are removed and reported to the eviction sink
//   - A fallback sweep every TTL catches connections that never renewed
//
// Returns a concrete *Manager struct following the "accept interfaces, return structs" principle.
// Consumers can define their own interfaces for testing if needed.
//
// Parameters:
//   - cfg: Runtime configuration with parsed durations
//   - ownership: Source reporting which connections own registered data
//   - sink: Consumer for disconnect notifications
//   - opts: Optional configuration (logger, metrics, clock, scheduler)
//
// Returns:
//   - *Manager: Initialized manager instance
//   - error: Validation error if configuration or collaborators are invalid
//
// Example:
//
//	cfg := lessor.DefaultConfig()
//	src := store.NewMemory()
//	snk, _ := sink.NewNATS(natsConn, sink.DefaultSubject)
//	mgr, err := lessor.NewManager(&cfg, src, snk)
func NewManager(cfg *Config, ownership OwnershipSource, sink EvictionSink, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if ownership == nil {
		return nil, ErrOwnershipSourceRequired
	}
	if sink == nil {
		return nil, ErrEvictionSinkRequired
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Apply options
	options := &managerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	// Validate with warnings after logger is available
	cfg.ValidateWithWarnings(loggerInstance)

	clockInstance := options.clock
	if clockInstance == nil {
		clockInstance = clock.RealClock{}
	}

	m := &Manager{
		cfg:       *cfg,
		ownership: ownership,
		sink:      sink,
		metrics:   metricsCollector,
		logger:    loggerInstance,
		clock:     clockInstance,
		scheduler: options.scheduler,
		ledger:    ledger.New(),
		gate:      gate.New(),
		resetCh:   make(chan struct{}, 1),
	}

	m.ttlMillis.Store(cfg.TTL.Milliseconds())

	return m, nil
}

// Start launches the expiry-check scheduler and the fallback sweeper.
//
// When no scheduler was injected with WithScheduler, Start builds and owns a
// hashed wheel timer sized by Config.Scheduler and stops it again on Stop.
//
// Parameters:
//   - ctx: Context for startup cancellation
//
// Returns:
//   - error: Startup error, ErrAlreadyStarted on repeated calls
func (m *Manager) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.ctx != nil {
		m.mu.Unlock()

		return ErrAlreadyStarted
	}

	// Manager context outlives the startup context; Stop cancels it.
	m.ctx, m.cancel = context.WithCancel(context.Background())

	if m.scheduler == nil {
		w := wheel.New(wheel.Config{
			Tick:      m.cfg.Scheduler.Tick,
			WheelSize: m.cfg.Scheduler.WheelSize,
			Workers:   m.cfg.Scheduler.Workers,
			QueueSize: m.cfg.Scheduler.QueueSize,
			OnTaskFailure: func(err error) {
				m.logError("expiry check task failed", "error", err)
			},
		})
		if err := w.Start(); err != nil {
			m.mu.Unlock()

			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		m.wheel = w
		m.scheduler = w
	}
	m.mu.Unlock()

	m.wg.Add(1)
	go m.sweepLoop()

	m.started.Store(true)
	m.logger.Info("lease manager started",
		"ttl", m.TTL(),
		"scheduler_tick", m.cfg.Scheduler.Tick,
		"wheel_size", m.cfg.Scheduler.WheelSize,
	)

	return nil
}

// Stop gracefully shuts the manager down.
//
// Renewals arriving after Stop begins are ignored. Pending expiry checks on
// an owned scheduler are dropped without evicting anyone; leases survive in
// the ledger so a later manager instance can pick them up.
//
// Safe to call multiple times - subsequent calls will return ErrNotStarted.
//
// Parameters:
//   - ctx: Context for shutdown timeout
//
// Returns:
//   - error: Shutdown error or timeout
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()

	// Check if already stopped or never started
	if m.ctx == nil || m.stopped {
		m.mu.Unlock()

		return ErrNotStarted
	}
	m.stopped = true

	// Turn renewals into no-ops before draining so no new checks arrive
	// mid-shutdown.
	m.started.Store(false)

	// Cancel manager context to stop the sweeper and quiet in-flight checks.
	//
	// Note: Keep m.ctx (even though cancelled) instead of setting to nil
	// so background goroutines can still use it in their select statements.
	m.cancel()
	m.mu.Unlock()

	var shutdownErr error

	// Step 1: Wait for the sweeper goroutine with timeout
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logError("shutdown timeout exceeded, sweep goroutine may still be running")
		shutdownErr = ctx.Err()
	}

	// Step 2: Stop the owned scheduler; its drain drops pending checks,
	// which releases their gate entries through Task.Drop.
	if m.wheel != nil {
		if err := m.wheel.Stop(); err != nil && !errors.Is(err, wheel.ErrNotStarted) {
			m.logError("failed to stop scheduler", "error", err)
			if shutdownErr == nil {
				shutdownErr = fmt.Errorf("scheduler stop failed: %w", err)
			}
		}
	}

	if shutdownErr == nil {
		m.logger.Info("lease manager stopped gracefully")
	}

	return shutdownErr
}

// Renew records a lease renewal for connectID at the current wall-clock
// time and makes sure an expiry check is pending for it.
//
// Renew is the heartbeat hot path: it never blocks, never fails, and calling
// it on a manager that is not running is a silent no-op. The first renewal
// for a connection arms an expiry check one full TTL out; while that check
// is pending, further renewals only update the timestamp.
//
// Parameters:
//   - connectID: Opaque connection identifier
func (m *Manager) Renew(connectID string) {
	if !m.started.Load() {
		return
	}

	m.logger.Debug("lease renewed", "connect_id", connectID)

	m.ledger.Renew(connectID, m.clock.Now().UnixMilli())
	m.metrics.RecordRenewal()
	m.metrics.RecordActiveLeases(m.ledger.Size())

	m.scheduleExpiryCheck(connectID, 0)
}

// Reset restarts the fallback sweep interval from now.
//
// Call it after bulk ownership changes (for example a data migration) to
// push the next heartbeat-less sweep a full TTL away. An in-flight sweep is
// not interrupted; concurrent resets coalesce.
func (m *Manager) Reset() {
	if !m.started.Load() {
		return
	}

	select {
	case m.resetCh <- struct{}{}:
	default: // a reset is already queued
	}

	m.logger.Info("sweep interval reset requested", "ttl", m.TTL())
}

// TTL returns the current lease time-to-live.
//
// Returns:
//   - time.Duration: Current TTL
func (m *Manager) TTL() time.Duration {
	return time.Duration(m.ttlMillis.Load()) * time.Millisecond
}

// SetTTL updates the lease time-to-live at runtime.
//
// The new value applies to every expiry computation from this point on,
// including checks already pending; records stamped under the old TTL are
// re-judged against the new one when their check fires.
//
// Parameters:
//   - ttl: New time-to-live, at least one second
//
// Returns:
//   - error: ErrInvalidTTL when ttl is shorter than one second
func (m *Manager) SetTTL(ttl time.Duration) error {
	if ttl < time.Second {
		return fmt.Errorf("%w: got %v", ErrInvalidTTL, ttl)
	}

	old := time.Duration(m.ttlMillis.Swap(ttl.Milliseconds())) * time.Millisecond
	if old != ttl {
		m.logger.Info("lease ttl updated", "old_ttl", old, "new_ttl", ttl)
	}

	return nil
}

// ActiveLeases returns the number of connections with a renewal record.
//
// Returns:
//   - int: Current ledger size
func (m *Manager) ActiveLeases() int {
	return m.ledger.Size()
}

// PendingChecks returns the number of connections with an expiry check in
// flight.
//
// Returns:
//   - int: Current number of armed checks
func (m *Manager) PendingChecks() int {
	return m.gate.Size()
}

// IsStarted reports whether the manager is running.
//
// Returns:
//   - bool: true between a successful Start and the beginning of Stop
func (m *Manager) IsStarted() bool {
	return m.started.Load()
}

// ttlSeconds returns the current TTL in whole seconds for expiry arithmetic.
func (m *Manager) ttlSeconds() int64 {
	return m.ttlMillis.Load() / 1000
}

// logError logs an error message.
func (m *Manager) logError(msg string, keysAndValues ...any) {
	// Logger is always non-nil (defaults to nopLogger)
	m.logger.Error(msg, keysAndValues...)
}

package lessor

import (
	"time"

	"github.com/arloliu/lessor/types"
)

// expiryCheck is a single pending lease check for one connection.
//
// A chain of these checks follows a connection from its first renewal until
// the lease expires or its record disappears: each fired check either evicts
// the connection or arms its successor for the remaining lease window. The
// manager's gate guarantees at most one link of the chain is pending at any
// time.
type expiryCheck struct {
	m         *Manager
	connectID string
}

var _ types.Task = (*expiryCheck)(nil)

// Run evaluates the lease when the check fires.
func (c *expiryCheck) Run() {
	m := c.m

	// Reopen the scheduling window first: a renewal arriving while this
	// check runs must be able to arm the next one.
	m.gate.Release(c.connectID)
	m.metrics.RecordPendingChecks(m.gate.Size())

	if m.ctx.Err() != nil {
		return // shutting down, leases stay in the ledger
	}

	defer func() {
		if r := recover(); r != nil {
			m.logError("lease check panicked, chain ends until next renewal",
				"connect_id", c.connectID,
				"panic", r,
			)
		}
	}()

	last, ok := m.ledger.Get(c.connectID)
	if !ok {
		// Already evicted, or reset raced the check; nothing to re-arm.
		m.logger.Debug("no lease record at check time", "connect_id", c.connectID)
		m.metrics.RecordCheckOutcome("missing")

		return
	}

	now := m.clock.Now().UnixMilli()
	elapsed := now - last

	if elapsed > m.ttlMillis.Load() {
		c.expire(last, elapsed)
		return
	}

	// Lease is fresh: re-arm for the remaining window. The floor of one
	// second keeps a check that fired just inside the TTL from spinning.
	remaining := m.ttlSeconds() - elapsed/1000
	if remaining <= 0 {
		remaining = 1
	}
	m.metrics.RecordCheckOutcome("rearmed")
	m.scheduleExpiryCheck(c.connectID, time.Duration(remaining)*time.Second)
}

// expire removes the record and notifies the sink, unless a fresher renewal
// won the race.
func (c *expiryCheck) expire(last, elapsed int64) {
	m := c.m

	if !m.ledger.RemoveIfMatches(c.connectID, last) {
		// A renewal landed between reading the timestamp and removing the
		// record. The renewed lease deserves a live chain, so arm a fresh
		// full-TTL check instead of silently ending here.
		m.metrics.RecordCheckOutcome("superseded")
		m.scheduleExpiryCheck(c.connectID, 0)

		return
	}

	m.logger.Info("lease expired",
		"connect_id", c.connectID,
		"last_renew", time.UnixMilli(last),
		"elapsed_ms", elapsed,
		"owned_units", m.ownedUnitCount(c.connectID),
	)
	m.metrics.RecordCheckOutcome("expired")
	m.evict(c.connectID, "expired")
}

// Drop releases the gate when the scheduler rejected or drained this check,
// so the connection's next renewal can arm a new one.
func (c *expiryCheck) Drop(err error) {
	m := c.m

	m.gate.Release(c.connectID)
	m.metrics.RecordScheduleFailure()
	m.logger.Debug("lease check dropped", "connect_id", c.connectID, "error", err)
}

// scheduleExpiryCheck arms an expiry check for connectID after delay unless
// one is already pending. A delay of zero or less means one full TTL.
//
// Scheduling failures release the gate and are only logged: the connection's
// next renewal will try again, so a saturated scheduler degrades into
// delayed expiry rather than lost leases.
func (m *Manager) scheduleExpiryCheck(connectID string, delay time.Duration) {
	if delay <= 0 {
		delay = m.TTL()
	}

	if !m.gate.TryAcquire(connectID) {
		return // a check is already pending
	}

	if _, err := m.scheduler.Schedule(delay, &expiryCheck{m: m, connectID: connectID}); err != nil {
		m.gate.Release(connectID)
		m.metrics.RecordScheduleFailure()
		m.logError("failed to schedule lease check", "connect_id", connectID, "error", err)

		return
	}

	m.metrics.RecordPendingChecks(m.gate.Size())
	m.logger.Debug("lease check armed", "connect_id", connectID, "delay", delay)
}

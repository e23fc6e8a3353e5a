package lessor

// sweepLoop runs the heartbeat-less fallback sweep once per TTL, measured
// from the end of the previous pass (fixed delay, not fixed rate). A Reset
// signal restarts the interval without running a sweep; reading the TTL
// fresh on every arm makes SetTTL apply to the next interval.
func (m *Manager) sweepLoop() {
	defer m.wg.Done()

	for {
		timer := m.clock.NewTimer(m.TTL())
		select {
		case <-m.ctx.Done():
			timer.Stop()
			return
		case <-m.resetCh:
			timer.Stop() // restart the interval from now
		case <-timer.C():
			m.sweep()
		}
	}
}

// sweep evicts connections that own data but have no renewal record at all.
//
// The expiry-check chain only ever sees connections that renewed at least
// once; a client that registered data and died before its first heartbeat
// would otherwise hold its data forever. Connections with a ledger record
// are skipped here because their chain already tracks them.
func (m *Manager) sweep() {
	start := m.clock.Now()
	m.logger.Info("heartbeat-less sweep started")

	connectIDs, err := m.ownership.ConnectIDsWithData(m.ctx)
	if err != nil {
		m.logError("sweep failed to list connections with data", "error", err)
		return
	}

	evicted := 0
	for _, connectID := range connectIDs {
		if m.ctx.Err() != nil {
			return // shutting down
		}
		if _, ok := m.ledger.Get(connectID); ok {
			continue // the expiry-check chain owns this connection
		}
		owned := m.ownedUnitCount(connectID)
		if owned <= 0 {
			continue
		}

		m.logger.Info("connection owns data but never renewed",
			"connect_id", connectID,
			"owned_units", owned,
		)
		m.evict(connectID, "no_heartbeat")
		evicted++
	}

	elapsed := m.clock.Since(start)
	m.metrics.RecordSweepDuration(elapsed.Seconds())
	m.logger.Info("heartbeat-less sweep finished", "elapsed", elapsed, "evicted", evicted)
}

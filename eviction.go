package lessor

// evict notifies the sink that connectID's lease ended and records the
// eviction.
//
// Notification is fire-and-forget: a sink error is logged and the eviction
// stands. The sink sees the wall-clock time at which the eviction was
// decided, not the lease's last renewal time.
func (m *Manager) evict(connectID, reason string) {
	if err := m.sink.NotifyDisconnect(m.ctx, connectID, m.clock.Now()); err != nil {
		m.logError("disconnect notification failed",
			"connect_id", connectID,
			"reason", reason,
			"error", err,
		)
	}

	m.metrics.RecordEviction(reason)
	m.metrics.RecordActiveLeases(m.ledger.Size())
}

// ownedUnitCount reports how many data units connectID currently owns, for
// eviction diagnostics. Lookup failures count as zero.
func (m *Manager) ownedUnitCount(connectID string) int {
	count, err := m.ownership.OwnedUnitCount(m.ctx, connectID)
	if err != nil {
		m.logger.Debug("owned unit count unavailable", "connect_id", connectID, "error", err)
		return 0
	}

	return count
}

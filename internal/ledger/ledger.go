// Package ledger tracks the most recent renewal timestamp per connection.
package ledger

import "github.com/puzpuzpuz/xsync/v4"

// Ledger is a concurrent map from connection identifier to the wall-clock
// time, in Unix milliseconds, of that connection's most recent renewal.
//
// All methods are safe for concurrent use. Updates for the same key are
// last-write-wins; there is no ordering across different keys.
type Ledger struct {
	records *xsync.Map[string, int64]
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{records: xsync.NewMap[string, int64]()}
}

// Renew records timestamp as the most recent renewal for connectID,
// overwriting any previous value.
func (l *Ledger) Renew(connectID string, timestamp int64) {
	l.records.Store(connectID, timestamp)
}

// Get returns the last renewal timestamp for connectID.
//
// Returns:
//   - int64: Last renewal time in Unix milliseconds
//   - bool: false when connectID has no renewal record
func (l *Ledger) Get(connectID string) (int64, bool) {
	return l.records.Load(connectID)
}

// RemoveIfMatches deletes connectID's record only if its current timestamp
// still equals expected, and reports whether the delete happened.
//
// The conditional form prevents an expiry check from discarding a renewal
// that landed between reading the timestamp and deciding to evict.
func (l *Ledger) RemoveIfMatches(connectID string, expected int64) bool {
	removed := false
	l.records.Compute(connectID, func(current int64, loaded bool) (int64, xsync.ComputeOp) {
		if loaded && current == expected {
			removed = true
			return current, xsync.DeleteOp
		}
		return current, xsync.CancelOp
	})

	return removed
}

// Remove deletes connectID's record unconditionally.
func (l *Ledger) Remove(connectID string) {
	l.records.Delete(connectID)
}

// Size returns the number of connections with a renewal record.
func (l *Ledger) Size() int {
	return l.records.Size()
}

// Range calls fn for each renewal record until fn returns false.
func (l *Ledger) Range(fn func(connectID string, timestamp int64) bool) {
	l.records.Range(fn)
}

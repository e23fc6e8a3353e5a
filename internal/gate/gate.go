// Package gate provides a per-key single-flight guard for pending expiry checks.
package gate

import "github.com/puzpuzpuz/xsync/v4"

// Gate is a concurrent set of connection identifiers used as a per-key
// mutual-exclusion device: membership means an expiry check for that
// connection is already pending.
//
// A burst of concurrent TryAcquire calls for the same key admits exactly
// one caller, which keeps a renewal storm from scheduling duplicate checks.
type Gate struct {
	held *xsync.Map[string, struct{}]
}

// New creates an empty gate.
func New() *Gate {
	return &Gate{held: xsync.NewMap[string, struct{}]()}
}

// TryAcquire atomically inserts connectID and reports whether this call
// performed the insert. A false return means a check is already pending.
func (g *Gate) TryAcquire(connectID string) bool {
	_, loaded := g.held.LoadOrStore(connectID, struct{}{})
	return !loaded
}

// Release removes connectID unconditionally, reopening the key for the
// next TryAcquire.
func (g *Gate) Release(connectID string) {
	g.held.Delete(connectID)
}

// Held reports whether a check is currently pending for connectID.
func (g *Gate) Held(connectID string) bool {
	_, ok := g.held.Load(connectID)
	return ok
}

// Size returns the number of keys with a pending check.
func (g *Gate) Size() int {
	return g.held.Size()
}

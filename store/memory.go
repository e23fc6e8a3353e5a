// Package store provides ownership-source implementations for the lessor
// library.
package store

import (
	"context"
	"sync"

	"github.com/arloliu/lessor/types"
)

// Memory implements an in-process ownership source backed by a map of
// connection identifiers to the set of data units they own.
type Memory struct {
	mu    sync.RWMutex
	units map[string]map[string]struct{}
}

var _ types.OwnershipSource = (*Memory)(nil)

// NewMemory creates an empty in-memory ownership source.
//
// Useful for testing and for servers that already track client data in
// process and only need to mirror ownership into the lease manager.
//
// Returns:
//   - *Memory: Initialized empty source
//
// Example:
//
//	src := store.NewMemory()
//	src.Add("client-1", "datum-a")
//	mgr, err := lessor.NewManager(&cfg, src, snk)
//	if err != nil { /* handle */ }
func NewMemory() *Memory {
	return &Memory{
		units: make(map[string]map[string]struct{}),
	}
}

// Add records that connectID owns unitID. Adding the same unit twice is a
// no-op.
//
// Parameters:
//   - connectID: Owning connection identifier
//   - unitID: Data unit identifier
func (s *Memory) Add(connectID, unitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned, ok := s.units[connectID]
	if !ok {
		owned = make(map[string]struct{})
		s.units[connectID] = owned
	}
	owned[unitID] = struct{}{}
}

// Remove deletes unitID from connectID's owned set. Connections whose last
// unit is removed disappear from the source entirely.
//
// Parameters:
//   - connectID: Owning connection identifier
//   - unitID: Data unit identifier
func (s *Memory) Remove(connectID, unitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned, ok := s.units[connectID]
	if !ok {
		return
	}
	delete(owned, unitID)
	if len(owned) == 0 {
		delete(s.units, connectID)
	}
}

// RemoveAll deletes every unit owned by connectID. Typically called by the
// eviction sink once a disconnect notification has been handled.
//
// Parameters:
//   - connectID: Owning connection identifier
func (s *Memory) RemoveAll(connectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.units, connectID)
}

// OwnedUnitCount returns the number of data units owned by connectID.
//
// Returns:
//   - int: Number of owned units (0 if none)
//   - error: Always nil (never fails)
func (s *Memory) OwnedUnitCount(_ context.Context, connectID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.units[connectID]), nil
}

// ConnectIDsWithData returns every connection identifier that owns at least
// one data unit.
//
// Returns:
//   - []string: Connection identifiers, in no particular order
//   - error: Always nil (never fails)
func (s *Memory) ConnectIDsWithData(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]string, 0, len(s.units))
	for connectID := range s.units {
		result = append(result, connectID)
	}

	return result, nil
}

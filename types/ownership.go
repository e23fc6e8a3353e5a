package types

import "context"

// OwnershipSource reports which connections currently own registered data.
//
// The lease manager consults it in two places: the fallback sweeper
// enumerates ConnectIDsWithData to find connections that own data but never
// renewed their lease, and the expiry path records OwnedUnitCount for
// diagnostics when a lease expires.
//
// Implementations must be safe for concurrent use. They can be backed by an
// in-memory registry (see the store package), a cache, or any external
// system of record.
type OwnershipSource interface {
	// OwnedUnitCount returns the number of data units currently owned by
	// connectID.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - connectID: Connection identifier to look up
	//
	// Returns:
	//   - int: Number of owned units, 0 when the connection owns nothing
	//   - error: Lookup error (nil on success)
	OwnedUnitCount(ctx context.Context, connectID string) (int, error)

	// ConnectIDsWithData returns every connection identifier that owns at
	// least one data unit.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - []string: Connection identifiers, in no particular order
	//   - error: Enumeration error (nil on success)
	ConnectIDsWithData(ctx context.Context) ([]string, error)
}

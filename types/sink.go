package types

import (
	"context"
	"time"
)

// EvictionSink consumes disconnect notifications for connections whose
// lease expired.
//
// Notifications are fire-and-forget: the lease manager logs errors returned
// by the sink but never retries, and a failed notification does not restore
// the evicted lease. Implementations that need delivery guarantees should
// queue internally. Implementations must be safe for concurrent use.
type EvictionSink interface {
	// NotifyDisconnect reports that connectID's lease ended at timestamp.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - connectID: Connection identifier whose lease expired
	//   - timestamp: Wall-clock time the eviction was decided
	//
	// Returns:
	//   - error: Delivery error (nil on success)
	NotifyDisconnect(ctx context.Context, connectID string, timestamp time.Time) error
}

// EvictionSinkFunc adapts a plain function to the EvictionSink interface.
//
// Example:
//
//	sink := types.EvictionSinkFunc(func(ctx context.Context, connectID string, ts time.Time) error {
//	    log.Printf("client disconnected: %s", connectID)
//	    return nil
//	})
type EvictionSinkFunc func(ctx context.Context, connectID string, timestamp time.Time) error

// NotifyDisconnect calls f(ctx, connectID, timestamp).
func (f EvictionSinkFunc) NotifyDisconnect(ctx context.Context, connectID string, timestamp time.Time) error {
	return f(ctx, connectID, timestamp)
}

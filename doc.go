// Package lessor provides a Go library for tracking connection liveness
// through renewable leases and evicting connections that stop renewing.
//
// Lessor is built for servers that hold data on behalf of many clients: each
// client heartbeat renews a lease, an expiry check per connection re-arms
// itself while renewals keep arriving, and a connection whose lease outlives
// its TTL is reported to an eviction sink so its data can be released. A
// fallback sweep catches connections that registered data but never
// heartbeated at all.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import "github.com/arloliu/lessor"
//
//	cfg := lessor.DefaultConfig()
//
//	src := store.NewMemory()
//	snk := lessor.EvictionSinkFunc(func(ctx context.Context, connectID string, ts time.Time) error {
//	    releaseClientData(connectID)
//	    return nil
//	})
//
//	mgr, err := lessor.NewManager(&cfg, src, snk)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := mgr.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Stop(context.Background())
//
//	// On every client heartbeat:
//	mgr.Renew(connectID)
//
// # Key Features
//
//   - Non-Blocking Renewals: Renew is a map write plus a conditional schedule, safe for heartbeat storms
//   - Single Pending Check: At most one expiry check per connection, no timer-per-heartbeat churn
//   - Hashed Wheel Timer: O(1) scheduling for tens of thousands of pending checks
//   - Renewal-Safe Expiry: A renewal racing an expiry decision always wins
//   - Fallback Sweep: Connections that own data but never renewed are still evicted
//   - Live TTL: SetTTL applies to every expiry decision from that point on
//
// # Architecture
//
// A connection's lease moves through a small lifecycle:
//
//	RENEWED → CHECK PENDING → (fresh: re-arm) → ... → EXPIRED → EVICTED
//
// Renewals stamp a ledger with the current time and arm a check one TTL out.
// A fired check compares elapsed time against the TTL: fresh leases re-arm
// for the remaining window, expired ones are conditionally removed (losing
// to any concurrent renewal) and pushed to the eviction sink.
//
// # Advanced Usage
//
// Publishing evictions to NATS with Prometheus metrics:
//
//	import (
//	    "github.com/arloliu/lessor"
//	    "github.com/arloliu/lessor/sink"
//	)
//
//	snk, err := sink.NewNATS(natsConn, sink.DefaultSubject)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mgr, err := lessor.NewManager(&cfg, src, snk,
//	    lessor.WithLogger(myLogger),
//	    lessor.WithMetrics(metrics.NewPrometheus(nil, "lessor")),
//	)
//
// See the examples/ directory for complete working examples.
package lessor

package lessor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"k8s.io/utils/clock"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/arloliu/lessor/store"
)

// checkHarness bundles a started manager with fully controllable time and
// scheduling: the clock never moves on its own and checks only fire when the
// test fires them.
type checkHarness struct {
	mgr   *Manager
	ms    *manualScheduler
	snk   *recordingSink
	src   *store.Memory
	clock *testingclock.FakeClock
}

func newCheckHarness(t *testing.T, opts ...Option) *checkHarness {
	t.Helper()

	h := &checkHarness{
		ms:    &manualScheduler{},
		snk:   newRecordingSink(),
		src:   store.NewMemory(),
		clock: testingclock.NewFakeClock(time.Now()),
	}

	cfg := TestConfig()
	opts = append([]Option{WithScheduler(h.ms), WithClock(h.clock)}, opts...)

	mgr, err := NewManager(&cfg, h.src, h.snk, opts...)
	require.NoError(t, err)
	require.NoError(t, mgr.Start(context.Background()))
	t.Cleanup(func() { _ = mgr.Stop(context.Background()) })

	h.mgr = mgr

	return h
}

// backdate rewrites connectID's ledger record as if its last renewal
// happened age ago, without moving the clock. The sweep timer stays parked,
// so fired checks are the only actors in these tests.
func (h *checkHarness) backdate(connectID string, age time.Duration) {
	h.mgr.ledger.Renew(connectID, h.clock.Now().Add(-age).UnixMilli())
}

func TestExpiryCheck_EvictsExpiredLease(t *testing.T) {
	h := newCheckHarness(t)
	h.src.Add("client-1", "datum-a")

	h.mgr.Renew("client-1")
	require.Equal(t, 1, h.ms.pendingCount())
	require.Equal(t, h.mgr.TTL(), h.ms.lastDelay(t), "first check is armed one full TTL out")

	// The lease aged past the TTL with no further renewals.
	h.backdate("client-1", h.mgr.TTL()+time.Second)
	h.ms.fire(t)

	require.Equal(t, []string{"client-1"}, h.snk.notified())
	require.Equal(t, 0, h.mgr.ActiveLeases(), "expired record must leave the ledger")
	require.Equal(t, 0, h.mgr.PendingChecks(), "eviction is terminal, no re-arm")
	require.Equal(t, 0, h.ms.pendingCount())
}

func TestExpiryCheck_RearmsFreshLease(t *testing.T) {
	t.Run("mid window", func(t *testing.T) {
		h := newCheckHarness(t)

		h.mgr.Renew("client-1")
		h.backdate("client-1", 1200*time.Millisecond)
		h.ms.fire(t)

		// TTL 2s, one whole second elapsed: re-armed for the remaining second.
		require.Empty(t, h.snk.notified())
		require.Equal(t, 1, h.ms.pendingCount())
		require.Equal(t, time.Second, h.ms.lastDelay(t))
		require.Equal(t, 1, h.mgr.ActiveLeases())
		require.Equal(t, 1, h.mgr.PendingChecks())
	})

	t.Run("renewed while check pending", func(t *testing.T) {
		h := newCheckHarness(t)

		h.mgr.Renew("client-1")
		h.backdate("client-1", h.mgr.TTL()+time.Second)

		// A fresh renewal lands before the stale check fires. The gate is
		// still held, so it only updates the timestamp.
		h.mgr.Renew("client-1")
		require.Equal(t, 1, h.ms.pendingCount())

		h.ms.fire(t)

		require.Empty(t, h.snk.notified(), "check must judge the latest renewal, not the stale one")
		require.Equal(t, 1, h.ms.pendingCount())
		require.Equal(t, h.mgr.TTL(), h.ms.lastDelay(t))
	})

	t.Run("boundary elapsed floors at one second", func(t *testing.T) {
		h := newCheckHarness(t)

		h.mgr.Renew("client-1")
		// Exactly TTL elapsed: not strictly expired, and the whole-second
		// remaining window computes to zero.
		h.backdate("client-1", h.mgr.TTL())
		h.ms.fire(t)

		require.Empty(t, h.snk.notified())
		require.Equal(t, 1, h.ms.pendingCount())
		require.Equal(t, time.Second, h.ms.lastDelay(t))
	})
}

func TestExpiryCheck_JudgesAgainstLiveTTL(t *testing.T) {
	t.Run("shortened ttl expires a pending lease", func(t *testing.T) {
		h := newCheckHarness(t)
		h.src.Add("client-1", "datum-a")

		h.mgr.Renew("client-1")
		h.backdate("client-1", 1500*time.Millisecond)

		// Fresh under the 2s TTL the check was armed with, expired under the
		// 1s TTL in force when it fires.
		require.NoError(t, h.mgr.SetTTL(time.Second))
		h.ms.fire(t)

		require.Equal(t, []string{"client-1"}, h.snk.notified())
		require.Equal(t, 0, h.mgr.ActiveLeases())
		require.Equal(t, 0, h.mgr.PendingChecks())
	})

	t.Run("lengthened ttl rescues a stale lease", func(t *testing.T) {
		h := newCheckHarness(t)

		h.mgr.Renew("client-1")
		h.backdate("client-1", 3*time.Second)

		// Expired under the original 2s TTL, fresh again under 10s: re-armed
		// for the remaining seven whole seconds.
		require.NoError(t, h.mgr.SetTTL(10*time.Second))
		h.ms.fire(t)

		require.Empty(t, h.snk.notified())
		require.Equal(t, 1, h.mgr.ActiveLeases())
		require.Equal(t, 1, h.ms.pendingCount())
		require.Equal(t, 7*time.Second, h.ms.lastDelay(t))
	})
}

func TestExpiryCheck_MissingRecordEndsChain(t *testing.T) {
	h := newCheckHarness(t)

	h.mgr.Renew("client-1")
	h.mgr.ledger.Remove("client-1")

	require.NotPanics(t, func() { h.ms.fire(t) })

	require.Empty(t, h.snk.notified(), "nothing to evict without a record")
	require.Equal(t, 0, h.ms.pendingCount(), "chain ends without a record")
	require.Equal(t, 0, h.mgr.PendingChecks())
}

// nowHookClock runs a one-shot hook on the next Now call. The evaluator
// reads the clock between its ledger read and its conditional remove, which
// lets a test plant a renewal in exactly that window.
type nowHookClock struct {
	clock.Clock
	onNow func()
}

func (c *nowHookClock) Now() time.Time {
	if hook := c.onNow; hook != nil {
		c.onNow = nil
		hook()
	}

	return c.Clock.Now()
}

func TestExpiryCheck_SupersededRenewalKeepsChain(t *testing.T) {
	fc := testingclock.NewFakeClock(time.Now())
	hc := &nowHookClock{Clock: fc}
	ms := &manualScheduler{}
	snk := newRecordingSink()

	cfg := TestConfig()
	mgr, err := NewManager(&cfg, store.NewMemory(), snk, WithScheduler(ms), WithClock(hc))
	require.NoError(t, err)
	require.NoError(t, mgr.Start(context.Background()))
	defer func() { _ = mgr.Stop(context.Background()) }()

	mgr.Renew("client-1")
	staleStamp := fc.Now().Add(-cfg.TTL - time.Second).UnixMilli()
	mgr.ledger.Renew("client-1", staleStamp)

	// The racing renewal lands after the check reads the stale stamp but
	// before it removes the record, and its own gate acquire has lost.
	freshStamp := fc.Now().UnixMilli()
	hc.onNow = func() { mgr.ledger.Renew("client-1", freshStamp) }

	ms.fire(t)

	require.Empty(t, snk.notified(), "eviction must abort when a fresher renewal won")
	got, ok := mgr.ledger.Get("client-1")
	require.True(t, ok)
	require.Equal(t, freshStamp, got)

	// The renewed lease is not left without a chain: the check re-acquired
	// the gate and armed a fresh full-TTL check.
	require.Equal(t, 1, ms.pendingCount())
	require.Equal(t, cfg.TTL, ms.lastDelay(t))
	require.Equal(t, 1, mgr.PendingChecks())
}

func TestExpiryCheck_DropReleasesGate(t *testing.T) {
	h := newCheckHarness(t)

	h.mgr.Renew("client-1")
	require.Equal(t, 1, h.mgr.PendingChecks())

	// The scheduler accepted the check but will never run it.
	h.ms.drop(t, errors.New("worker queue full"))

	require.Equal(t, 0, h.mgr.PendingChecks(), "dropped check must release its gate entry")
	require.Equal(t, 1, h.mgr.ActiveLeases(), "the lease itself is untouched")

	// The next renewal arms a replacement check.
	h.mgr.Renew("client-1")
	require.Equal(t, 1, h.mgr.PendingChecks())
	require.Equal(t, 1, h.ms.pendingCount())
}

// panickingSink simulates an eviction consumer that blows up.
type panickingSink struct{}

func (panickingSink) NotifyDisconnect(context.Context, string, time.Time) error {
	panic("sink exploded")
}

func TestExpiryCheck_RecoversFromSinkPanic(t *testing.T) {
	fc := testingclock.NewFakeClock(time.Now())
	ms := &manualScheduler{}

	cfg := TestConfig()
	mgr, err := NewManager(&cfg, store.NewMemory(), panickingSink{}, WithScheduler(ms), WithClock(fc))
	require.NoError(t, err)
	require.NoError(t, mgr.Start(context.Background()))
	defer func() { _ = mgr.Stop(context.Background()) }()

	mgr.Renew("client-1")
	mgr.ledger.Renew("client-1", fc.Now().Add(-cfg.TTL-time.Second).UnixMilli())

	require.NotPanics(t, func() { ms.fire(t) }, "evaluator must contain sink panics")

	// The chain died after removing the record; the next renewal starts over.
	require.Equal(t, 0, mgr.PendingChecks())
	require.Equal(t, 0, mgr.ActiveLeases())

	mgr.Renew("client-1")
	require.Equal(t, 1, mgr.PendingChecks())
}

func TestExpiryCheck_SkipsAfterStop(t *testing.T) {
	h := newCheckHarness(t)

	h.mgr.Renew("client-1")
	h.backdate("client-1", h.mgr.TTL()+time.Second)

	require.NoError(t, h.mgr.Stop(context.Background()))

	// A check still queued in an injected scheduler may fire after Stop; it
	// must not evict anyone mid-shutdown.
	h.ms.fire(t)

	require.Empty(t, h.snk.notified())
	require.Equal(t, 1, h.mgr.ActiveLeases(), "leases survive shutdown")
	require.Equal(t, 0, h.mgr.PendingChecks())
}

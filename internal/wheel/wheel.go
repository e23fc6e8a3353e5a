// Package wheel implements a hashed wheel timer with a bounded worker pool.
//
// The wheel trades exact firing times for O(1) scheduling: pending timeouts
// hash into a fixed ring of buckets and a single tick goroutine advances the
// ring at a fixed interval, handing due tasks to worker goroutines through a
// bounded queue. Timing accuracy is one tick at best, which is plenty for
// lease expiry where deadlines are measured in seconds.
package wheel

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/lessor/types"
)

// Default sizing, tuned for tens of thousands of concurrently pending
// timeouts with second-scale delays.
const (
	// DefaultTick is the default ring advance interval.
	DefaultTick = 100 * time.Millisecond

	// DefaultWheelSize is the default number of ring buckets.
	DefaultWheelSize = 1024

	// DefaultWorkers is the default number of task worker goroutines.
	DefaultWorkers = 4

	// DefaultQueueSize is the default capacity of the worker task queue.
	DefaultQueueSize = 1024
)

// Config controls wheel sizing and failure reporting.
type Config struct {
	// Tick is the ring advance interval. Delays round up to a multiple of
	// Tick, minimum one tick.
	Tick time.Duration

	// WheelSize is the number of ring buckets.
	WheelSize int

	// Workers is the number of goroutines executing fired tasks.
	Workers int

	// QueueSize bounds the handoff queue between the tick loop and the
	// workers. When the queue is full, fired tasks are dropped rather than
	// blocking the tick loop.
	QueueSize int

	// OnTaskFailure, when non-nil, is invoked for task execution panics and
	// worker-queue rejections. It must not block.
	OnTaskFailure func(err error)
}

// timeout is a single scheduled task in the ring.
//
// Its lifecycle is a one-way state machine: pending, then one of canceled,
// fired, or dropped. Transitions are CAS-guarded so Run, Drop and Cancel
// stay mutually exclusive regardless of which goroutine races.
type timeout struct {
	task   types.Task
	ticks  int64 // requested delay in ticks, fixed at schedule time
	rounds int64 // remaining full ring rotations, owned by the tick loop
	state  atomic.Int32
}

const (
	statePending int32 = iota
	stateCanceled
	stateFired
	stateDropped
)

// Cancel implements types.TimerHandle.
func (t *timeout) Cancel() bool {
	return t.state.CompareAndSwap(statePending, stateCanceled)
}

var _ types.TimerHandle = (*timeout)(nil)

// Wheel is a hashed wheel timer. It implements types.Scheduler.
//
// A wheel is started once and stopped once; it is not restartable. Stopping
// drains every still-pending timeout through its task's Drop method so
// owners can release per-key state.
type Wheel struct {
	cfg     Config
	buckets []map[*timeout]struct{} // owned by the tick goroutine after Start
	tickNo  int64                   // ticks processed so far, tick goroutine only

	pendMu  sync.Mutex
	pending []*timeout // scheduled but not yet transferred into a bucket
	closed  bool       // set during Stop, guarded by pendMu

	queue    chan types.Task
	count    atomic.Int64 // timeouts tracked (pending list + live bucket entries)
	started  atomic.Bool
	mu       sync.Mutex // lifecycle
	halted   bool       // Stop has begun, guarded by mu
	stopCh   chan struct{}
	doneCh   chan struct{}
	workerWG sync.WaitGroup
}

var _ types.Scheduler = (*Wheel)(nil)

// New creates a wheel from cfg. Zero or negative sizing fields fall back to
// the package defaults.
func New(cfg Config) *Wheel {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.WheelSize <= 0 {
		cfg.WheelSize = DefaultWheelSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	buckets := make([]map[*timeout]struct{}, cfg.WheelSize)
	for i := range buckets {
		buckets[i] = make(map[*timeout]struct{})
	}

	return &Wheel{
		cfg:     cfg,
		buckets: buckets,
		queue:   make(chan types.Task, cfg.QueueSize),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start launches the tick loop and the worker pool.
func (w *Wheel) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started.Load() {
		return ErrAlreadyStarted
	}

	for range w.cfg.Workers {
		w.workerWG.Add(1)
		go w.worker()
	}
	go w.run()

	w.started.Store(true)

	return nil
}

// Stop halts the tick loop, drops every still-pending timeout with
// ErrStopped, and waits for the workers to finish tasks already queued.
func (w *Wheel) Stop() error {
	w.mu.Lock()
	if !w.started.Load() || w.halted {
		w.mu.Unlock()
		return ErrNotStarted
	}
	w.halted = true
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	// The tick goroutine is gone; fence off new Schedule calls and take
	// ownership of whatever it never transferred.
	w.pendMu.Lock()
	w.closed = true
	untransferred := w.pending
	w.pending = nil
	w.pendMu.Unlock()

	for _, t := range untransferred {
		w.dropTimeout(t, ErrStopped)
	}
	for _, bucket := range w.buckets {
		for t := range bucket {
			delete(bucket, t)
			w.dropTimeout(t, ErrStopped)
		}
	}

	close(w.queue)
	w.workerWG.Wait()

	return nil
}

// Schedule implements types.Scheduler.
//
// The task fires on a later tick, never synchronously, so delay zero still
// waits one full tick.
func (w *Wheel) Schedule(delay time.Duration, task types.Task) (types.TimerHandle, error) {
	if task == nil {
		return nil, ErrNilTask
	}
	if !w.started.Load() {
		return nil, ErrNotStarted
	}

	ticks := int64((delay + w.cfg.Tick - 1) / w.cfg.Tick)
	if ticks < 1 {
		ticks = 1
	}
	t := &timeout{task: task, ticks: ticks}

	w.pendMu.Lock()
	if w.closed {
		w.pendMu.Unlock()
		return nil, ErrStopped
	}
	w.pending = append(w.pending, t)
	w.count.Add(1)
	w.pendMu.Unlock()

	return t, nil
}

// Pending returns the number of timeouts currently tracked. Canceled
// timeouts are counted until the ring reaps them on their slot's next pass.
func (w *Wheel) Pending() int {
	return int(w.count.Load())
}

// run is the tick loop. It owns the buckets and the tick counter.
func (w *Wheel) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.advance()
		}
	}
}

// advance processes one tick: the current bucket is swept, then newly
// scheduled timeouts are placed into their buckets. The sweep comes first so
// a timeout whose delay is an exact multiple of the ring size lands in the
// bucket just swept and waits the full rotations it asked for.
func (w *Wheel) advance() {
	cur := w.tickNo
	w.processBucket(int(cur % int64(len(w.buckets))))
	w.transferPending(cur)
	w.tickNo = cur + 1
}

// transferPending moves newly scheduled timeouts into ring buckets. Doing
// this on the tick goroutine keeps bucket access single-threaded; a timeout
// transferred at tick T is first swept strictly after T, firing at exactly
// tick T plus its delay in ticks.
func (w *Wheel) transferPending(cur int64) {
	w.pendMu.Lock()
	batch := w.pending
	w.pending = nil
	w.pendMu.Unlock()

	size := int64(len(w.buckets))
	for _, t := range batch {
		if t.state.Load() != statePending { // canceled before its first tick
			w.count.Add(-1)
			continue
		}
		deadline := cur + t.ticks
		t.rounds = (t.ticks - 1) / size
		w.buckets[deadline%size][t] = struct{}{}
	}
}

// processBucket fires due timeouts in one bucket, reaps canceled ones and
// decrements the round count of the rest.
func (w *Wheel) processBucket(idx int) {
	bucket := w.buckets[idx]
	for t := range bucket {
		switch t.state.Load() {
		case stateCanceled:
			delete(bucket, t)
			w.count.Add(-1)
		case statePending:
			if t.rounds > 0 {
				t.rounds--
				continue
			}
			delete(bucket, t)
			w.count.Add(-1)
			if !t.state.CompareAndSwap(statePending, stateFired) {
				continue // canceled in the race window
			}
			w.submit(t.task)
		}
	}
}

// submit hands a fired task to the worker pool without ever blocking the
// tick loop. A full queue rejects the task through its Drop method.
func (w *Wheel) submit(task types.Task) {
	select {
	case w.queue <- task:
	default:
		w.invokeDrop(task, ErrQueueFull)
		w.notifyFailure(fmt.Errorf("task rejected: %w", ErrQueueFull))
	}
}

func (w *Wheel) dropTimeout(t *timeout, reason error) {
	w.count.Add(-1)
	if !t.state.CompareAndSwap(statePending, stateDropped) {
		return // already canceled or fired
	}
	w.invokeDrop(t.task, reason)
}

// invokeDrop shields the tick loop from misbehaving Drop implementations.
func (w *Wheel) invokeDrop(task types.Task, reason error) {
	defer func() {
		if r := recover(); r != nil {
			w.notifyFailure(fmt.Errorf("task drop panicked: %v", r))
		}
	}()
	task.Drop(reason)
}

func (w *Wheel) worker() {
	defer w.workerWG.Done()
	for task := range w.queue {
		w.execute(task)
	}
}

// execute runs one task, converting panics into failure notifications so a
// bad task cannot kill the worker pool.
func (w *Wheel) execute(task types.Task) {
	defer func() {
		if r := recover(); r != nil {
			w.notifyFailure(fmt.Errorf("task execution panicked: %v", r))
		}
	}()
	task.Run()
}

func (w *Wheel) notifyFailure(err error) {
	if w.cfg.OnTaskFailure != nil {
		w.cfg.OnTaskFailure(err)
	}
}

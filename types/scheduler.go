package types

import "time"

// Task is a unit of delayed work accepted by a Scheduler.
//
// Exactly one of Run or Drop is invoked for every accepted task, at most
// once, unless the task is canceled first through its TimerHandle.
type Task interface {
	// Run executes the task. It is called on a scheduler worker goroutine,
	// never on the tick loop, so it may perform blocking work.
	Run()

	// Drop is called instead of Run when an accepted task will never
	// execute, such as on worker-queue rejection or scheduler shutdown.
	// It lets the owner release any per-key state tied to the pending task.
	//
	// Drop may be invoked from the scheduler's tick loop and must be fast
	// and non-blocking.
	Drop(err error)
}

// TimerHandle represents a single pending task accepted by a Scheduler.
type TimerHandle interface {
	// Cancel marks the pending task canceled so it is discarded instead of
	// executed. It returns true if the task was still pending, false if it
	// already fired, was dropped, or was canceled before.
	//
	// Neither Run nor Drop is invoked for a successfully canceled task.
	Cancel() bool
}

// Scheduler is a low-overhead facility for running many delayed tasks.
//
// Implementations must tolerate a large number of concurrently pending
// tasks and execute fired tasks asynchronously so that a slow task never
// delays other pending tasks. The hashed wheel timer in internal/wheel is
// the default implementation used by the lease manager.
type Scheduler interface {
	// Schedule arranges for task to run after delay.
	//
	// Parameters:
	//   - delay: How long to wait before running; rounded up to the
	//     scheduler's tick granularity, minimum one tick
	//   - task: The task to execute
	//
	// Returns:
	//   - TimerHandle: Handle for canceling the pending task
	//   - error: Scheduling error when the scheduler cannot accept the task
	Schedule(delay time.Duration, task Task) (TimerHandle, error)
}

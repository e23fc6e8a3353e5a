package wheel

import "errors"

var (
	// ErrNotStarted is returned when scheduling on a wheel that was never started.
	ErrNotStarted = errors.New("wheel not started")

	// ErrAlreadyStarted is returned when starting a wheel twice.
	ErrAlreadyStarted = errors.New("wheel already started")

	// ErrStopped is returned when scheduling on a stopped wheel, and is the
	// drop reason passed to tasks drained during shutdown.
	ErrStopped = errors.New("wheel stopped")

	// ErrQueueFull is the drop reason passed to a task whose execution was
	// rejected because the worker queue was full.
	ErrQueueFull = errors.New("worker queue full")

	// ErrNilTask is returned when scheduling a nil task.
	ErrNilTask = errors.New("task is nil")
)

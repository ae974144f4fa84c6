package scheduler

import "errors"

var (
	// ErrHalted is returned when the scheduler no longer hands out its turn.
	ErrHalted = errors.New("scheduler halted")

	// ErrClosed is returned when submitting to a scheduler that was closed.
	ErrClosed = errors.New("scheduler closed")

	// ErrAlreadyRunning is returned by Run when the run phase was already entered.
	ErrAlreadyRunning = errors.New("scheduler already running")

	// ErrTaskPanicked wraps the value recovered from a panicking job.
	ErrTaskPanicked = errors.New("task panicked")

	// ErrTurnLost is returned when a job suspends without holding the turn,
	// which happens after a previous suspension failed to reacquire it.
	ErrTurnLost = errors.New("scheduler turn not held")

	// ErrNilFactory is returned when submitting a nil factory or a factory producing a nil job.
	ErrNilFactory = errors.New("nil task factory")
)

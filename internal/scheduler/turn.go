package scheduler

import (
	"context"
	"errors"
	"runtime"
	"time"
)

// Turn is the right to execute on the scheduler. Every blocking operation a
// job performs must go through one of the suspension points below, so that
// other jobs can run while it waits. State shared between jobs is only
// consistent between two suspension points.
type Turn struct {
	s    *Scheduler
	ctx  context.Context
	held bool
}

// Await releases the turn, runs fn, and reacquires the turn before returning.
// When the turn cannot be reacquired (halt or cancellation) the returned error
// includes ErrHalted or the context error, and the job must return without
// touching shared state.
func (t *Turn) Await(fn func() error) error {
	if !t.held {
		return ErrTurnLost
	}
	t.held = false
	t.s.release()

	err := fn()

	if aerr := t.s.acquire(t.ctx); aerr != nil {
		return errors.Join(aerr, err)
	}
	t.held = true
	return err
}

// Sleep suspends the job for d, or until its context ends.
func (t *Turn) Sleep(d time.Duration) error {
	return t.Await(func() error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-t.ctx.Done():
			return t.ctx.Err()
		}
	})
}

// Yield lets other ready jobs run before continuing.
func (t *Turn) Yield() error {
	return t.Await(func() error {
		runtime.Gosched()
		return nil
	})
}

// Held reports whether the job currently holds the turn.
func (t *Turn) Held() bool {
	return t.held
}

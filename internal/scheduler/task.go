package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gofrs/uuid/v5"
)

// Job is a long-running unit of cooperative work. A job holds the scheduler
// turn while its code executes and gives it up only at the suspension points
// offered by the Turn.
type Job func(ctx context.Context, turn *Turn) error

// Factory produces a Job when invoked. Engines return factories after
// configuration; the scheduler invokes each one exactly once per submission.
type Factory func() Job

// Task is the handle of one submitted job.
type Task struct {
	ID      uuid.UUID
	Name    string
	Attempt int

	factory Factory
	job     Job

	started  atomic.Bool
	done     chan struct{}
	finish   sync.Once
	errMutex sync.Mutex
	err      error
}

func newTask(name string, factory Factory, attempt int) (*Task, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	job := factory()
	if job == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilFactory, name)
	}
	return &Task{
		ID:      uuid.Must(uuid.NewV6()),
		Name:    name,
		Attempt: attempt,
		factory: factory,
		job:     job,
		done:    make(chan struct{}),
	}, nil
}

// String returns the task name and a short id.
func (t *Task) String() string {
	id := t.ID.String()
	return fmt.Sprintf("%s[%s]", t.Name, id[len(id)-8:])
}

// Factory returns the factory the task was created from.
func (t *Task) Factory() Factory {
	return t.factory
}

// Started reports whether the job ever acquired the scheduler turn.
func (t *Task) Started() bool {
	return t.started.Load()
}

// Done returns a channel closed once the job has returned or was abandoned before starting.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the error the job finished with. It is nil until Done is closed.
func (t *Task) Err() error {
	t.errMutex.Lock()
	defer t.errMutex.Unlock()
	return t.err
}

func (t *Task) complete(err error) {
	t.finish.Do(func() {
		t.errMutex.Lock()
		t.err = err
		t.errMutex.Unlock()
		close(t.done)
	})
}

// Event is published on the scheduler event channel for every job that ran.
type Event struct {
	Task *Task
	Err  error
}

// Failed reports whether the job ended with an error other than a cancellation
// or a halt of the scheduler.
func (e Event) Failed() bool {
	if e.Err == nil {
		return false
	}
	return !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, ErrHalted)
}

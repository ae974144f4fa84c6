// Package scheduler provides a cooperative job scheduler. Jobs run on their
// own goroutines but only one of them executes at a time: a single turn token
// is passed between jobs at explicit suspension points (see Turn).
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

const defaultEventBuffer = 64

// Scheduler runs submitted jobs cooperatively and reports every finished job
// on its event channel.
type Scheduler struct {
	logger      *slog.Logger
	eventBuffer int

	turn   chan struct{}
	events chan Event

	halted    chan struct{}
	haltOnce  sync.Once
	haltCause error

	onFailure FailureHandler

	ctx    context.Context
	cancel context.CancelFunc

	mutex   sync.Mutex
	tasks   []*Task
	running bool
	closed  bool
	wg      sync.WaitGroup
}

// New creates a scheduler. Jobs may be submitted right away; none of them
// executes before Run is called.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:      slog.Default().WithGroup("scheduler.Scheduler"),
		eventBuffer: defaultEventBuffer,
		turn:        make(chan struct{}, 1),
		halted:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = make(chan Event, s.eventBuffer)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// FailureHandler decides what happens to the scheduler when a job fails. It
// runs on the failed job's goroutine before the turn is passed on; a non-nil
// return value halts the scheduler with that cause, so no other job runs after
// the failure.
type FailureHandler func(ev Event) error

// SetFailureHandler installs the failure handler. It must be called before
// Run.
func (s *Scheduler) SetFailureHandler(fn FailureHandler) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.onFailure = fn
}

// String implements fmt.Stringer
func (s *Scheduler) String() string {
	return "scheduler.Scheduler"
}

// Submit invokes the factory and schedules the resulting job.
func (s *Scheduler) Submit(name string, factory Factory) (*Task, error) {
	return s.submit(name, factory, 0)
}

// Resubmit schedules a new job from the factory of a finished task.
func (s *Scheduler) Resubmit(prev *Task) (*Task, error) {
	return s.submit(prev.Name, prev.factory, prev.Attempt+1)
}

func (s *Scheduler) submit(name string, factory Factory, attempt int) (*Task, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.Halted() {
		return nil, ErrHalted
	}

	task, err := newTask(name, factory, attempt)
	if err != nil {
		return nil, err
	}

	s.tasks = append(s.tasks, task)
	s.wg.Add(1)
	go s.execute(task)

	s.logger.Debug("Task submitted", "task", task.String(), "attempt", attempt)
	return task, nil
}

// Run enters the run phase: the turn is handed out for the first time and the
// call blocks until the context ends, the scheduler is halted, or it is closed.
// It returns the halt cause, if any.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrClosed
	}
	if s.running {
		s.mutex.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mutex.Unlock()

	s.logger.Debug("Scheduler running")
	s.release()

	select {
	case <-ctx.Done():
		return nil
	case <-s.halted:
		return s.Cause()
	case <-s.ctx.Done():
		return nil
	}
}

// Running reports whether Run was entered.
func (s *Scheduler) Running() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.running
}

// Events returns the channel on which finished jobs are reported.
func (s *Scheduler) Events() <-chan Event {
	return s.events
}

// Tasks returns a snapshot of every task submitted so far.
func (s *Scheduler) Tasks() []*Task {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	tasks := make([]*Task, len(s.tasks))
	copy(tasks, s.tasks)
	return tasks
}

// Do runs fn while holding the turn. It is the entry point for code that does
// not run as a job, such as HTTP handlers. Do must not be called from inside a
// job, which already holds the turn.
func (s *Scheduler) Do(ctx context.Context, fn func() error) (err error) {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return fn()
}

// Halt stops handing out the turn. Jobs that are suspended are abandoned: they
// are not cancelled, but they can never resume. Only the first cause is kept.
func (s *Scheduler) Halt(cause error) {
	s.haltOnce.Do(func() {
		s.haltCause = cause
		close(s.halted)
		if cause != nil {
			s.logger.Warn("Scheduler halted", "cause", cause)
		} else {
			s.logger.Debug("Scheduler halted")
		}
	})
}

// Halted reports whether Halt was called.
func (s *Scheduler) Halted() bool {
	select {
	case <-s.halted:
		return true
	default:
		return false
	}
}

// Cause returns the error passed to Halt.
func (s *Scheduler) Cause() error {
	if !s.Halted() {
		return nil
	}
	return s.haltCause
}

// Drain cancels the context of every job and waits for all job goroutines to
// return, or for ctx to end. The turn is still handed out while draining so
// jobs can run their cleanup.
func (s *Scheduler) Drain(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining scheduler: %w", ctx.Err())
	}
}

// Close halts the scheduler and cancels every job context. It is safe to call
// more than once.
func (s *Scheduler) Close() error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return nil
	}
	s.closed = true
	s.mutex.Unlock()

	s.Halt(nil)
	s.cancel()
	s.logger.Debug("Scheduler closed")
	return nil
}

func (s *Scheduler) execute(task *Task) {
	defer s.wg.Done()

	turn := &Turn{s: s, ctx: s.ctx}
	if err := s.acquire(s.ctx); err != nil {
		task.complete(err)
		return
	}
	turn.held = true
	task.started.Store(true)
	s.logger.Debug("Task started", "task", task.String())

	err := s.invoke(task, turn)
	ev := Event{Task: task, Err: err}
	if ev.Failed() {
		s.judge(ev)
	}
	if turn.held {
		turn.held = false
		s.release()
	}
	task.complete(err)

	s.logger.Debug("Task finished", "task", task.String(), "error", err)
	s.publish(ev)
}

// judge runs the failure handler and halts when it returns a cause.
func (s *Scheduler) judge(ev Event) {
	s.mutex.Lock()
	fn := s.onFailure
	s.mutex.Unlock()
	if fn == nil {
		return
	}
	if cause := fn(ev); cause != nil {
		s.Halt(cause)
	}
}

func (s *Scheduler) invoke(task *Task, turn *Turn) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrTaskPanicked, task.Name, r)
		}
	}()
	return task.job(s.ctx, turn)
}

func (s *Scheduler) publish(ev Event) {
	select {
	case s.events <- ev:
	case <-s.halted:
	case <-s.ctx.Done():
	}
}

// acquire blocks until the turn is free. It fails once the scheduler is
// halted, even when the turn happens to be available.
func (s *Scheduler) acquire(ctx context.Context) error {
	if s.Halted() {
		return ErrHalted
	}
	select {
	case <-s.turn:
		if s.Halted() {
			s.release()
			return ErrHalted
		}
		return nil
	case <-s.halted:
		return ErrHalted
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) release() {
	select {
	case s.turn <- struct{}{}:
	default:
	}
}

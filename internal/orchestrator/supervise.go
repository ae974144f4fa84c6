package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/atlanticdynamic/bottery/internal/config"
	"github.com/atlanticdynamic/bottery/internal/httpboot"
	"github.com/atlanticdynamic/bottery/internal/scheduler"
)

// supervise starts the scheduler run phase and consumes task events until the
// context ends or the failure policy halts the scheduler.
func (o *Orchestrator) supervise(ctx context.Context) error {
	sched := o.resources.Scheduler()

	runDone := make(chan error, 1)
	go func() { runDone <- sched.Run(ctx) }()

	var listenerDone <-chan struct{}
	listener := o.Listener()
	if listener != nil {
		listenerDone = listener.Done()
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-runDone:
			// only a halt ends the run phase while ctx is live
			if ctx.Err() != nil {
				return nil
			}
			if err == nil {
				err = scheduler.ErrHalted
			}
			if errors.Is(err, ErrTaskFailed) {
				return err
			}
			return fmt.Errorf("%w: %w", ErrTaskFailed, err)

		case <-listenerDone:
			err := fmt.Errorf("%w: http listener %s: %w", ErrTaskFailed, listener.Address(),
				errors.Join(httpboot.ErrListenerStopped, listener.Err()))
			o.failureLogger.Error("HTTP listener failed", "address", listener.Address(), "error", listener.Err())
			sched.Halt(err)
			return err

		case ev := <-sched.Events():
			if err := o.handleEvent(sched, ev); err != nil {
				return err
			}
		}
	}
}

// judgeFailure applies the failure policy. The scheduler calls it while the
// failed task still holds the turn; a non-nil result halts the scheduler.
func (o *Orchestrator) judgeFailure(ev scheduler.Event) error {
	task := ev.Task
	o.failureLogger.Error("Task failed",
		"task", task.String(),
		"attempt", task.Attempt,
		"policy", o.policy,
		"error", ev.Err)

	o.mutex.Lock()
	defer o.mutex.Unlock()
	switch o.policy {
	case config.FailurePolicyIsolate:
		return nil
	case config.FailurePolicyRestart:
		if o.restarts[task.Name] < o.maxRestarts {
			o.restarts[task.Name]++
			return nil
		}
		o.logger.Error("Task exceeded its restart limit", "task", task.String(), "max", o.maxRestarts)
	}
	return fmt.Errorf("%w: %s: %w", ErrTaskFailed, task.Name, ev.Err)
}

// handleEvent acts on a finished task once the scheduler published it. A
// non-nil return value means the scheduler was halted.
func (o *Orchestrator) handleEvent(sched *scheduler.Scheduler, ev scheduler.Event) error {
	task := ev.Task
	if !ev.Failed() {
		o.logger.Debug("Task finished", "task", task.String(), "error", ev.Err)
		return nil
	}
	if sched.Halted() {
		if cause := sched.Cause(); cause != nil {
			return cause
		}
		return fmt.Errorf("%w: %w", ErrTaskFailed, scheduler.ErrHalted)
	}

	switch o.policy {
	case config.FailurePolicyIsolate:
		o.logger.Warn("Task isolated, other tasks keep running", "task", task.String())
	case config.FailurePolicyRestart:
		next, err := sched.Resubmit(task)
		if err != nil {
			o.logger.Error("Failed to restart task", "task", task.String(), "error", err)
			cause := fmt.Errorf("%w: %s: %w", ErrTaskFailed, task.Name, errors.Join(ev.Err, err))
			sched.Halt(cause)
			return sched.Cause()
		}
		o.mutex.Lock()
		o.tasks = append(o.tasks, next)
		restart := o.restarts[task.Name]
		o.mutex.Unlock()
		o.logger.Warn("Task restarted", "task", next.String(), "restart", restart, "max", o.maxRestarts)
	}
	return nil
}

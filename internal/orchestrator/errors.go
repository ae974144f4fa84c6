package orchestrator

import "errors"

var (
	// ErrEngineConfiguration wraps the error of an engine whose Configure failed.
	ErrEngineConfiguration = errors.New("engine configuration failed")
	// ErrTaskFailed wraps the failure that made the supervisor halt the scheduler.
	ErrTaskFailed = errors.New("task failed")
	// ErrScheduling wraps a task the scheduler refused to accept.
	ErrScheduling = errors.New("failed to schedule task")
	// ErrHTTPBind wraps a listener that could not bind or never became ready.
	ErrHTTPBind = errors.New("failed to bind HTTP listener")
)

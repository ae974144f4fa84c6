// Package finitestate tracks the orchestrator lifecycle with a finite state
// machine.
package finitestate

import (
	"context"
	"log/slog"

	"github.com/robbyt/go-fsm"
)

// Orchestrator lifecycle states. Stopped and Crashed are terminal.
const (
	StatusCreated     = "Created"
	StatusLoading     = "Loading"
	StatusConfiguring = "Configuring"
	StatusScheduled   = "Scheduled"
	StatusRunning     = "Running"
	StatusStopping    = "Stopping"
	StatusStopped     = "Stopped"
	StatusCrashed     = "Crashed"
)

// OrchestratorTransitions lists the allowed moves between lifecycle states.
// A stop request is accepted from every non-terminal state.
var OrchestratorTransitions = map[string][]string{
	StatusCreated:     {StatusLoading, StatusStopping, StatusCrashed},
	StatusLoading:     {StatusConfiguring, StatusStopping, StatusCrashed},
	StatusConfiguring: {StatusScheduled, StatusStopping, StatusCrashed},
	StatusScheduled:   {StatusRunning, StatusStopping, StatusCrashed},
	StatusRunning:     {StatusStopping, StatusCrashed},
	StatusStopping:    {StatusStopped, StatusCrashed},
	StatusStopped:     {},
	StatusCrashed:     {},
}

// Machine is the subset of the state machine the orchestrator relies on.
type Machine interface {
	// Transition moves to state, failing when the move is not allowed.
	Transition(state string) error

	// TransitionBool is Transition without the error detail.
	TransitionBool(state string) bool

	// SetState forces state without checking the transition table.
	SetState(state string) error

	// GetState returns the current state.
	GetState() string

	// GetStateChan returns a channel that emits every new state. It is closed
	// when ctx is cancelled.
	GetStateChan(ctx context.Context) <-chan string
}

// New creates a machine in StatusCreated using OrchestratorTransitions.
func New(handler slog.Handler) (Machine, error) {
	machine, err := fsm.New(handler, StatusCreated, OrchestratorTransitions)
	if err != nil {
		return nil, err
	}
	return machine, nil
}

// IsTerminal reports whether no transition leaves state.
func IsTerminal(state string) bool {
	return state == StatusStopped || state == StatusCrashed
}

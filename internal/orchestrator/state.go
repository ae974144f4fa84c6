package orchestrator

import (
	"context"

	"github.com/atlanticdynamic/bottery/internal/finitestate"
)

// GetState returns the current lifecycle state.
func (o *Orchestrator) GetState() string {
	return o.fsm.GetState()
}

// GetStateChan returns a channel emitting every lifecycle state change.
func (o *Orchestrator) GetStateChan(ctx context.Context) <-chan string {
	return o.fsm.GetStateChan(ctx)
}

// IsRunning reports whether the orchestrator is supervising scheduled tasks.
func (o *Orchestrator) IsRunning() bool {
	return o.fsm.GetState() == finitestate.StatusRunning
}

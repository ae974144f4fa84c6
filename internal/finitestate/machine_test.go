package finitestate

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMachine(t *testing.T) Machine {
	t.Helper()
	m, err := New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	require.NoError(t, err)
	return m
}

func TestMachine_HappyPath(t *testing.T) {
	m := newMachine(t)
	assert.Equal(t, StatusCreated, m.GetState())

	for _, state := range []string{
		StatusLoading,
		StatusConfiguring,
		StatusScheduled,
		StatusRunning,
		StatusStopping,
		StatusStopped,
	} {
		require.NoError(t, m.Transition(state), "transition to %s", state)
		assert.Equal(t, state, m.GetState())
	}
}

func TestMachine_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []string
		next string
	}{
		{"skip loading", nil, StatusRunning},
		{"back to loading", []string{StatusLoading, StatusConfiguring}, StatusLoading},
		{"leave stopped", []string{StatusStopping, StatusStopped}, StatusRunning},
		{"leave crashed", []string{StatusCrashed}, StatusStopping},
		{"running to stopped", []string{StatusLoading, StatusConfiguring, StatusScheduled, StatusRunning}, StatusStopped},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newMachine(t)
			for _, state := range tc.path {
				require.NoError(t, m.Transition(state))
			}
			require.Error(t, m.Transition(tc.next))
			assert.False(t, m.TransitionBool(tc.next))
		})
	}
}

func TestMachine_CrashFromEveryActiveState(t *testing.T) {
	path := []string{StatusLoading, StatusConfiguring, StatusScheduled, StatusRunning, StatusStopping}
	for i := range path {
		m := newMachine(t)
		for _, state := range path[:i+1] {
			require.NoError(t, m.Transition(state))
		}
		assert.True(t, m.TransitionBool(StatusCrashed), "crash from %s", m.GetState())
	}
}

func TestMachine_StateChan(t *testing.T) {
	m := newMachine(t)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	ch := m.GetStateChan(ctx)
	receive := func() string {
		t.Helper()
		select {
		case state := <-ch:
			return state
		case <-time.After(time.Second):
			t.Fatal("no state received")
			return ""
		}
	}

	// the current state is delivered first and must be consumed before the
	// next broadcast fits in the channel
	assert.Equal(t, StatusCreated, receive())

	require.NoError(t, m.Transition(StatusLoading))
	assert.Equal(t, StatusLoading, receive())

	require.NoError(t, m.Transition(StatusConfiguring))
	assert.Equal(t, StatusConfiguring, receive())
}

func TestIsTerminal(t *testing.T) {
	for state, next := range OrchestratorTransitions {
		assert.Equal(t, len(next) == 0, IsTerminal(state), state)
	}
}

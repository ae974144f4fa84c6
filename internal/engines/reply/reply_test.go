package reply

import (
	"context"
	"errors"
	"testing"

	"github.com/atlanticdynamic/bottery/internal/conversations"
	"github.com/atlanticdynamic/bottery/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswer(t *testing.T) {
	store := conversations.New()
	msg := handlers.Message{Platform: "hooks", Conversation: "c1", Text: "ping"}

	out, err := Answer(t.Context(), handlers.Default(), store, msg)
	require.NoError(t, err)
	assert.Equal(t, "pong", out)

	msg.Text = "hello"
	out, err = Answer(t.Context(), handlers.Default(), store, msg)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	raw, ok := store.Get("hooks:c1")
	require.True(t, ok)
	state, ok := raw.(State)
	require.True(t, ok)
	assert.Equal(t, 2, state.Messages)
	assert.Equal(t, "echo", state.Handler)
	assert.Equal(t, "hello", state.LastReply)
	assert.Equal(t, "hooks", state.Platform)
	assert.False(t, state.UpdatedAt.IsZero())
}

func TestAnswer_NoMatch(t *testing.T) {
	store := conversations.New()
	_, err := Answer(t.Context(), handlers.Set{}, store, handlers.Message{Text: "x"})
	require.ErrorIs(t, err, handlers.ErrNoMatch)
	assert.Equal(t, 0, store.Len())
}

func TestAnswer_HandlerError(t *testing.T) {
	boom := errors.New("boom")
	set := handlers.Set{handlers.Func{
		ID:      "broken",
		Matches: func(string) bool { return true },
		Reply: func(context.Context, handlers.Message) (string, error) {
			return "", boom
		},
	}}
	store := conversations.New()

	_, err := Answer(t.Context(), set, store, handlers.Message{Text: "x"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())
}

func TestAnswer_NilStore(t *testing.T) {
	out, err := Answer(t.Context(), handlers.Default(), nil, handlers.Message{Text: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
}

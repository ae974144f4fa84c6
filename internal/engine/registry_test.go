package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Empty(t, reg.Names())

	require.NoError(t, reg.Register("webhook", stubConstructor))
	require.NoError(t, reg.Register("chat", stubConstructor))
	assert.Equal(t, []string{"chat", "webhook"}, reg.Names())

	err := reg.Register("chat", stubConstructor)
	require.ErrorIs(t, err, ErrDuplicateEngine)

	err = reg.Register("nil", nil)
	require.ErrorIs(t, err, ErrNilConstructor)

	ctor, err := reg.Lookup("webhook")
	require.NoError(t, err)
	assert.NotNil(t, ctor)

	_, err = reg.Lookup("irc")
	require.ErrorIs(t, err, ErrUnknownEngine)
	assert.Contains(t, err.Error(), "irc")
}

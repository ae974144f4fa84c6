package engines

import (
	"testing"

	"github.com/atlanticdynamic/bottery/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{"poller", "socketio", "webhook"}, reg.Names())

	for _, name := range reg.Names() {
		ctor, err := reg.Lookup(name)
		require.NoError(t, err)
		assert.NotNil(t, ctor)
	}
}

func TestRegisterBuiltins(t *testing.T) {
	require.ErrorIs(t, RegisterBuiltins(nil), engine.ErrNilRegistry)

	reg := engine.NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))
	require.ErrorIs(t, RegisterBuiltins(reg), engine.ErrDuplicateEngine)
}

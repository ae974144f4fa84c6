package engine

import (
	"testing"
	"time"

	"github.com/atlanticdynamic/bottery/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Accessors(t *testing.T) {
	opts := NewOptions(map[string]any{
		"url":       "http://localhost",
		"empty":     "",
		"count64":   int64(3),
		"count":     7,
		"countF":    float64(9),
		"fraction":  1.5,
		"enabled":   true,
		"interval":  "250ms",
		"timeout":   2 * time.Second,
		"cfgDur":    config.Duration(time.Minute),
		"badDur":    "often",
		"wrongType": []string{"x"},
	})

	t.Run("string", func(t *testing.T) {
		s, err := opts.String("url", "")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost", s)

		s, err = opts.String("absent", "fallback")
		require.NoError(t, err)
		assert.Equal(t, "fallback", s)

		_, err = opts.String("count", "")
		require.ErrorIs(t, err, ErrInvalidOption)

		_, err = opts.RequireString("empty")
		require.ErrorIs(t, err, ErrMissingOption)

		_, err = opts.RequireString("absent")
		require.ErrorIs(t, err, ErrMissingOption)
	})

	t.Run("int", func(t *testing.T) {
		tests := []struct {
			key     string
			want    int
			wantErr bool
		}{
			{"count64", 3, false},
			{"count", 7, false},
			{"countF", 9, false},
			{"absent", 42, false},
			{"fraction", 0, true},
			{"url", 0, true},
		}
		for _, tc := range tests {
			t.Run(tc.key, func(t *testing.T) {
				n, err := opts.Int(tc.key, 42)
				if tc.wantErr {
					require.ErrorIs(t, err, ErrInvalidOption)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tc.want, n)
			})
		}
	})

	t.Run("bool", func(t *testing.T) {
		b, err := opts.Bool("enabled", false)
		require.NoError(t, err)
		assert.True(t, b)

		b, err = opts.Bool("absent", true)
		require.NoError(t, err)
		assert.True(t, b)

		_, err = opts.Bool("url", false)
		require.ErrorIs(t, err, ErrInvalidOption)
	})

	t.Run("duration", func(t *testing.T) {
		tests := []struct {
			key     string
			want    time.Duration
			wantErr bool
		}{
			{"interval", 250 * time.Millisecond, false},
			{"timeout", 2 * time.Second, false},
			{"cfgDur", time.Minute, false},
			{"absent", 5 * time.Second, false},
			{"badDur", 0, true},
			{"wrongType", 0, true},
		}
		for _, tc := range tests {
			t.Run(tc.key, func(t *testing.T) {
				d, err := opts.Duration(tc.key, 5*time.Second)
				if tc.wantErr {
					require.ErrorIs(t, err, ErrInvalidOption)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tc.want, d)
			})
		}
	})

	t.Run("resources absent", func(t *testing.T) {
		assert.Empty(t, opts.EngineName())
		assert.Nil(t, opts.Conversations())
		assert.Nil(t, opts.Handlers())
		assert.Nil(t, opts.Server())
		assert.Nil(t, opts.Scheduler())
		assert.Nil(t, opts.NetworkClient())
	})
}

func TestOptions_SharesMap(t *testing.T) {
	values := map[string]any{"a": 1}
	opts := NewOptions(values)
	values["b"] = 2

	assert.Equal(t, []string{"a", "b"}, opts.Keys())

	empty := NewOptions(nil)
	assert.Empty(t, empty.Keys())
}

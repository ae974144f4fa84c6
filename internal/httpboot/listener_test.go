package httpboot

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/atlanticdynamic/bottery/internal/testutil"
	"github.com/atlanticdynamic/bottery/internal/webapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *webapp.Application {
	t.Helper()
	app := webapp.New()
	require.NoError(t, app.Handle("hooks", "/hooks", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hooked")
	}))
	return app
}

func TestBindAndServe(t *testing.T) {
	app := newApp(t)
	port := testutil.GetRandomPort(t)

	l, err := BindAndServe(t.Context(), app, port, WithDrainTimeout(time.Second))
	require.NoError(t, err)
	t.Cleanup(l.Stop)

	assert.Equal(t, fmt.Sprintf(":%d", port), l.Address())
	assert.Equal(t, port, l.Port())
	assert.Len(t, l.Routes(), 1)

	// connectable as soon as BindAndServe returns
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), time.Second)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/hooks", port))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hooked", string(body))

	err = app.Handle("late", "/late", func(http.ResponseWriter, *http.Request) {})
	require.ErrorIs(t, err, webapp.ErrFrozen)
	assert.NoError(t, l.Err())
}

func TestBindAndServe_NoRoutes(t *testing.T) {
	_, err := BindAndServe(t.Context(), webapp.New(), testutil.GetRandomPort(t))
	require.ErrorIs(t, err, ErrNoRoutes)

	_, err = BindAndServe(t.Context(), nil, testutil.GetRandomPort(t))
	require.ErrorIs(t, err, ErrNoRoutes)
}

func TestBindAndServe_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		_, err := BindAndServe(t.Context(), newApp(t), port)
		require.ErrorIs(t, err, ErrInvalidPort)
	}
}

func TestListener_StopIsIdempotent(t *testing.T) {
	port := testutil.GetRandomPort(t)
	l, err := BindAndServe(t.Context(), newApp(t), port)
	require.NoError(t, err)

	l.Stop()
	l.Stop()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
	assert.NoError(t, l.Err(), "a requested stop is not a failure")

	assert.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), 50*time.Millisecond)
		if err != nil {
			return true
		}
		_ = conn.Close()
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atlanticdynamic/bottery/internal/conversations"
	"github.com/atlanticdynamic/bottery/internal/engine"
	"github.com/atlanticdynamic/bottery/internal/engines/reply"
	"github.com/atlanticdynamic/bottery/internal/handlers"
	"github.com/atlanticdynamic/bottery/internal/scheduler"
	"github.com/atlanticdynamic/bottery/internal/webapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	app   *webapp.Application
	sched *scheduler.Scheduler
	store *conversations.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		app:   webapp.New(),
		sched: scheduler.New(),
		store: conversations.New(),
	}
	t.Cleanup(func() { require.NoError(t, f.sched.Close()) })
	return f
}

func (f *fixture) options(name string, extra map[string]any) *engine.Options {
	values := map[string]any{
		engine.KeyEngineName:    name,
		engine.KeyServer:        f.app,
		engine.KeyScheduler:     f.sched,
		engine.KeyConversations: f.store,
		engine.KeyHandlers:      handlers.Default(),
	}
	for k, v := range extra {
		values[k] = v
	}
	return engine.NewOptions(values)
}

func (f *fixture) run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	t.Cleanup(cancel)
	go func() { _ = f.sched.Run(ctx) }()
}

func post(t *testing.T, e *Engine, method, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(method, e.Path(), strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestNew(t *testing.T) {
	f := newFixture(t)

	eng, err := New(f.options("hooks", nil))
	require.NoError(t, err)
	assert.Equal(t, "/hooks", eng.(*Engine).Path())

	eng, err = New(f.options("hooks", map[string]any{"path": "/in"}))
	require.NoError(t, err)
	assert.Equal(t, "/in", eng.(*Engine).Path())

	_, err = New(f.options("hooks", map[string]any{"path": "relative"}))
	require.ErrorIs(t, err, engine.ErrInvalidOption)

	_, err = New(f.options("hooks", map[string]any{"path": 5}))
	require.ErrorIs(t, err, engine.ErrInvalidOption)

	_, err = New(engine.NewOptions(map[string]any{engine.KeyEngineName: "bare"}))
	require.ErrorIs(t, err, engine.ErrMissingOption)
}

func TestConfigure_RegistersRoute(t *testing.T) {
	f := newFixture(t)
	eng, err := New(f.options("hooks", nil))
	require.NoError(t, err)

	require.NoError(t, eng.Configure(t.Context()))
	assert.True(t, f.app.Touched())
	assert.Equal(t, "/hooks", f.app.Routes()[0].Path)
	assert.Empty(t, eng.Tasks())

	other, err := New(f.options("other", map[string]any{"path": "/hooks"}))
	require.NoError(t, err)
	require.ErrorIs(t, other.Configure(t.Context()), webapp.ErrDuplicatePath)
}

func TestServeHTTP(t *testing.T) {
	f := newFixture(t)
	eng, err := New(f.options("hooks", nil))
	require.NoError(t, err)
	e := eng.(*Engine)
	f.run(t)

	t.Run("answers", func(t *testing.T) {
		rec, resp := post(t, e, http.MethodPost, `{"conversation":"c1","text":"ping"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "pong", resp.Reply)

		raw, ok := f.store.Get("hooks:c1")
		require.True(t, ok)
		assert.Equal(t, 1, raw.(reply.State).Messages)
	})

	t.Run("sender as conversation", func(t *testing.T) {
		rec, resp := post(t, e, http.MethodPost, `{"sender":"u9","text":"hi"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hi", resp.Reply)
		_, ok := f.store.Get("hooks:u9")
		assert.True(t, ok)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec, _ := post(t, e, http.MethodGet, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("bad json", func(t *testing.T) {
		rec, resp := post(t, e, http.MethodPost, `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("missing text", func(t *testing.T) {
		rec, _ := post(t, e, http.MethodPost, `{"conversation":"c1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServeHTTP_NoMatch(t *testing.T) {
	f := newFixture(t)
	opts := f.options("hooks", map[string]any{engine.KeyHandlers: handlers.Set{}})
	eng, err := New(opts)
	require.NoError(t, err)
	f.run(t)

	rec, _ := post(t, eng.(*Engine), http.MethodPost, `{"conversation":"c1","text":"ping"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServeHTTP_Halted(t *testing.T) {
	f := newFixture(t)
	eng, err := New(f.options("hooks", nil))
	require.NoError(t, err)
	f.sched.Halt(nil)

	rec, _ := post(t, eng.(*Engine), http.MethodPost, `{"conversation":"c1","text":"ping"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

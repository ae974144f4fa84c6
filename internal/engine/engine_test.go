package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/atlanticdynamic/bottery/internal/config"
	"github.com/atlanticdynamic/bottery/internal/conversations"
	"github.com/atlanticdynamic/bottery/internal/handlers"
	"github.com/atlanticdynamic/bottery/internal/resources"
	"github.com/atlanticdynamic/bottery/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	opts *Options
}

func (e *stubEngine) Configure(context.Context) error { return nil }

func (e *stubEngine) Tasks() []scheduler.Factory { return nil }

func stubConstructor(opts *Options) (Engine, error) {
	return &stubEngine{opts: opts}, nil
}

func newGlobals(t *testing.T) GlobalOptions {
	t.Helper()
	res := resources.New()
	t.Cleanup(func() { require.NoError(t, res.Close()) })
	return NewGlobalOptions(res, conversations.New(), handlers.Default())
}

func newStubRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Register("stub", stubConstructor))
	return reg
}

func TestLoad_OneInstancePerPlatform(t *testing.T) {
	global := newGlobals(t)
	platforms := []config.Platform{
		{Name: "alpha", Engine: "stub"},
		{Name: "beta", Engine: "stub", Options: map[string]any{"path": "/beta"}},
		{Name: "gamma", Engine: "stub"},
	}

	instances, err := Load(platforms, global, newStubRegistry(t))
	require.NoError(t, err)
	require.Len(t, instances, len(platforms))

	for i, inst := range instances {
		assert.Equal(t, platforms[i].Name, inst.Name)
		assert.Equal(t, "stub", inst.Kind)
		assert.Equal(t, platforms[i].Name, inst.Options.EngineName())

		for key := range global.AsMap() {
			_, ok := inst.Options.Get(key)
			assert.True(t, ok, "instance %s misses global option %s", inst.Name, key)
		}
		assert.Same(t, global.Scheduler, inst.Options.Scheduler())
		assert.Same(t, global.Conversations, inst.Options.Conversations())
		assert.Same(t, global.Server, inst.Options.Server())
		assert.Same(t, global.NetworkClient, inst.Options.NetworkClient())
		assert.Len(t, inst.Options.Handlers(), len(global.Handlers))

		stub, ok := inst.Engine.(*stubEngine)
		require.True(t, ok)
		assert.Same(t, inst.Options, stub.opts)
	}

	path, err := instances[1].Options.String("path", "")
	require.NoError(t, err)
	assert.Equal(t, "/beta", path)
}

func TestLoad_MutatesPlatformOptionsInPlace(t *testing.T) {
	global := newGlobals(t)
	platforms := []config.Platform{{Name: "alpha", Engine: "stub"}}

	_, err := Load(platforms, global, newStubRegistry(t))
	require.NoError(t, err)

	require.NotNil(t, platforms[0].Options)
	assert.Equal(t, "alpha", platforms[0].Options[KeyEngineName])
	assert.Same(t, global.Scheduler, platforms[0].Options[KeyScheduler])
}

func TestLoad_GlobalKeysWin(t *testing.T) {
	global := newGlobals(t)
	ownScheduler := scheduler.New()
	t.Cleanup(func() { require.NoError(t, ownScheduler.Close()) })

	platforms := []config.Platform{{
		Name:   "alpha",
		Engine: "stub",
		Options: map[string]any{
			KeyScheduler:     ownScheduler,
			KeyConversations: "not a store",
			KeyEngineName:    "impostor",
		},
	}}

	instances, err := Load(platforms, global, newStubRegistry(t))
	require.NoError(t, err)

	assert.Same(t, global.Scheduler, instances[0].Options.Scheduler())
	assert.NotSame(t, ownScheduler, instances[0].Options.Scheduler())
	assert.Same(t, global.Conversations, instances[0].Options.Conversations())
	assert.Equal(t, "alpha", instances[0].Options.EngineName())
}

func TestLoad_Errors(t *testing.T) {
	global := newGlobals(t)

	t.Run("no platforms", func(t *testing.T) {
		instances, err := Load(nil, global, newStubRegistry(t))
		require.ErrorIs(t, err, ErrNoPlatformsConfigured)
		assert.Nil(t, instances)
	})

	t.Run("nil registry", func(t *testing.T) {
		_, err := Load([]config.Platform{{Name: "a", Engine: "stub"}}, global, nil)
		require.ErrorIs(t, err, ErrNilRegistry)
	})

	t.Run("unknown engine", func(t *testing.T) {
		_, err := Load([]config.Platform{{Name: "a", Engine: "missing"}}, global, newStubRegistry(t))
		require.ErrorIs(t, err, ErrUnknownEngine)

		var pErr *PlatformError
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, "a", pErr.Platform)
		assert.Contains(t, err.Error(), "[a]")
	})

	t.Run("constructor failure", func(t *testing.T) {
		boom := errors.New("boom")
		reg := newStubRegistry(t)
		require.NoError(t, reg.Register("broken", func(*Options) (Engine, error) { return nil, boom }))

		platforms := []config.Platform{
			{Name: "ok", Engine: "stub"},
			{Name: "bad", Engine: "broken"},
		}
		_, err := Load(platforms, global, reg)
		require.ErrorIs(t, err, ErrEngineConstruction)
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "[bad]")
	})

	t.Run("nil engine", func(t *testing.T) {
		reg := newStubRegistry(t)
		require.NoError(t, reg.Register("nil", func(*Options) (Engine, error) { return nil, nil }))

		_, err := Load([]config.Platform{{Name: "n", Engine: "nil"}}, global, reg)
		require.ErrorIs(t, err, ErrEngineConstruction)
	})
}

func TestGlobalOptions_BuildsSharedResources(t *testing.T) {
	res := resources.New()
	t.Cleanup(func() { require.NoError(t, res.Close()) })

	global := NewGlobalOptions(res, conversations.New(), handlers.Default())

	client, sched, app := res.Built()
	assert.True(t, client)
	assert.True(t, sched)
	assert.True(t, app)
	assert.Same(t, res.Scheduler(), global.Scheduler)
	assert.Len(t, global.AsMap(), 5)
}

// Package engines wires the built-in platform engines into an engine registry.
package engines

import (
	"github.com/atlanticdynamic/bottery/internal/engine"
	"github.com/atlanticdynamic/bottery/internal/engines/poller"
	"github.com/atlanticdynamic/bottery/internal/engines/socketio"
	"github.com/atlanticdynamic/bottery/internal/engines/webhook"
)

// RegisterBuiltins adds the webhook, poller and socketio engines to reg.
func RegisterBuiltins(reg *engine.Registry) error {
	if reg == nil {
		return engine.ErrNilRegistry
	}
	builtins := []struct {
		name string
		ctor engine.Constructor
	}{
		{webhook.Name, webhook.New},
		{poller.Name, poller.New},
		{socketio.Name, socketio.New},
	}
	for _, b := range builtins {
		if err := reg.Register(b.name, b.ctor); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in engines.
func NewRegistry() (*engine.Registry, error) {
	reg := engine.NewRegistry()
	if err := RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

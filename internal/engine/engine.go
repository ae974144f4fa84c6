// Package engine defines the contract between the orchestrator and the
// platform engines, and resolves platform settings into engine instances.
package engine

import (
	"context"
	"fmt"

	"github.com/atlanticdynamic/bottery/internal/config"
	"github.com/atlanticdynamic/bottery/internal/scheduler"
)

// Engine is an adapter for one external channel. Configure is called once,
// before any task runs; Tasks is only read after Configure succeeded and may
// return no factories at all.
type Engine interface {
	Configure(ctx context.Context) error
	Tasks() []scheduler.Factory
}

// Instance is a constructed engine together with the options it was built from.
type Instance struct {
	Name    string
	Kind    string
	Engine  Engine
	Options *Options
}

func (i Instance) String() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.Kind)
}

// Load builds one engine per platform, in order. Each platform's Options map
// is created when nil and then modified in place: the global options are
// copied over it, replacing platform values with the same key, and the
// platform name is stored under KeyEngineName.
func Load(platforms []config.Platform, global GlobalOptions, reg *Registry) ([]Instance, error) {
	if len(platforms) == 0 {
		return nil, ErrNoPlatformsConfigured
	}
	if reg == nil {
		return nil, ErrNilRegistry
	}

	globals := global.AsMap()
	instances := make([]Instance, 0, len(platforms))
	for i := range platforms {
		p := &platforms[i]
		if p.Options == nil {
			p.Options = make(map[string]any, len(globals)+1)
		}
		for k, v := range globals {
			p.Options[k] = v
		}
		p.Options[KeyEngineName] = p.Name

		ctor, err := reg.Lookup(p.Engine)
		if err != nil {
			return nil, &PlatformError{Platform: p.Name, Err: err}
		}

		opts := NewOptions(p.Options)
		eng, err := ctor(opts)
		if err != nil {
			return nil, &PlatformError{Platform: p.Name, Err: fmt.Errorf("%w: %w", ErrEngineConstruction, err)}
		}
		if eng == nil {
			return nil, &PlatformError{Platform: p.Name, Err: fmt.Errorf("%w: constructor returned nil", ErrEngineConstruction)}
		}

		instances = append(instances, Instance{
			Name:    p.Name,
			Kind:    p.Engine,
			Engine:  eng,
			Options: opts,
		})
	}
	return instances, nil
}

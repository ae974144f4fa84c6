package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Constructor builds an engine from its merged options.
type Constructor func(opts *Options) (Engine, error)

// Registry maps engine identifiers to constructors. It is filled at process
// start, before any platform is loaded.
type Registry struct {
	mutex        sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns an empty Registry
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a constructor under name.
func (r *Registry) Register(name string, ctor Constructor) error {
	if ctor == nil {
		return fmt.Errorf("%w: %s", ErrNilConstructor, name)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.constructors[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEngine, name)
	}
	slog.Debug("Registering engine", "name", name)
	r.constructors[name] = ctor
	return nil
}

// Lookup returns the constructor registered under name.
func (r *Registry) Lookup(name string) (Constructor, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s' (registered: %v)", ErrUnknownEngine, name, slices.Sorted(maps.Keys(r.constructors)))
	}
	return ctor, nil
}

// Names returns the registered identifiers, sorted.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return slices.Sorted(maps.Keys(r.constructors))
}

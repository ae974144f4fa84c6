// Package webapp provides the shared inbound HTTP application engines
// register their routes on during configuration.
package webapp

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
)

var (
	ErrDuplicatePath = errors.New("duplicate route path")
	ErrFrozen        = errors.New("application is already serving")
)

// Application is an ordered route table. It is bound to a socket only when at
// least one route was registered.
type Application struct {
	mutex  sync.RWMutex
	routes []httpserver.Route
	owners map[string]string
	frozen bool
}

// New creates an Application without routes
func New() *Application {
	return &Application{owners: make(map[string]string)}
}

// Handle registers handler on path. The name identifies the route owner in
// logs, usually the engine name.
func (a *Application) Handle(name, path string, handler http.HandlerFunc) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.frozen {
		return fmt.Errorf("%w: cannot add %s", ErrFrozen, path)
	}
	if owner, exists := a.owners[path]; exists {
		return fmt.Errorf("%w: %s already registered by %s", ErrDuplicatePath, path, owner)
	}

	route, err := httpserver.NewRouteFromHandlerFunc(name, path, handler)
	if err != nil {
		return fmt.Errorf("failed to create route %s: %w", path, err)
	}

	a.routes = append(a.routes, *route)
	a.owners[path] = name
	return nil
}

// Routes returns a copy of the registered routes in registration order.
func (a *Application) Routes() []httpserver.Route {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	routes := make([]httpserver.Route, len(a.routes))
	copy(routes, a.routes)
	return routes
}

// Len returns the number of registered routes.
func (a *Application) Len() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return len(a.routes)
}

// Touched reports whether any engine registered a route.
func (a *Application) Touched() bool {
	return a.Len() > 0
}

// Freeze rejects further registrations. It is called once the routes were
// handed to a listener.
func (a *Application) Freeze() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.frozen = true
}

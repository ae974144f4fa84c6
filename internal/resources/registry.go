// Package resources owns the process-wide resources shared by every engine:
// the outbound network client, the cooperative scheduler and the inbound HTTP
// application. Each one is built on first access and released once by Close.
package resources

import (
	"log/slog"
	"sync"
	"time"

	"github.com/atlanticdynamic/bottery/internal/scheduler"
	"github.com/atlanticdynamic/bottery/internal/webapp"
	"resty.dev/v3"
)

const (
	DefaultClientTimeout = 30 * time.Second
	DefaultUserAgent     = "bottery"
)

// Registry lazily constructs the shared resources of one orchestrator run.
type Registry struct {
	logger        *slog.Logger
	clientTimeout time.Duration
	userAgent     string
	schedOptions  []scheduler.Option

	mutex  sync.Mutex
	client *resty.Client
	sched  *scheduler.Scheduler
	app    *webapp.Application
	closed bool
}

// New creates a Registry. Nothing is constructed until first use.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger:        slog.Default().WithGroup("resources.Registry"),
		clientTimeout: DefaultClientTimeout,
		userAgent:     DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NetworkClient returns the shared outbound HTTP client. After Close it
// returns the released client, or nil if none was ever built.
func (r *Registry) NetworkClient() *resty.Client {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.client == nil && !r.buildable("network client") {
		return nil
	}
	if r.client == nil {
		r.client = resty.New().
			SetTimeout(r.clientTimeout).
			SetHeader("User-Agent", r.userAgent)
		r.logger.Debug("Network client created", "timeout", r.clientTimeout)
	}
	return r.client
}

// Scheduler returns the shared cooperative scheduler. After Close it returns
// the halted scheduler, or nil if none was ever built.
func (r *Registry) Scheduler() *scheduler.Scheduler {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.sched == nil && !r.buildable("scheduler") {
		return nil
	}
	if r.sched == nil {
		opts := append([]scheduler.Option{scheduler.WithLogger(r.logger.WithGroup("scheduler"))}, r.schedOptions...)
		r.sched = scheduler.New(opts...)
		r.logger.Debug("Scheduler created")
	}
	return r.sched
}

// HTTPApplication returns the shared inbound HTTP application. After Close
// it returns the existing application, or nil if none was ever built.
func (r *Registry) HTTPApplication() *webapp.Application {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.app == nil && !r.buildable("HTTP application") {
		return nil
	}
	if r.app == nil {
		r.app = webapp.New()
		r.logger.Debug("HTTP application created")
	}
	return r.app
}

// buildable reports whether a missing resource may still be constructed.
// The caller holds the mutex.
func (r *Registry) buildable(what string) bool {
	if r.closed {
		r.logger.Warn("Registry is closed; not building "+what)
		return false
	}
	return true
}

// Built reports which resources were constructed so far.
func (r *Registry) Built() (client, sched, app bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.client != nil, r.sched != nil, r.app != nil
}

// Close releases the network client and the scheduler if they were built.
// Release failures are logged and otherwise ignored. Calling Close more than
// once, or on a Registry that never built anything, is a no-op. A closed
// Registry never constructs anything new.
func (r *Registry) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if r.client != nil {
		if err := r.client.Close(); err != nil {
			r.logger.Warn("Failed to close network client", "error", err)
		}
	}
	if r.sched != nil {
		if err := r.sched.Close(); err != nil {
			r.logger.Warn("Failed to close scheduler", "error", err)
		}
	}
	r.logger.Debug("Shared resources released")
	return nil
}

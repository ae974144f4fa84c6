// Package httpboot binds the shared HTTP application to a socket and keeps
// it serving in the background.
package httpboot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/atlanticdynamic/bottery/internal/webapp"
	"github.com/robbyt/go-supervisor/runnables/httpserver"
)

const (
	defaultStartTimeout = 5 * time.Second
	readyPollInterval   = 10 * time.Millisecond
	dialTimeout         = 100 * time.Millisecond
)

// Listener is a running HTTP server for the shared application.
type Listener struct {
	logger       *slog.Logger
	port         int
	routes       []httpserver.Route
	startTimeout time.Duration

	readTimeout  *time.Duration
	writeTimeout *time.Duration
	idleTimeout  *time.Duration
	drainTimeout *time.Duration

	runner *httpserver.Runner
	cancel context.CancelFunc
	done   chan struct{}

	mutex    sync.Mutex
	err      error
	stopping bool
	stopOnce sync.Once
}

// BindAndServe listens on all interfaces at port and serves the application
// routes. It returns once the socket accepts connections; serving continues
// until Stop is called or the server fails. The application is frozen so no
// route can be added after binding.
func BindAndServe(ctx context.Context, app *webapp.Application, port int, opts ...Option) (*Listener, error) {
	if app == nil || app.Len() == 0 {
		return nil, ErrNoRoutes
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}

	app.Freeze()
	l := &Listener{
		logger:       slog.Default().WithGroup("httpboot.Listener"),
		port:         port,
		routes:       app.Routes(),
		startTimeout: defaultStartTimeout,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	runner, err := httpserver.NewRunner(httpserver.WithConfigCallback(l.buildConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server runner: %w", err)
	}
	l.runner = runner

	runCtx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go l.serve(runCtx)

	if err := l.waitReady(ctx); err != nil {
		l.Stop()
		return nil, err
	}

	l.logger.Info("HTTP listener bound", "address", l.Address(), "routes", len(l.routes))
	return l, nil
}

func (l *Listener) buildConfig() (*httpserver.Config, error) {
	options := []httpserver.ConfigOption{}
	if l.readTimeout != nil {
		options = append(options, httpserver.WithReadTimeout(*l.readTimeout))
	}
	if l.writeTimeout != nil {
		options = append(options, httpserver.WithWriteTimeout(*l.writeTimeout))
	}
	if l.idleTimeout != nil {
		options = append(options, httpserver.WithIdleTimeout(*l.idleTimeout))
	}
	if l.drainTimeout != nil {
		options = append(options, httpserver.WithDrainTimeout(*l.drainTimeout))
	}

	cfg, err := httpserver.NewConfig(l.Address(), l.routes, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server config: %w", err)
	}
	return cfg, nil
}

func (l *Listener) serve(ctx context.Context) {
	defer close(l.done)
	err := l.runner.Run(ctx)

	l.mutex.Lock()
	defer l.mutex.Unlock()
	switch {
	case l.stopping:
	case err != nil:
		l.err = err
	default:
		l.err = ErrListenerStopped
	}
	if l.err != nil {
		l.logger.Error("HTTP listener failed", "address", l.Address(), "error", l.err)
	}
}

// waitReady blocks until the runner reports ready and a TCP dial succeeds.
func (l *Listener) waitReady(ctx context.Context) error {
	deadline := time.NewTimer(l.startTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	target := net.JoinHostPort("127.0.0.1", strconv.Itoa(l.port))
	for {
		if l.runner.IsReady() {
			conn, err := net.DialTimeout("tcp", target, dialTimeout)
			if err == nil {
				_ = conn.Close()
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return fmt.Errorf("binding %s: %w", l.Address(), errors.Join(ErrListenerStopped, l.Err()))
		case <-deadline.C:
			return fmt.Errorf("%w: %s after %s", ErrStartTimeout, l.Address(), l.startTimeout)
		case <-ticker.C:
		}
	}
}

// Address returns the listen address.
func (l *Listener) Address() string {
	return ":" + strconv.Itoa(l.port)
}

// Port returns the bound port.
func (l *Listener) Port() int {
	return l.port
}

// Routes returns the served routes.
func (l *Listener) Routes() []httpserver.Route {
	return l.routes
}

// Done is closed once the server stopped serving.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// Err returns the error that ended serving. It is nil while serving and after
// a requested Stop.
func (l *Listener) Err() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.err
}

// GetState returns the state of the underlying runner.
func (l *Listener) GetState() string {
	return l.runner.GetState()
}

// Stop shuts the server down and waits for it to exit. It is safe to call
// more than once.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		l.mutex.Lock()
		l.stopping = true
		l.mutex.Unlock()

		l.logger.Debug("Stopping HTTP listener", "address", l.Address())
		l.runner.Stop()
		l.cancel()
		<-l.done
	})
}

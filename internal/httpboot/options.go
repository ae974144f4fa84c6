package httpboot

import (
	"log/slog"
	"time"
)

// Option configures BindAndServe.
type Option func(*Listener)

// WithLogHandler sets a custom slog handler for the Listener instance.
func WithLogHandler(handler slog.Handler) Option {
	return func(l *Listener) {
		if handler != nil {
			l.logger = slog.New(handler).WithGroup("httpboot.Listener")
		}
	}
}

// WithLogger sets a logger for the Listener instance.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithReadTimeout sets the server read timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.readTimeout = &d
		}
	}
}

// WithWriteTimeout sets the server write timeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.writeTimeout = &d
		}
	}
}

// WithIdleTimeout sets the keep-alive idle timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.idleTimeout = &d
		}
	}
}

// WithDrainTimeout bounds how long Stop waits for open requests.
func WithDrainTimeout(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.drainTimeout = &d
		}
	}
}

// WithStartTimeout bounds how long BindAndServe waits for the socket to accept connections.
func WithStartTimeout(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.startTimeout = d
		}
	}
}

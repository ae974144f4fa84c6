package resources

import (
	"log/slog"
	"time"

	"github.com/atlanticdynamic/bottery/internal/scheduler"
)

type Option func(*Registry)

// WithLogHandler sets a custom slog handler for the Registry instance.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Registry) {
		if handler != nil {
			r.logger = slog.New(handler).WithGroup("resources.Registry")
		}
	}
}

// WithLogger sets a logger for the Registry instance.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClientTimeout sets the request timeout of the network client.
func WithClientTimeout(timeout time.Duration) Option {
	return func(r *Registry) {
		if timeout > 0 {
			r.clientTimeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header sent by the network client.
func WithUserAgent(userAgent string) Option {
	return func(r *Registry) {
		if userAgent != "" {
			r.userAgent = userAgent
		}
	}
}

// WithSchedulerOptions passes options to the scheduler when it is built.
func WithSchedulerOptions(opts ...scheduler.Option) Option {
	return func(r *Registry) {
		r.schedOptions = append(r.schedOptions, opts...)
	}
}

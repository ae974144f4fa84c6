package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/atlanticdynamic/bottery/internal/config"
	"github.com/atlanticdynamic/bottery/internal/conversations"
	"github.com/atlanticdynamic/bottery/internal/engine"
	"github.com/atlanticdynamic/bottery/internal/handlers"
	"github.com/atlanticdynamic/bottery/internal/httpboot"
	"github.com/atlanticdynamic/bottery/internal/resources"
)

type Option func(*Orchestrator)

// WithLogHandler sets a custom slog handler for the Orchestrator instance.
func WithLogHandler(handler slog.Handler) Option {
	return func(o *Orchestrator) {
		if handler != nil {
			o.logger = slog.New(handler).WithGroup("orchestrator.Orchestrator")
		}
	}
}

// WithLogger sets a logger for the Orchestrator instance.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithContext sets a parent context. Cancelling it stops the orchestrator.
func WithContext(ctx context.Context) Option {
	return func(o *Orchestrator) {
		if ctx != nil {
			o.parentCtx = ctx
		}
	}
}

// WithEngineRegistry sets the registry engine identifiers are resolved in.
func WithEngineRegistry(reg *engine.Registry) Option {
	return func(o *Orchestrator) {
		if reg != nil {
			o.engines = reg
		}
	}
}

// WithHandlers sets the message handlers passed to every engine.
func WithHandlers(set handlers.Set) Option {
	return func(o *Orchestrator) {
		o.handlers = set
	}
}

// WithConversations sets the conversation store shared by every engine.
func WithConversations(store *conversations.Store) Option {
	return func(o *Orchestrator) {
		if store != nil {
			o.conversations = store
		}
	}
}

// WithPlatforms sets the platforms to load, in configuration order. The
// option maps of the given platforms receive the merged engine options.
func WithPlatforms(platforms []config.Platform) Option {
	return func(o *Orchestrator) {
		o.platforms = platforms
	}
}

// WithPort sets the port the HTTP application is bound to.
func WithPort(port int) Option {
	return func(o *Orchestrator) {
		if port > 0 {
			o.port = port
		}
	}
}

// WithFailurePolicy sets what happens when a task fails. maxRestarts only
// applies to config.FailurePolicyRestart.
func WithFailurePolicy(policy config.FailurePolicy, maxRestarts int) Option {
	return func(o *Orchestrator) {
		if policy != config.FailurePolicyUnspecified {
			o.policy = policy
		}
		if maxRestarts >= 0 {
			o.maxRestarts = maxRestarts
		}
	}
}

// WithShutdown sets the shutdown mode and how long a graceful shutdown waits
// for tasks to return.
func WithShutdown(mode config.ShutdownMode, drainTimeout time.Duration) Option {
	return func(o *Orchestrator) {
		if mode != config.ShutdownUnspecified {
			o.shutdown = mode
		}
		if drainTimeout > 0 {
			o.drainTimeout = drainTimeout
		}
	}
}

// WithResources sets the shared resource registry. The orchestrator releases
// it when it stops.
func WithResources(res *resources.Registry) Option {
	return func(o *Orchestrator) {
		if res != nil {
			o.resources = res
		}
	}
}

// WithListenerOptions passes options to the HTTP listener when it is bound.
func WithListenerOptions(opts ...httpboot.Option) Option {
	return func(o *Orchestrator) {
		o.listenerOpts = append(o.listenerOpts, opts...)
	}
}

// ConfigOptions translates the settings into orchestrator options.
func ConfigOptions(cfg *config.Config) []Option {
	return []Option{
		WithPlatforms(cfg.Platforms),
		WithPort(cfg.Server.Port),
		WithFailurePolicy(cfg.Supervisor.FailurePolicy, cfg.Supervisor.MaxRestarts),
		WithShutdown(cfg.Supervisor.Shutdown, cfg.Supervisor.DrainTimeout.AsDuration()),
		WithListenerOptions(
			httpboot.WithReadTimeout(cfg.Server.ReadTimeout.AsDuration()),
			httpboot.WithWriteTimeout(cfg.Server.WriteTimeout.AsDuration()),
			httpboot.WithIdleTimeout(cfg.Server.IdleTimeout.AsDuration()),
			httpboot.WithDrainTimeout(cfg.Server.DrainTimeout.AsDuration()),
		),
	}
}

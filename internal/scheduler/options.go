package scheduler

import (
	"log/slog"
)

type Option func(*Scheduler)

// WithLogHandler sets a custom slog handler for the Scheduler instance.
func WithLogHandler(handler slog.Handler) Option {
	return func(s *Scheduler) {
		if handler != nil {
			s.logger = slog.New(handler).WithGroup("scheduler.Scheduler")
		}
	}
}

// WithLogger sets a logger for the Scheduler instance.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEventBuffer sets the capacity of the task event channel.
func WithEventBuffer(size int) Option {
	return func(s *Scheduler) {
		if size >= 0 {
			s.eventBuffer = size
		}
	}
}

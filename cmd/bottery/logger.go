package main

import (
	"io"
	"log/slog"

	"github.com/atlanticdynamic/bottery/internal/config"
	"github.com/atlanticdynamic/bottery/internal/logging"
)

// SetupLogger installs the configured handler as the slog default. The
// returned closer releases the log file, if any.
func SetupLogger(cfg config.Logging) (*slog.Logger, io.Closer, error) {
	handler, closer, err := logging.NewHandler(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, closer, nil
}

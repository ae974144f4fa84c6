// Package logging builds the slog handlers used by the bot host.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/atlanticdynamic/bottery/internal/config"
	"github.com/atlanticdynamic/bottery/internal/logging/writers"
	"github.com/charmbracelet/log"
)

// parseLevel maps a level name to a slog level. "trace" is debug with caller info.
func parseLevel(logLevel string) (slog.Level, bool) {
	switch strings.ToLower(logLevel) {
	case "trace":
		return slog.LevelDebug, true
	case "debug":
		return slog.LevelDebug, false
	case "warn", "warning":
		return slog.LevelWarn, false
	case "error":
		return slog.LevelError, false
	default:
		return slog.LevelInfo, false
	}
}

// SetupHandlerText returns a charmbracelet handler writing to writer, or
// stderr when writer is nil.
func SetupHandlerText(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	level, trace := parseLevel(logLevel)
	return log.NewWithOptions(writer, log.Options{
		ReportTimestamp: level <= slog.LevelDebug,
		ReportCaller:    trace,
		Level:           log.Level(level),
	})
}

// SetupHandlerJSON returns a JSON handler writing to writer, or stdout when
// writer is nil.
func SetupHandlerJSON(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stdout
	}

	level, trace := parseLevel(logLevel)
	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     level,
		AddSource: trace,
	})
}

// NewHandler builds a handler for the logging section of the config. The
// returned closer releases the output file, if any.
func NewHandler(cfg config.Logging) (slog.Handler, io.Closer, error) {
	output := cfg.Output
	if output == "" && cfg.Format != config.LogFormatJSON {
		output = "stderr"
	}

	w, err := writers.CreateWriter(output)
	if err != nil {
		return nil, nil, fmt.Errorf("log output: %w", err)
	}

	switch cfg.Format {
	case config.LogFormatJSON:
		return SetupHandlerJSON(cfg.Level.String(), w), w, nil
	default:
		return SetupHandlerText(cfg.Level.String(), w), w, nil
	}
}

// SetupLogger installs a text handler at the given level as the slog default.
func SetupLogger(logLevel string) {
	handler := SetupHandlerText(logLevel, nil)
	slog.SetDefault(slog.New(handler))
}

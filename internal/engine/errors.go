package engine

import (
	"errors"
	"fmt"

	"github.com/atlanticdynamic/bottery/internal/config"
)

var (
	// ErrNoPlatformsConfigured is returned when there is nothing to load.
	ErrNoPlatformsConfigured = config.ErrNoPlatforms
	ErrUnknownEngine         = errors.New("unknown engine")
	ErrDuplicateEngine       = errors.New("engine already registered")
	ErrEngineConstruction    = errors.New("engine construction failed")
	ErrNilConstructor        = errors.New("engine constructor is nil")
	ErrNilRegistry           = errors.New("engine registry is nil")

	ErrMissingOption = errors.New("missing option")
	ErrInvalidOption = errors.New("invalid option")
)

// PlatformError ties an error to the platform entry it came from.
type PlatformError struct {
	Platform string
	Err      error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("[%s] %v", e.Platform, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

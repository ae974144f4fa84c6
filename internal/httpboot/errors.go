package httpboot

import "errors"

var (
	ErrNoRoutes        = errors.New("application has no routes")
	ErrInvalidPort     = errors.New("invalid port")
	ErrStartTimeout    = errors.New("listener did not become ready")
	ErrListenerStopped = errors.New("listener stopped unexpectedly")
)

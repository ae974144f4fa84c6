package config

import (
	"errors"
	"fmt"
)

const maxPort = 65535

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = VersionUnknown
	}

	switch c.Version {
	case VersionLatest:
		// Supported version
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedConfigVer, c.Version)
	}

	errz := []error{}

	if c.Handlers == "" {
		errz = append(errz, fmt.Errorf("%w: handlers", ErrMissingRequiredField))
	}

	if !c.Logging.Level.IsValid() {
		errz = append(errz, fmt.Errorf("%w: log level '%s'", ErrInvalidValue, c.Logging.Level))
	}
	if !c.Logging.Format.IsValid() {
		errz = append(errz, fmt.Errorf("%w: log format '%s'", ErrInvalidValue, c.Logging.Format))
	}

	if c.Server.Port < 1 || c.Server.Port > maxPort {
		errz = append(errz, fmt.Errorf("%w: server port %d", ErrInvalidValue, c.Server.Port))
	}

	if !c.Supervisor.FailurePolicy.IsValid() {
		errz = append(errz, fmt.Errorf("%w: failure policy '%s'", ErrInvalidValue, c.Supervisor.FailurePolicy))
	}
	if !c.Supervisor.Shutdown.IsValid() {
		errz = append(errz, fmt.Errorf("%w: shutdown mode '%s'", ErrInvalidValue, c.Supervisor.Shutdown))
	}
	if c.Supervisor.MaxRestarts < 0 {
		errz = append(errz, fmt.Errorf("%w: max restarts %d", ErrInvalidValue, c.Supervisor.MaxRestarts))
	}

	errz = append(errz, validatePlatforms(c.Platforms)...)

	return errors.Join(errz...)
}

func validatePlatforms(platforms []Platform) []error {
	if len(platforms) == 0 {
		return []error{ErrNoPlatforms}
	}

	errz := []error{}
	names := make(map[string]bool, len(platforms))
	for i, p := range platforms {
		if p.Name == "" {
			errz = append(errz, fmt.Errorf("%w: platform at index %d", ErrEmptyPlatformName, i))
			continue
		}
		if names[p.Name] {
			errz = append(errz, fmt.Errorf("%w: %s", ErrDuplicatePlatform, p.Name))
		} else {
			names[p.Name] = true
		}
		if p.Engine == "" {
			errz = append(errz, fmt.Errorf("%w: engine for platform '%s'", ErrMissingRequiredField, p.Name))
		}
	}
	return errz
}

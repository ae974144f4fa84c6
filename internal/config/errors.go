package config

import "errors"

var (
	ErrFailedToLoadConfig     = errors.New("failed to load config")
	ErrFailedToValidateConfig = errors.New("failed to validate config")
	ErrUnsupportedConfigVer   = errors.New("unsupported config version")
	ErrUnsupportedFormat      = errors.New("unsupported config format")
	ErrNoSourceData           = errors.New("no source data provided")
	ErrInvalidDuration        = errors.New("invalid duration")
	ErrUndefinedEnvVar        = errors.New("environment variable not defined")
)

// Validation specific errors
var (
	ErrNoPlatforms          = errors.New("no platforms configured")
	ErrDuplicatePlatform    = errors.New("duplicate platform name")
	ErrEmptyPlatformName    = errors.New("empty platform name")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidValue         = errors.New("invalid value")
)

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// Matches ${VAR_NAME} and ${VAR_NAME:default} with upper-case names only; the
// colon is captured on its own so that ${VAR:} yields an empty default.
var envVarPattern = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)(:)?([^}]*)\}`)

// ExpandEnvVars replaces ${VAR} and ${VAR:default} references with values
// from the environment. Only upper-case names (letters, digits, underscore)
// are references; ${lower} is kept as literal text. Undefined variables
// without a default are left in place and reported together.
func ExpandEnvVars(input string) (string, error) {
	if input == "" {
		return "", nil
	}

	var missing []error
	result := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, fallback := sub[1], sub[2] == ":", sub[3]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasDefault {
			return fallback
		}
		missing = append(missing, fmt.Errorf("%w: %s", ErrUndefinedEnvVar, name))
		return match
	})
	return result, errors.Join(missing...)
}

// expandEnv expands references in the logging output, the user agent and
// every string inside platform options.
func (c *Config) expandEnv() error {
	errz := []error{}
	expand := func(s *string) {
		out, err := ExpandEnvVars(*s)
		errz = append(errz, err)
		*s = out
	}

	expand(&c.Logging.Output)
	expand(&c.Network.UserAgent)
	for i := range c.Platforms {
		for key, value := range c.Platforms[i].Options {
			out, err := expandValue(value)
			if err != nil {
				errz = append(errz, fmt.Errorf("platform '%s' option %s: %w", c.Platforms[i].Name, key, err))
			}
			c.Platforms[i].Options[key] = out
		}
	}
	return errors.Join(errz...)
}

func expandValue(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return ExpandEnvVars(v)
	case map[string]any:
		errz := []error{}
		for key, inner := range v {
			out, err := expandValue(inner)
			errz = append(errz, err)
			v[key] = out
		}
		return v, errors.Join(errz...)
	case []any:
		errz := []error{}
		for i, inner := range v {
			out, err := expandValue(inner)
			errz = append(errz, err)
			v[i] = out
		}
		return v, errors.Join(errz...)
	default:
		return value, nil
	}
}

// Package config loads the static process settings: logging, the HTTP port,
// supervision policy, the handler set and the ordered list of platforms.
package config

import (
	"time"
)

const (
	VersionLatest  = "v1"
	VersionUnknown = "unknown"

	DefaultHandlers      = "default"
	DefaultPort          = 8000
	DefaultClientTimeout = 30 * time.Second
	DefaultUserAgent     = "bottery"
	DefaultMaxRestarts   = 3
	DefaultDrainTimeout  = 5 * time.Second
)

// Config is the root of the settings file.
type Config struct {
	Version    string     `toml:"version"    yaml:"version"`
	Handlers   string     `toml:"handlers"   yaml:"handlers"`
	Logging    Logging    `toml:"logging"    yaml:"logging"`
	Server     Server     `toml:"server"     yaml:"server"`
	Network    Network    `toml:"network"    yaml:"network"`
	Supervisor Supervisor `toml:"supervisor" yaml:"supervisor"`
	Platforms  []Platform `toml:"platforms"  yaml:"platforms"`
}

// Server configures the inbound HTTP listener.
type Server struct {
	Port         int      `toml:"port"          yaml:"port"`
	ReadTimeout  Duration `toml:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  Duration `toml:"idle_timeout"  yaml:"idle_timeout"`
	DrainTimeout Duration `toml:"drain_timeout" yaml:"drain_timeout"`
}

// Network configures the shared outbound client.
type Network struct {
	Timeout   Duration `toml:"timeout"    yaml:"timeout"`
	UserAgent string   `toml:"user_agent" yaml:"user_agent"`
}

// Platform is one configured channel. Name becomes the engine name and must be
// unique; Engine is the identifier the engine constructor is registered under.
// Options is handed to the engine after the global options were merged into it.
type Platform struct {
	Name    string         `toml:"name"    yaml:"name"`
	Engine  string         `toml:"engine"  yaml:"engine"`
	Options map[string]any `toml:"options" yaml:"options"`
}

// setDefaults fills every unset field with its default value.
func (c *Config) setDefaults() {
	if c.Version == "" {
		c.Version = VersionLatest
	}
	if c.Handlers == "" {
		c.Handlers = DefaultHandlers
	}
	if c.Logging.Level == LogLevelUnspecified {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == LogFormatUnspecified {
		c.Logging.Format = LogFormatText
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Network.Timeout == 0 {
		c.Network.Timeout = Duration(DefaultClientTimeout)
	}
	if c.Network.UserAgent == "" {
		c.Network.UserAgent = DefaultUserAgent
	}
	if c.Supervisor.FailurePolicy == FailurePolicyUnspecified {
		c.Supervisor.FailurePolicy = FailurePolicyHalt
	}
	if c.Supervisor.MaxRestarts == 0 {
		c.Supervisor.MaxRestarts = DefaultMaxRestarts
	}
	if c.Supervisor.Shutdown == ShutdownUnspecified {
		c.Supervisor.Shutdown = ShutdownAbrupt
	}
	if c.Supervisor.DrainTimeout == 0 {
		c.Supervisor.DrainTimeout = Duration(DefaultDrainTimeout)
	}
}

// PlatformNames returns the platform names in configuration order.
func (c *Config) PlatformNames() []string {
	names := make([]string, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		names = append(names, p.Name)
	}
	return names
}

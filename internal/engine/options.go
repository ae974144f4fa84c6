package engine

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/atlanticdynamic/bottery/internal/config"
	"github.com/atlanticdynamic/bottery/internal/conversations"
	"github.com/atlanticdynamic/bottery/internal/handlers"
	"github.com/atlanticdynamic/bottery/internal/resources"
	"github.com/atlanticdynamic/bottery/internal/scheduler"
	"github.com/atlanticdynamic/bottery/internal/webapp"
	"resty.dev/v3"
)

// Keys of the options every engine receives.
const (
	KeyConversations = "active_conversations"
	KeyHandlers      = "registered_handlers"
	KeyServer        = "server"
	KeyScheduler     = "scheduler"
	KeyNetworkClient = "network_client"
	KeyEngineName    = "engine_name"
)

// GlobalOptions are the shared resources handed to every engine. They are
// built once per run; engines read them and must not replace them.
type GlobalOptions struct {
	Conversations *conversations.Store
	Handlers      handlers.Set
	Server        *webapp.Application
	Scheduler     *scheduler.Scheduler
	NetworkClient *resty.Client
}

// NewGlobalOptions collects the shared resources from the registry.
func NewGlobalOptions(res *resources.Registry, store *conversations.Store, set handlers.Set) GlobalOptions {
	return GlobalOptions{
		Conversations: store,
		Handlers:      set,
		Server:        res.HTTPApplication(),
		Scheduler:     res.Scheduler(),
		NetworkClient: res.NetworkClient(),
	}
}

// AsMap returns the options keyed the way engines look them up.
func (g GlobalOptions) AsMap() map[string]any {
	return map[string]any{
		KeyConversations: g.Conversations,
		KeyHandlers:      g.Handlers,
		KeyServer:        g.Server,
		KeyScheduler:     g.Scheduler,
		KeyNetworkClient: g.NetworkClient,
	}
}

// Options is the configuration object passed to an engine constructor. It
// wraps the platform's own options map, so changes are visible in both.
type Options struct {
	values map[string]any
}

// NewOptions wraps values. A nil map is replaced by an empty one.
func NewOptions(values map[string]any) *Options {
	if values == nil {
		values = make(map[string]any)
	}
	return &Options{values: values}
}

// Get returns the raw value stored under key.
func (o *Options) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns all option keys, sorted.
func (o *Options) Keys() []string {
	return slices.Sorted(maps.Keys(o.values))
}

// String returns the string under key, or fallback when the key is absent.
func (o *Options) String(key, fallback string) (string, error) {
	v, ok := o.values[key]
	if !ok || v == nil {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidOption, key, v)
	}
	return s, nil
}

// RequireString returns the non-empty string under key.
func (o *Options) RequireString(key string) (string, error) {
	s, err := o.String(key, "")
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingOption, key)
	}
	return s, nil
}

// Int returns the integer under key, or fallback when the key is absent.
// Settings decoders produce int64 (TOML), int (YAML) or float64 values.
func (o *Options) Int(key string, fallback int) (int, error) {
	v, ok := o.values[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%w: %s must be a whole number, got %v", ErrInvalidOption, key, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidOption, key, v)
	}
}

// Bool returns the boolean under key, or fallback when the key is absent.
func (o *Options) Bool(key string, fallback bool) (bool, error) {
	v, ok := o.values[key]
	if !ok || v == nil {
		return fallback, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean, got %T", ErrInvalidOption, key, v)
	}
	return b, nil
}

// Duration returns the duration under key, or fallback when the key is absent.
// Strings are parsed with time.ParseDuration.
func (o *Options) Duration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := o.values[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case config.Duration:
		return d.AsDuration(), nil
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrInvalidOption, key, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("%w: %s must be a duration string, got %T", ErrInvalidOption, key, v)
	}
}

// EngineName returns the platform name the engine was configured under.
func (o *Options) EngineName() string {
	s, _ := o.values[KeyEngineName].(string)
	return s
}

// Conversations returns the shared conversation store.
func (o *Options) Conversations() *conversations.Store {
	s, _ := o.values[KeyConversations].(*conversations.Store)
	return s
}

// Handlers returns the registered message handlers.
func (o *Options) Handlers() handlers.Set {
	s, _ := o.values[KeyHandlers].(handlers.Set)
	return s
}

// Server returns the shared inbound HTTP application.
func (o *Options) Server() *webapp.Application {
	s, _ := o.values[KeyServer].(*webapp.Application)
	return s
}

// Scheduler returns the shared cooperative scheduler.
func (o *Options) Scheduler() *scheduler.Scheduler {
	s, _ := o.values[KeyScheduler].(*scheduler.Scheduler)
	return s
}

// NetworkClient returns the shared outbound HTTP client.
func (o *Options) NetworkClient() *resty.Client {
	c, _ := o.values[KeyNetworkClient].(*resty.Client)
	return c
}

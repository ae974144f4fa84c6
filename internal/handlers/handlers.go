// Package handlers contains the message-handler registry. The orchestrator
// passes the selected handler Set to every engine without looking into it.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	ErrUnknownSet   = errors.New("unknown handler set")
	ErrDuplicateSet = errors.New("duplicate handler set")
	ErrNoMatch      = errors.New("no handler matches message")
)

// Message is the normalized inbound message an engine hands to a handler.
type Message struct {
	Platform     string
	Conversation string
	Sender       string
	Text         string
}

// Handler answers messages it matches.
type Handler interface {
	Name() string
	Match(text string) bool
	Respond(ctx context.Context, msg Message) (string, error)
}

// Set is an ordered list of handlers; the first match wins.
type Set []Handler

// Find returns the first handler matching text.
func (s Set) Find(text string) (Handler, bool) {
	for _, h := range s {
		if h.Match(text) {
			return h, true
		}
	}
	return nil, false
}

// Respond answers msg with the first matching handler.
func (s Set) Respond(ctx context.Context, msg Message) (string, error) {
	h, ok := s.Find(msg.Text)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoMatch, msg.Text)
	}
	return h.Respond(ctx, msg)
}

// Registry maps a set name, as referenced by the settings, to a handler Set.
type Registry struct {
	mutex sync.RWMutex
	sets  map[string]Set
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]Set)}
}

// Register adds a named set.
func (r *Registry) Register(name string, set Set) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.sets[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSet, name)
	}
	r.sets[name] = set
	return nil
}

// Lookup returns the set registered under name.
func (r *Registry) Lookup(name string) (Set, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	set, ok := r.sets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSet, name)
	}
	return set, nil
}

// Names returns the registered set names, sorted.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return slices.Sorted(maps.Keys(r.sets))
}

// Func adapts a match predicate and a respond function to a Handler.
type Func struct {
	ID      string
	Matches func(text string) bool
	Reply   func(ctx context.Context, msg Message) (string, error)
}

func (f Func) Name() string { return f.ID }

func (f Func) Match(text string) bool { return f.Matches(text) }

func (f Func) Respond(ctx context.Context, msg Message) (string, error) {
	return f.Reply(ctx, msg)
}

// Exact matches text equal to pattern, ignoring case and surrounding spaces.
func Exact(pattern string) func(string) bool {
	return func(text string) bool {
		return strings.EqualFold(strings.TrimSpace(text), pattern)
	}
}

// Prefix matches text starting with prefix.
func Prefix(prefix string) func(string) bool {
	return func(text string) bool {
		return strings.HasPrefix(strings.TrimSpace(text), prefix)
	}
}

// Default is the handler set shipped with the binary.
func Default() Set {
	return Set{
		Func{
			ID:      "ping",
			Matches: Exact("ping"),
			Reply: func(ctx context.Context, msg Message) (string, error) {
				return "pong", nil
			},
		},
		Func{
			ID:      "echo",
			Matches: func(string) bool { return true },
			Reply: func(ctx context.Context, msg Message) (string, error) {
				return msg.Text, nil
			},
		},
	}
}

// NewDefaultRegistry returns a Registry holding the Default set under "default".
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.sets["default"] = Default()
	return r
}

// Package conversations holds the per-conversation state shared by every
// engine and by the message handlers.
//
// Each method is a single atomic step. A read-modify-write that spans a
// scheduler suspension point is not atomic: another job may change the entry
// in between. Complete mutations before suspending, or use Update.
package conversations

import (
	"maps"
	"slices"
	"sync"
)

// Store maps a conversation id to arbitrary state. It never evicts entries.
type Store struct {
	mutex   sync.RWMutex
	entries map[string]any
}

// New creates an empty Store
func New() *Store {
	return &Store{entries: make(map[string]any)}
}

// Get returns the state of a conversation.
func (s *Store) Get(id string) (any, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	v, ok := s.entries[id]
	return v, ok
}

// Set replaces the state of a conversation.
func (s *Store) Set(id string, state any) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[id] = state
}

// Delete removes a conversation. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.entries, id)
}

// Update applies fn to the current state of a conversation and stores the
// result. fn receives nil and false when the conversation does not exist yet.
// fn must not block or call back into the Store.
func (s *Store) Update(id string, fn func(state any, ok bool) any) any {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	current, ok := s.entries[id]
	next := fn(current, ok)
	s.entries[id] = next
	return next
}

// Len returns the number of tracked conversations.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entries)
}

// Keys returns the conversation ids in sorted order.
func (s *Store) Keys() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return slices.Sorted(maps.Keys(s.entries))
}

// Snapshot returns a shallow copy of every entry.
func (s *Store) Snapshot() map[string]any {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return maps.Clone(s.entries)
}

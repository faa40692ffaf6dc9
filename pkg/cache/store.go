// Package cache implements the local query cache: an explicitly
// constructed, keyed store of server-derived data with invalidation and
// write notification. One Store exists per authenticated session; it is
// built at login and emptied at logout.
package cache

import "sync"

// Store is a keyed in-memory cache. Writes notify subscribers so that
// reactive rules (such as selection-validity maintenance) observe every
// list change regardless of which code path produced it.
//
// Store is safe for concurrent use. Subscribers run synchronously after
// the write, outside the lock; they may read or write the Store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]any

	subMu       sync.RWMutex
	subscribers []func(key string)
}

func NewStore() *Store {
	return &Store{entries: make(map[string]any)}
}

// Get returns the cached value for key, if any.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// Set stores value under key and notifies subscribers.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()

	s.notify(key)
}

// Invalidate removes key and notifies subscribers.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	_, existed := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()

	if existed {
		s.notify(key)
	}
}

// InvalidateAll empties the store, notifying subscribers once per removed
// key. Called at logout.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	s.entries = make(map[string]any)
	s.mu.Unlock()

	for _, k := range keys {
		s.notify(k)
	}
}

// Subscribe registers fn to run after every write or invalidation, with
// the affected key.
func (s *Store) Subscribe(fn func(key string)) {
	s.subMu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.subMu.Unlock()
}

func (s *Store) notify(key string) {
	s.subMu.RLock()
	subs := s.subscribers
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(key)
	}
}

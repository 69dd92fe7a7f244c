// Package cache provides a small keyed in-memory cache safe for concurrent use.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is a mutex-guarded map with an optional per-store TTL.
// A zero TTL means entries never expire and live until Clear.
type Store[K comparable, V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[K]entry[V]
	gen     uint64
}

// New returns an empty store. now may be nil, in which case time.Now is used.
func New[K comparable, V any](ttl time.Duration, now func() time.Time) *Store[K, V] {
	if now == nil {
		now = time.Now
	}
	return &Store[K, V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[K]entry[V]),
	}
}

// Get returns the cached value for key. Expired entries are treated as a miss
// and evicted.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if s.expired(e) {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && s.expired(cur) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (s *Store[K, V]) Set(key K, value V) {
	e := s.newEntry(value)

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

// Generation identifies the current contents epoch. Clear advances it.
func (s *Store[K, V]) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// SetIfGeneration stores value only if the store has not been cleared since
// gen was read. It reports whether the value was stored.
func (s *Store[K, V]) SetIfGeneration(gen uint64, key K, value V) bool {
	e := s.newEntry(value)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.entries[key] = e
	return true
}

// Clear drops every entry and advances the generation.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	s.entries = make(map[K]entry[V])
	s.gen++
	s.mu.Unlock()
}

func (s *Store[K, V]) newEntry(value V) entry[V] {
	e := entry[V]{value: value}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return e
}

// Len reports the number of stored entries, including ones that have expired
// but were not yet evicted.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// TTL returns the configured time-to-live.
func (s *Store[K, V]) TTL() time.Duration {
	return s.ttl
}

func (s *Store[K, V]) expired(e entry[V]) bool {
	if e.expiresAt.IsZero() {
		return false
	}
	return !s.now().Before(e.expiresAt)
}

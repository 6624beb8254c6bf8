// Package dedup tracks pair addresses that already produced an alert so
// the same pair is never alerted twice within the dedup window.
package dedup

import (
	"context"
	"sync"
	"time"
)

// Store is the seen-set contract. MarkSeen is idempotent; Seen is a pure
// membership check. Implementations must make the check-then-mark sequence
// safe for concurrent callers.
type Store interface {
	Seen(ctx context.Context, id string) (bool, error)
	MarkSeen(ctx context.Context, id string) error
}

// MemoryStore is an in-process seen set. A zero TTL means entries live
// for the life of the process; a positive TTL lets a pair re-alert after
// the window expires, bounding memory.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryStore creates a memory store with the given TTL (0 = unbounded).
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Seen reports whether id was marked within the TTL window.
func (s *MemoryStore) Seen(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.seen[id]
	if !ok {
		return false, nil
	}
	if s.expired(at) {
		delete(s.seen, id)
		return false, nil
	}
	return true, nil
}

// MarkSeen records id; marking an already-present id refreshes nothing
// (first-seen time wins, so the TTL window is not silently extended).
func (s *MemoryStore) MarkSeen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if at, ok := s.seen[id]; ok && !s.expired(at) {
		return nil
	}
	s.seen[id] = s.now()
	s.sweepLocked()
	return nil
}

// Preload seeds the set, used to restore state from alert history at boot.
func (s *MemoryStore) Preload(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, id := range ids {
		if _, ok := s.seen[id]; !ok {
			s.seen[id] = now
		}
	}
}

// Len returns the live entry count.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, at := range s.seen {
		if !s.expired(at) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) expired(at time.Time) bool {
	return s.ttl > 0 && s.now().Sub(at) >= s.ttl
}

// sweepLocked drops expired entries; cheap because writes only happen
// when a pair actually alerts.
func (s *MemoryStore) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	for id, at := range s.seen {
		if s.expired(at) {
			delete(s.seen, id)
		}
	}
}

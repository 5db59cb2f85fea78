package dedup

import (
	"sync"
	"time"
)

// MemoryStore is the default process-local Store. State does not survive a
// restart, which is an accepted tradeoff given the transport's short retry
// window.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]time.Time)}
}

// CheckAndSet implements Store. Expired entries are purged on every call
// rather than on a background timer. An entry is expired once its age
// reaches the ttl, so a key first seen at T is new again at exactly T+ttl.
func (s *MemoryStore) CheckAndSet(key string, now time.Time, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-ttl)
	for k, firstSeen := range s.entries {
		if !firstSeen.After(cutoff) {
			delete(s.entries, k)
		}
	}

	if _, ok := s.entries[key]; ok {
		return true, nil
	}
	s.entries[key] = now
	return false, nil
}

package resultstore

import (
	"context"
	"sync"
	"time"

	"github.com/tessely/summarizer/internal/domain/summarizer"
)

type memoryEntry struct {
	result    summarizer.Result
	expiresAt time.Time
}

// MemoryStore is an in-process implementation of the result cache for
// dev/tests and single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get implements summarizer.ResultStore. Expired entries are misses and are
// evicted in place.
func (s *MemoryStore) Get(_ context.Context, fingerprint string) (summarizer.Result, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[fingerprint]
	s.mu.RUnlock()
	if !ok {
		return summarizer.Result{}, false, nil
	}
	if hasExpired(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, fingerprint)
		s.mu.Unlock()
		return summarizer.Result{}, false, nil
	}
	return entry.result.Clone(), true, nil
}

// Put stores an independent copy of the result.
func (s *MemoryStore) Put(_ context.Context, fingerprint string, result summarizer.Result, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[fingerprint] = memoryEntry{
		result:    result.Clone(),
		expiresAt: exp,
	}
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ summarizer.ResultStore = (*MemoryStore)(nil)

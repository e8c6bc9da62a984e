package memory

import (
	"context"
	"sync"
	"time"

	"disciple-assessment-service/internal/domain"
)

// FallbackStore holds unsaved results for a limited time.
type FallbackStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]fallbackEntry
}

type fallbackEntry struct {
	result    domain.Result
	expiresAt time.Time
}

func NewFallbackStore(ttl time.Duration) *FallbackStore {
	return &FallbackStore{
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]fallbackEntry),
	}
}

func (s *FallbackStore) Put(_ context.Context, key string, r domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.sweepLocked(now)
	s.entries[key] = fallbackEntry{result: r, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *FallbackStore) Get(_ context.Context, key string) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || !entry.expiresAt.After(s.clock()) {
		delete(s.entries, key)
		return domain.Result{}, domain.ErrFallbackNotFound
	}
	return entry.result, nil
}

func (s *FallbackStore) sweepLocked(now time.Time) {
	for key, entry := range s.entries {
		if !entry.expiresAt.After(now) {
			delete(s.entries, key)
		}
	}
}

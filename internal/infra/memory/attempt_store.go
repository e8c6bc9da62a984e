package memory

import (
	"sync"
	"time"

	"disciple-assessment-service/internal/assessment"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
// An attempt not touched for ttl is dropped; ttl <= 0 keeps attempts until deleted.
type AttemptStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.Mutex
	attempts map[string]heldAttempt
}

type heldAttempt struct {
	attempt  *assessment.Attempt
	lastSeen time.Time
}

func NewAttemptStore(ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		ttl:      ttl,
		clock:    time.Now,
		attempts: make(map[string]heldAttempt),
	}
}

func (s *AttemptStore) Put(attempt *assessment.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.sweepLocked(now)
	s.attempts[attempt.ID()] = heldAttempt{attempt: attempt, lastSeen: now}
}

// Get returns the attempt and slides its expiry.
func (s *AttemptStore) Get(attemptID string) (*assessment.Attempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	held, ok := s.attempts[attemptID]
	if !ok {
		return nil, false
	}
	now := s.clock()
	if s.expired(held, now) {
		delete(s.attempts, attemptID)
		return nil, false
	}
	held.lastSeen = now
	s.attempts[attemptID] = held
	return held.attempt, true
}

func (s *AttemptStore) Delete(attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, attemptID)
}

// Len reports how many attempts are held, expired ones included until the next sweep.
func (s *AttemptStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

func (s *AttemptStore) expired(held heldAttempt, now time.Time) bool {
	return s.ttl > 0 && !held.lastSeen.Add(s.ttl).After(now)
}

func (s *AttemptStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, held := range s.attempts {
		if s.expired(held, now) {
			delete(s.attempts, id)
		}
	}
}

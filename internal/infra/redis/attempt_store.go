package redis

import (
	"context"
	"sync"
	"time"

	"disciple-assessment-service/internal/assessment"
	"github.com/redis/go-redis/v9"
)

// AttemptStore is a Redis-aware implementation of AttemptRepository.
// Attempts themselves stay in a local map; Redis holds a liveness key per
// attempt whose TTL slides on every access. Once the key lapses the attempt is
// treated as abandoned and dropped, either on its next Get or by the sweep that
// Put runs at most once per sweepEvery. Redis errors keep attempts alive.
type AttemptStore struct {
	client     *redis.Client
	ttl        time.Duration
	sweepEvery time.Duration
	clock      func() time.Time

	mu        sync.RWMutex
	attempts  map[string]*assessment.Attempt
	lastSweep time.Time
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client:     client,
		ttl:        ttl,
		sweepEvery: ttl / 10,
		clock:      time.Now,
		attempts:   make(map[string]*assessment.Attempt),
	}
}

func (s *AttemptStore) Put(attempt *assessment.Attempt) {
	ctx := context.Background()
	s.maybeSweep(ctx)

	s.mu.Lock()
	s.attempts[attempt.ID()] = attempt
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(ctx, s.key(attempt.ID()), attempt.UserID(), s.ttl).Err()
}

func (s *AttemptStore) Get(attemptID string) (*assessment.Attempt, bool) {
	s.mu.RLock()
	attempt, ok := s.attempts[attemptID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl <= 0 {
		return attempt, true
	}

	alive, err := s.client.Expire(context.Background(), s.key(attemptID), s.ttl).Result()
	if err == nil && !alive {
		s.Delete(attemptID)
		return nil, false
	}
	return attempt, true
}

func (s *AttemptStore) Delete(attemptID string) {
	s.mu.Lock()
	delete(s.attempts, attemptID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(attemptID)).Err()
}

// Sweep drops every held attempt whose liveness key is gone and returns how
// many were dropped.
func (s *AttemptStore) Sweep(ctx context.Context) (int, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.attempts))
	for id := range s.attempts {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	if len(ids) == 0 {
		return 0, nil
	}

	pipe := s.client.Pipeline()
	checks := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		checks[i] = pipe.Exists(ctx, s.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	dropped := 0
	s.mu.Lock()
	for i, id := range ids {
		if checks[i].Val() == 0 {
			delete(s.attempts, id)
			dropped++
		}
	}
	s.mu.Unlock()
	return dropped, nil
}

// Len reports how many attempts are held in process.
func (s *AttemptStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attempts)
}

func (s *AttemptStore) maybeSweep(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	now := s.clock()
	s.mu.Lock()
	due := now.Sub(s.lastSweep) >= s.sweepEvery
	if due {
		s.lastSweep = now
	}
	s.mu.Unlock()
	if due {
		_, _ = s.Sweep(ctx)
	}
}

func (s *AttemptStore) key(attemptID string) string {
	return "assessment:attempt:" + attemptID
}

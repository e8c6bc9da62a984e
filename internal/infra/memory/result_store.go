package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"disciple-assessment-service/internal/domain"
	"github.com/google/uuid"
)

// ResultStore keeps completed results per user in process memory.
type ResultStore struct {
	clock func() time.Time

	mu     sync.RWMutex
	byUser map[string][]domain.Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		clock:  time.Now,
		byUser: make(map[string][]domain.Result),
	}
}

func (s *ResultStore) Insert(_ context.Context, r domain.Result) (string, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = s.clock().UTC()
	r.Answers = r.Answers.Clone()
	r.Scores = cloneScores(r.Scores)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[r.UserID] = append(s.byUser[r.UserID], r)
	return r.ID, nil
}

// List returns results newest first by completion time.
func (s *ResultStore) List(_ context.Context, userID string) ([]domain.Result, error) {
	s.mu.RLock()
	out := make([]domain.Result, len(s.byUser[userID]))
	copy(out, s.byUser[userID])
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (s *ResultStore) Latest(ctx context.Context, userID string) (domain.Result, bool, error) {
	results, _ := s.List(ctx, userID)
	if len(results) == 0 {
		return domain.Result{}, false, nil
	}
	return results[0], true, nil
}

func (s *ResultStore) Get(_ context.Context, userID, resultID string) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.byUser[userID] {
		if r.ID == resultID {
			return r, nil
		}
	}
	return domain.Result{}, domain.ErrResultNotFound
}

func (s *ResultStore) Count(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser[userID]), nil
}

func cloneScores(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

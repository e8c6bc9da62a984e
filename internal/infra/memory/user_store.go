package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"disciple-assessment-service/internal/domain"
)

// UserStore keeps accounts and their profiles in memory. Creating a user also
// creates the profile row.
type UserStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	byEmail  map[string]string
	profiles map[string]domain.Profile
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:    make(map[string]domain.User),
		byEmail:  make(map[string]string),
		profiles: make(map[string]domain.Profile),
	}
}

func (s *UserStore) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, taken := s.byEmail[email]; taken {
		return domain.User{}, domain.ErrEmailTaken
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	s.profiles[u.ID] = domain.Profile{
		UserID:    u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.CreatedAt,
	}
	return u, nil
}

func (s *UserStore) UserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *UserStore) UserByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) GetProfile(_ context.Context, userID string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrUserNotFound
	}
	return p, nil
}

func (s *UserStore) UpdateProfile(_ context.Context, userID, fullName string, at time.Time) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrUserNotFound
	}
	p.FullName = fullName
	p.UpdatedAt = at
	s.profiles[userID] = p
	return p, nil
}

package app

import (
	"context"
	"time"

	"disciple-assessment-service/internal/assessment"
	"disciple-assessment-service/internal/domain"
)

// BankRepository loads question bank content (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// AttemptRepository abstracts where in-flight attempts live (in-memory, Redis, etc).
type AttemptRepository interface {
	Put(attempt *assessment.Attempt)
	Get(attemptID string) (*assessment.Attempt, bool)
	Delete(attemptID string)
}

// ResultRepository is the durable store for completed attempts.
type ResultRepository interface {
	// Insert stores r and returns the generated id. Every call creates a new record.
	Insert(ctx context.Context, r domain.Result) (string, error)
	// List returns the user's results, newest first.
	List(ctx context.Context, userID string) ([]domain.Result, error)
	// Latest returns the newest result; ok is false when the user has none.
	Latest(ctx context.Context, userID string) (r domain.Result, ok bool, err error)
	Get(ctx context.Context, userID, resultID string) (domain.Result, error)
	Count(ctx context.Context, userID string) (int, error)
}

// FallbackStore keeps short-lived copies of results that were not persisted.
type FallbackStore interface {
	Put(ctx context.Context, key string, r domain.Result) error
	Get(ctx context.Context, key string) (domain.Result, error)
}

// ProfileRepository reads and edits user profiles.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	UpdateProfile(ctx context.Context, userID, fullName string, at time.Time) (domain.Profile, error)
}

// EventPublisher announces durably stored results.
type EventPublisher interface {
	PublishCompleted(ctx context.Context, r domain.Result) error
}

type nopPublisher struct{}

func (nopPublisher) PublishCompleted(context.Context, domain.Result) error { return nil }

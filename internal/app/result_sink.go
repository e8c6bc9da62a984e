package app

import (
	"context"

	"disciple-assessment-service/internal/domain"
	"disciple-assessment-service/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	warnUnauthenticated = "not signed in: result was not saved and is only kept temporarily"
	warnNotSaved        = "result could not be saved and is only kept temporarily"
	warnNoCopy          = "temporary copy could not be stored"
)

// Receipt describes what happened to a submitted result.
type Receipt struct {
	Result      domain.Result `json:"result"`
	Persisted   bool          `json:"persisted"`
	FallbackKey string        `json:"fallback_key,omitempty"`
	Warning     string        `json:"warning,omitempty"`
}

// ResultSink hands results to the durable store and degrades to a transient
// copy when that is impossible. There is no retry: a failed insert goes to the
// fallback once and the caller is never blocked on the remote store again.
type ResultSink struct {
	results   ResultRepository
	fallback  FallbackStore
	publisher EventPublisher
	logger    *zap.Logger
	newKey    func() string
}

func NewResultSink(results ResultRepository, fallback FallbackStore, publisher EventPublisher, logger *zap.Logger) *ResultSink {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultSink{
		results:   results,
		fallback:  fallback,
		publisher: publisher,
		logger:    logger,
		newKey:    uuid.NewString,
	}
}

// Submit persists r for r.UserID. An empty user id or an insert failure routes
// the result to the fallback store instead.
func (s *ResultSink) Submit(ctx context.Context, r domain.Result) Receipt {
	if r.UserID == "" {
		return s.degrade(ctx, r, warnUnauthenticated)
	}

	id, err := s.results.Insert(ctx, r)
	if err != nil {
		s.logger.Warn("persisting result failed, using transient copy",
			zap.String("user_id", r.UserID),
			zap.Error(err))
		return s.degrade(ctx, r, warnNotSaved)
	}

	r.ID = id
	metrics.Submissions.WithLabelValues(metrics.OutcomePersisted).Inc()
	if err := s.publisher.PublishCompleted(ctx, r); err != nil {
		s.logger.Warn("publishing completed event failed",
			zap.String("result_id", id),
			zap.Error(err))
	}
	return Receipt{Result: r, Persisted: true}
}

func (s *ResultSink) degrade(ctx context.Context, r domain.Result, warning string) Receipt {
	metrics.Submissions.WithLabelValues(metrics.OutcomeFallback).Inc()
	r.ID = ""
	key := s.newKey()
	if err := s.fallback.Put(ctx, key, r); err != nil {
		s.logger.Error("storing transient result failed", zap.Error(err))
		return Receipt{Result: r, Warning: warning + "; " + warnNoCopy}
	}
	s.logger.Info("result kept in transient storage",
		zap.String("user_id", r.UserID),
		zap.String("fallback_key", key))
	return Receipt{Result: r, FallbackKey: key, Warning: warning}
}

// Transient reads back a fallback copy.
func (s *ResultSink) Transient(ctx context.Context, key string) (domain.Result, error) {
	return s.fallback.Get(ctx, key)
}

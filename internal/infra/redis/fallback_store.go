package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"disciple-assessment-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// FallbackStore keeps unsaved results in Redis until the TTL lapses.
type FallbackStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFallbackStore(client *redis.Client, ttl time.Duration) *FallbackStore {
	return &FallbackStore{client: client, ttl: ttl}
}

func (s *FallbackStore) Put(ctx context.Context, key string, r domain.Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return s.client.Set(ctx, s.key(key), data, s.ttl).Err()
}

func (s *FallbackStore) Get(ctx context.Context, key string) (domain.Result, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Result{}, domain.ErrFallbackNotFound
	}
	if err != nil {
		return domain.Result{}, err
	}
	var r domain.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Result{}, fmt.Errorf("decode result: %w", err)
	}
	return r, nil
}

func (s *FallbackStore) key(key string) string {
	return "assessment:fallback:" + key
}

package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist stores revoked token ids with the token's remaining lifetime as TTL.
type Denylist struct {
	client *redis.Client
}

func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

func (d *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return d.client.Set(ctx, d.key(tokenID), "1", ttl).Err()
}

func (d *Denylist) Revoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *Denylist) key(tokenID string) string {
	return "auth:revoked:" + tokenID
}

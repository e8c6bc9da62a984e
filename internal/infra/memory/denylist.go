package memory

import (
	"context"
	"sync"
	"time"
)

// Denylist remembers revoked token ids until they would have expired anyway.
type Denylist struct {
	clock func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewDenylist() *Denylist {
	return &Denylist{clock: time.Now, revoked: make(map[string]time.Time)}
}

func (d *Denylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = d.clock().Add(ttl)
	return nil
}

func (d *Denylist) Revoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !until.After(d.clock()) {
		delete(d.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

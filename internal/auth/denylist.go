package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "auth:revoked:"

// Denylist records revoked token ids until they would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisDenylist struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisDenylist stores revoked token ids in Redis.
func NewRedisDenylist(client *redis.Client) Denylist {
	return &redisDenylist{client: client, now: time.Now}
}

func (d *redisDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return ErrInvalidToken
	}
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistPrefix+tokenID, "1", ttl).Err()
}

func (d *redisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	err := d.client.Get(ctx, denylistPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type memoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist keeps revocations in process memory. Used when Redis is
// not configured; revocations do not survive a restart.
func NewMemoryDenylist() Denylist {
	return &memoryDenylist{entries: map[string]time.Time{}, now: time.Now}
}

func (d *memoryDenylist) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return ErrInvalidToken
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[tokenID] = expiresAt
	return nil
}

func (d *memoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	expiresAt, ok := d.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(d.now()) {
		delete(d.entries, tokenID)
		return false, nil
	}
	return true, nil
}

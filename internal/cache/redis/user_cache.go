package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exchange-backend/internal/features/user/models"
	rplatform "exchange-backend/internal/platform/redis"
)

// UserCache provides Redis-based read-through caching for user records.
// Every ledger write invalidates the entry, so the TTL only bounds
// staleness of pure reads.
type UserCache struct {
	client *rplatform.Client
	ttl    time.Duration
}

func NewUserCache(client *rplatform.Client, ttl time.Duration) *UserCache {
	return &UserCache{client: client, ttl: ttl}
}

func (c *UserCache) key(id string) string { return fmt.Sprintf("user:id:%s", id) }

// Set stores the user under its id key.
func (c *UserCache) Set(ctx context.Context, u *models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(u.ID), b, c.ttl).Err()
}

// GetByID returns the cached user, or nil on miss.
func (c *UserCache) GetByID(ctx context.Context, id string) (*models.User, error) {
	v, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(v, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Invalidate drops the cached entry for a user.
func (c *UserCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

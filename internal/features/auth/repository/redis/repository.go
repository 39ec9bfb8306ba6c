package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"exchange-backend/internal/features/auth/models"
	"exchange-backend/internal/features/auth/repository"
	rplatform "exchange-backend/internal/platform/redis"
)

type sessionRepository struct {
	client *rplatform.Client
}

func NewSessionRepository(client *rplatform.Client) repository.SessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) key(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Save stores the session with a TTL matching its expiry, so Redis reaps
// expired sessions without a sweeper.
func (r *sessionRepository) Save(ctx context.Context, session *models.Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return r.client.Set(ctx, r.key(session.Token), b, ttl).Err()
}

func (r *sessionRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	b, err := r.client.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal(b, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.key(token)).Err()
}

package repository

import (
	"context"
	"errors"

	"exchange-backend/internal/features/auth/models"
)

// ErrNotFound is returned when no session exists for a token, which covers
// both never-issued and TTL-expired tokens.
var ErrNotFound = errors.New("session not found")

type SessionRepository interface {
	Save(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}

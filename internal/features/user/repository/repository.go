package repository

import (
	"context"
	"errors"

	"exchange-backend/internal/features/user/models"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// UserRepository provides persistence for user records. Tx runs fn against
// a repository bound to a single database transaction; every ledger
// mutation goes through it so reads and writes of one flow are atomic.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByReferralCode(ctx context.Context, code string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error

	Tx(ctx context.Context, fn func(repo UserRepository) error) error
}

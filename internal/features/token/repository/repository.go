package repository

import (
	"context"
	"errors"
	"time"

	"exchange-backend/internal/features/token/models"
	usermodels "exchange-backend/internal/features/user/models"
)

var (
	ErrTokenNotFound   = errors.New("deposit token not found")
	ErrListingNotFound = errors.New("listed token not found")
	ErrUserNotFound    = errors.New("user not found")
)

// TokenRepository persists deposit tokens and listings. It also reads and
// writes users because the maturation payout credits the owner's prop
// balance in the same transaction that deletes the token.
type TokenRepository interface {
	CreateDepositToken(ctx context.Context, token *models.DepositToken) error
	GetDepositToken(ctx context.Context, id string) (*models.DepositToken, error)
	GetConfirmedByUser(ctx context.Context, userID string) (*models.DepositToken, error)
	UpdateDepositToken(ctx context.Context, token *models.DepositToken) error
	DeleteDepositToken(ctx context.Context, id string) error

	// ListActivatedBefore returns activated tokens created at or before
	// cutoff, for the maturation worker.
	ListActivatedBefore(ctx context.Context, cutoff time.Time) ([]*models.DepositToken, error)

	GetListingByTokenID(ctx context.Context, tokenID string) (*models.ListedToken, error)
	CreateListing(ctx context.Context, listing *models.ListedToken) error
	GetListing(ctx context.Context, id string) (*models.ListedToken, error)
	DeleteListing(ctx context.Context, id string) error

	GetUser(ctx context.Context, id string) (*usermodels.User, error)
	UpdateUser(ctx context.Context, user *usermodels.User) error

	Tx(ctx context.Context, fn func(repo TokenRepository) error) error
}

package repository

import (
	"context"
	"errors"

	"exchange-backend/internal/features/purchase/models"
	usermodels "exchange-backend/internal/features/user/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrPropNotFound = errors.New("prop purchase not found")
)

// PurchaseRepository spans the records one purchase RPC touches: the
// caller's account row, the immutable transaction log and the pending prop
// purchases. Tx binds all of them to a single database transaction.
type PurchaseRepository interface {
	GetUser(ctx context.Context, id string) (*usermodels.User, error)
	UpdateUser(ctx context.Context, user *usermodels.User) error

	CreateTransaction(ctx context.Context, record *models.Transaction) error
	CreateProp(ctx context.Context, record *models.PropPurchase) error

	// GetPendingProp matches on the caller's own user id and the exact
	// code; identical codes under other users never match.
	GetPendingProp(ctx context.Context, userID, code string) (*models.PropPurchase, error)
	UpdateProp(ctx context.Context, record *models.PropPurchase) error

	Tx(ctx context.Context, fn func(repo PurchaseRepository) error) error
}

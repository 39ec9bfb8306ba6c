package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"exchange-backend/internal/features/purchase/models"
	"exchange-backend/internal/features/purchase/repository"
	usermodels "exchange-backend/internal/features/user/models"
)

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) repository.PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) GetUser(ctx context.Context, id string) (*usermodels.User, error) {
	var user usermodels.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *purchaseRepository) UpdateUser(ctx context.Context, user *usermodels.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *purchaseRepository) CreateTransaction(ctx context.Context, record *models.Transaction) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *purchaseRepository) CreateProp(ctx context.Context, record *models.PropPurchase) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *purchaseRepository) GetPendingProp(ctx context.Context, userID, code string) (*models.PropPurchase, error) {
	var record models.PropPurchase
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "user_id = ? AND code = ? AND status = ?", userID, code, models.StatusPending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPropNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *purchaseRepository) UpdateProp(ctx context.Context, record *models.PropPurchase) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *purchaseRepository) Tx(ctx context.Context, fn func(repo repository.PurchaseRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&purchaseRepository{db: tx})
	})
}

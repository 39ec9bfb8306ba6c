package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"exchange-backend/internal/features/token/models"
	"exchange-backend/internal/features/token/repository"
	usermodels "exchange-backend/internal/features/user/models"
)

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) CreateDepositToken(ctx context.Context, token *models.DepositToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *tokenRepository) GetDepositToken(ctx context.Context, id string) (*models.DepositToken, error) {
	var token models.DepositToken
	err := r.db.WithContext(ctx).First(&token, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) GetConfirmedByUser(ctx context.Context, userID string) (*models.DepositToken, error) {
	var token models.DepositToken
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&token, "user_id = ? AND status = ? AND activated = false", userID, models.StatusConfirmed).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) UpdateDepositToken(ctx context.Context, token *models.DepositToken) error {
	return r.db.WithContext(ctx).Save(token).Error
}

func (r *tokenRepository) DeleteDepositToken(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.DepositToken{}, "id = ?", id).Error
}

func (r *tokenRepository) ListActivatedBefore(ctx context.Context, cutoff time.Time) ([]*models.DepositToken, error) {
	var tokens []*models.DepositToken
	err := r.db.WithContext(ctx).
		Where("activated = true AND timestamp <= ?", cutoff).
		Find(&tokens).Error
	return tokens, err
}

func (r *tokenRepository) GetListingByTokenID(ctx context.Context, tokenID string) (*models.ListedToken, error) {
	var listing models.ListedToken
	err := r.db.WithContext(ctx).First(&listing, "token_id = ?", tokenID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (r *tokenRepository) CreateListing(ctx context.Context, listing *models.ListedToken) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *tokenRepository) GetListing(ctx context.Context, id string) (*models.ListedToken, error) {
	var listing models.ListedToken
	err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (r *tokenRepository) DeleteListing(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.ListedToken{}, "id = ?", id).Error
}

func (r *tokenRepository) GetUser(ctx context.Context, id string) (*usermodels.User, error) {
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

func (r *tokenRepository) UpdateUser(ctx context.Context, user *usermodels.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *tokenRepository) Tx(ctx context.Context, fn func(repo repository.TokenRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&tokenRepository{db: tx})
	})
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "exchange-backend/internal/common/errors"
	"exchange-backend/internal/common/logger"
	"exchange-backend/internal/features/token/models"
	"exchange-backend/internal/features/token/repository"
	userservice "exchange-backend/internal/features/user/service"
)

type TokenService interface {
	CreateDepositToken(ctx context.Context, req models.CreateDepositTokenRequest) (*models.DepositToken, error)
	ActivateBot(ctx context.Context, userID string) (*models.DepositToken, error)
	ListToken(ctx context.Context, userID string, req models.ListTokenRequest) (*models.ListedToken, error)
	DelistToken(ctx context.Context, userID, listingID string) error

	// ProcessMatured credits matured payouts and deletes the consumed
	// records. Called by the maturation worker; returns how many records
	// were settled.
	ProcessMatured(ctx context.Context) (int, error)
}

type tokenService struct {
	repo  repository.TokenRepository
	cache userservice.Cache
}

func NewTokenService(repo repository.TokenRepository, cache userservice.Cache) TokenService {
	return &tokenService{repo: repo, cache: cache}
}

func (s *tokenService) CreateDepositToken(ctx context.Context, req models.CreateDepositTokenRequest) (*models.DepositToken, error) {
	if req.Token == "" {
		return nil, apperrors.NewValidationError("token", "token cannot be empty")
	}

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	if status != models.StatusPending && status != models.StatusConfirmed {
		return nil, apperrors.NewValidationError("status", "status must be pending or confirmed")
	}

	token := &models.DepositToken{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Token:       req.Token,
		Password:    req.Password,
		Status:      status,
		WeeklySales: req.WeeklySales,
		Price:       req.Price,
		Email:       req.Email,
	}
	if err := s.repo.CreateDepositToken(ctx, token); err != nil {
		return nil, apperrors.NewDatabaseError("create deposit token", err)
	}
	return token, nil
}

// ActivateBot consumes the caller's confirmed deposit token: the bot flag
// flips immediately, the payout lands after the maturation window.
func (s *tokenService) ActivateBot(ctx context.Context, userID string) (*models.DepositToken, error) {
	var activated *models.DepositToken
	err := s.repo.Tx(ctx, func(tx repository.TokenRepository) error {
		token, err := tx.GetConfirmedByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				return apperrors.New(apperrors.ErrCodeTokenNotFound, "No confirmed deposit found")
			}
			return apperrors.NewDatabaseError("get deposit token", err)
		}

		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return apperrors.NewUserNotFoundError(userID)
			}
			return apperrors.NewDatabaseError("get user", err)
		}

		token.Activated = true
		if err := tx.UpdateDepositToken(ctx, token); err != nil {
			return apperrors.NewDatabaseError("update deposit token", err)
		}

		user.BotActivated = true
		if err := tx.UpdateUser(ctx, user); err != nil {
			return apperrors.NewDatabaseError("update user", err)
		}

		activated = token
		return nil
	})
	if err != nil {
		return nil, s.asAppError(err)
	}

	s.invalidate(ctx, userID)
	return activated, nil
}

func (s *tokenService) ListToken(ctx context.Context, userID string, req models.ListTokenRequest) (*models.ListedToken, error) {
	if req.Name == "" {
		return nil, apperrors.NewValidationError("name", "name cannot be empty")
	}

	var listing *models.ListedToken
	err := s.repo.Tx(ctx, func(tx repository.TokenRepository) error {
		token, err := tx.GetDepositToken(ctx, req.TokenID)
		if err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				return apperrors.New(apperrors.ErrCodeTokenNotFound, "Token does not exist")
			}
			return apperrors.NewDatabaseError("get deposit token", err)
		}
		if token.UserID != userID {
			return apperrors.New(apperrors.ErrCodeFailedPrecondition, "Token belongs to another user")
		}

		// Existence check and insert share the transaction, so two racers
		// cannot both list the same token.
		if _, err := tx.GetListingByTokenID(ctx, req.TokenID); err == nil {
			return apperrors.New(apperrors.ErrCodeAlreadyListed, "Token is already listed")
		} else if !errors.Is(err, repository.ErrListingNotFound) {
			return apperrors.NewDatabaseError("check listing", err)
		}

		listing = &models.ListedToken{
			ID:          uuid.New().String(),
			TokenID:     token.ID,
			RandomToken: token.Token,
			Password:    token.Password,
			UserID:      userID,
			Name:        req.Name,
			Supply:      req.Supply,
		}
		if err := tx.CreateListing(ctx, listing); err != nil {
			return apperrors.NewDatabaseError("create listing", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.asAppError(err)
	}
	return listing, nil
}

func (s *tokenService) DelistToken(ctx context.Context, userID, listingID string) error {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return apperrors.New(apperrors.ErrCodeTokenNotFound, "Listing not found")
		}
		return apperrors.NewDatabaseError("get listing", err)
	}
	if listing.UserID != userID {
		return apperrors.New(apperrors.ErrCodeFailedPrecondition, "Listing belongs to another user")
	}

	if err := s.repo.DeleteListing(ctx, listingID); err != nil {
		return apperrors.NewDatabaseError("delete listing", err)
	}
	return nil
}

func (s *tokenService) ProcessMatured(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-models.MaturationWindow)
	matured, err := s.repo.ListActivatedBefore(ctx, cutoff)
	if err != nil {
		return 0, apperrors.NewDatabaseError("list matured tokens", err)
	}

	settled := 0
	for _, token := range matured {
		tokenID := token.ID
		err := s.repo.Tx(ctx, func(tx repository.TokenRepository) error {
			t, err := tx.GetDepositToken(ctx, tokenID)
			if err != nil {
				if errors.Is(err, repository.ErrTokenNotFound) {
					return nil // settled by a concurrent worker
				}
				return err
			}
			if !t.Matured(time.Now()) {
				return nil
			}

			user, err := tx.GetUser(ctx, t.UserID)
			if err != nil {
				return err
			}

			user.PropBalance = user.PropBalance.Add(t.Payout())
			if err := tx.UpdateUser(ctx, user); err != nil {
				return err
			}
			if err := tx.DeleteDepositToken(ctx, tokenID); err != nil {
				return err
			}

			settled++
			s.invalidate(ctx, t.UserID)

			logger.Info().
				Str("user_id", t.UserID).
				Str("token_id", tokenID).
				Str("payout", t.Payout().String()).
				Msg("Deposit token matured")
			return nil
		})
		if err != nil {
			logger.Error().
				Str("token_id", tokenID).
				Err(err).
				Msg("Failed to settle matured token")
		}
	}
	return settled, nil
}

func (s *tokenService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
}

func (s *tokenService) asAppError(err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return apperrors.NewDatabaseError("token transaction", err)
}

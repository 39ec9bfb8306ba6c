package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	apperrors "exchange-backend/internal/common/errors"
	"exchange-backend/internal/common/logger"
	"exchange-backend/internal/common/validation"
	usermodels "exchange-backend/internal/features/user/models"
	userrepo "exchange-backend/internal/features/user/repository"
	userservice "exchange-backend/internal/features/user/service"
	"exchange-backend/internal/features/wallet/models"
)

// WalletService is the ledger logic behind the deposit, withdraw and
// bonus-claim flows. Every operation is one database transaction, so two
// sessions of the same account cannot double-claim or lose an update.
type WalletService interface {
	Deposit(ctx context.Context, userID string, req models.DepositRequest) (*models.BalanceResponse, error)
	Withdraw(ctx context.Context, userID string, req models.WithdrawRequest) (*models.BalanceResponse, error)
	ClaimSignupBonus(ctx context.Context, userID string) (*models.BalanceResponse, error)
	ClaimFirstDepositBonus(ctx context.Context, userID string) (*models.BalanceResponse, error)
	ClaimReferralBonus(ctx context.Context, userID string) (*models.BalanceResponse, error)
}

type walletService struct {
	repo  userrepo.UserRepository
	cache userservice.Cache
}

func NewWalletService(repo userrepo.UserRepository, cache userservice.Cache) WalletService {
	return &walletService{repo: repo, cache: cache}
}

func (s *walletService) Deposit(ctx context.Context, userID string, req models.DepositRequest) (*models.BalanceResponse, error) {
	if req.Amount.LessThan(models.MinimumDeposit) {
		return nil, apperrors.NewValidationError("amount", "deposit must be at least "+models.MinimumDeposit.String()+" USDT")
	}

	fee := models.FeeFor(req.Channel)
	credited := req.Amount.Sub(fee)

	var resp *models.BalanceResponse
	err := s.mutate(ctx, userID, func(user *usermodels.User) error {
		user.Balance = user.Balance.Add(credited)

		// First successful deposit arms the task flag once; it is never
		// re-armed after the bonus has been claimed.
		if !user.HasFirstDepositBonus && !user.HasFirstDepositBonusClaimed {
			user.HasFirstDepositBonus = true
		}

		resp = &models.BalanceResponse{
			Balance:  user.Balance,
			Credited: credited,
			Fee:      fee,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("user_id", userID).
		Str("channel", req.Channel).
		Str("amount", req.Amount.String()).
		Str("fee", fee.String()).
		Msg("Deposit credited")

	return resp, nil
}

func (s *walletService) Withdraw(ctx context.Context, userID string, req models.WithdrawRequest) (*models.BalanceResponse, error) {
	if err := validation.ValidateAmount(req.Amount); err != nil {
		return nil, apperrors.NewValidationError("amount", err.Error())
	}
	if err := validation.ValidateAddress(req.Address, req.Channel); err != nil {
		return nil, apperrors.NewValidationError("address", err.Error())
	}

	var resp *models.BalanceResponse
	err := s.mutate(ctx, userID, func(user *usermodels.User) error {
		minimum := MinimumWithdrawal(user)
		if req.Amount.LessThan(minimum) {
			return apperrors.New(apperrors.ErrCodeBelowMinimum, "Withdrawal below minimum").
				WithDetail("minimum", minimum.String()).
				WithDetail("amount", req.Amount.String())
		}
		if req.Amount.GreaterThan(user.Balance) {
			return apperrors.NewInsufficientBalanceError(user.Balance.String(), req.Amount.String())
		}

		user.Balance = user.Balance.Sub(req.Amount)
		resp = &models.BalanceResponse{
			Balance: user.Balance,
			Debited: req.Amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("user_id", userID).
		Str("channel", req.Channel).
		Str("amount", req.Amount.String()).
		Msg("Withdrawal accepted")

	return resp, nil
}

func (s *walletService) ClaimSignupBonus(ctx context.Context, userID string) (*models.BalanceResponse, error) {
	var resp *models.BalanceResponse
	err := s.mutate(ctx, userID, func(user *usermodels.User) error {
		if !user.HasSignupBonus || user.HasSignupBonusClaimed {
			return apperrors.New(apperrors.ErrCodeNoBonusAvailable, "Signup bonus not available")
		}

		user.Balance = user.Balance.Add(models.SignupBonusAmount)
		user.HasSignupBonusClaimed = true
		resp = &models.BalanceResponse{
			Balance:  user.Balance,
			Credited: models.SignupBonusAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *walletService) ClaimFirstDepositBonus(ctx context.Context, userID string) (*models.BalanceResponse, error) {
	var resp *models.BalanceResponse
	err := s.mutate(ctx, userID, func(user *usermodels.User) error {
		if !user.HasFirstDepositBonus || user.HasFirstDepositBonusClaimed {
			return apperrors.New(apperrors.ErrCodeNoBonusAvailable, "First deposit bonus not available")
		}

		user.Balance = user.Balance.Add(models.FirstDepositBonusAmount)
		user.HasFirstDepositBonusClaimed = true
		resp = &models.BalanceResponse{
			Balance:  user.Balance,
			Credited: models.FirstDepositBonusAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *walletService) ClaimReferralBonus(ctx context.Context, userID string) (*models.BalanceResponse, error) {
	var resp *models.BalanceResponse
	err := s.mutate(ctx, userID, func(user *usermodels.User) error {
		earned := models.ReferralBonusRate.Mul(decimal.NewFromInt(int64(user.ReferralCount)))
		bonusToClaim := earned.Sub(user.ClaimedReferralBonus)
		if bonusToClaim.LessThanOrEqual(decimal.Zero) {
			return apperrors.New(apperrors.ErrCodeNoBonusAvailable, "No bonus available")
		}

		user.Balance = user.Balance.Add(bonusToClaim)
		user.ClaimedReferralBonus = user.ClaimedReferralBonus.Add(bonusToClaim)
		resp = &models.BalanceResponse{
			Balance:              user.Balance,
			Credited:             bonusToClaim,
			ClaimedReferralBonus: user.ClaimedReferralBonus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// MinimumWithdrawal is twice the bonus value already claimed, never below
// the floor.
func MinimumWithdrawal(user *usermodels.User) decimal.Decimal {
	claimed := decimal.Zero
	if user.HasSignupBonusClaimed {
		claimed = claimed.Add(models.SignupBonusAmount)
	}
	if user.HasFirstDepositBonusClaimed {
		claimed = claimed.Add(models.FirstDepositBonusAmount)
	}

	minimum := claimed.Mul(decimal.NewFromInt(2))
	if minimum.LessThan(models.WithdrawalFloor) {
		return models.WithdrawalFloor
	}
	return minimum
}

// mutate runs fn on the locked user row inside one transaction and
// invalidates the cache entry afterwards.
func (s *walletService) mutate(ctx context.Context, userID string, fn func(user *usermodels.User) error) error {
	err := s.repo.Tx(ctx, func(tx userrepo.UserRepository) error {
		user, err := tx.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, userrepo.ErrNotFound) {
				return apperrors.NewUserNotFoundError(userID)
			}
			return apperrors.NewDatabaseError("get user", err)
		}

		if err := fn(user); err != nil {
			return err
		}

		if err := tx.Update(ctx, user); err != nil {
			return apperrors.NewDatabaseError("update user", err)
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return err
		}
		return apperrors.NewDatabaseError("wallet transaction", err)
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
	return nil
}

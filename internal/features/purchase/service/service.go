package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "exchange-backend/internal/common/errors"
	"exchange-backend/internal/common/logger"
	"exchange-backend/internal/common/validation"
	"exchange-backend/internal/features/purchase/models"
	"exchange-backend/internal/features/purchase/repository"
	usermodels "exchange-backend/internal/features/user/models"
	userservice "exchange-backend/internal/features/user/service"
)

const verificationCodeLength = 8

var (
	// StartingMainBalance seeds an account that has never traded.
	StartingMainBalance = decimal.NewFromInt(10000)

	// PropPurchasePrice is the flat cost of a prop unlock.
	PropPurchasePrice = decimal.NewFromInt(5)

	// PointsPerUnit is credited per unit of purchase amount.
	PointsPerUnit = decimal.NewFromInt(100)
)

// Mailer delivers the prop verification code. The relay client implements
// it; tests stub it.
type Mailer interface {
	Send(ctx context.Context, to, subject, text string) error
}

// PurchaseService holds the three transactional operations of the purchase
// subsystem. Each call is one atomic read-modify-write.
type PurchaseService interface {
	ProcessPurchase(ctx context.Context, userID string, req models.PurchaseRequest) (*models.Result, error)
	ProcessPropPurchase(ctx context.Context, userID string, req models.PropPurchaseRequest) (*models.Result, error)
	VerifyPropCode(ctx context.Context, userID string, req models.VerifyRequest) (*models.Result, error)
}

type purchaseService struct {
	repo   repository.PurchaseRepository
	mailer Mailer
	cache  userservice.Cache
}

func NewPurchaseService(repo repository.PurchaseRepository, mailer Mailer, cache userservice.Cache) PurchaseService {
	return &purchaseService{repo: repo, mailer: mailer, cache: cache}
}

func (s *purchaseService) ProcessPurchase(ctx context.Context, userID string, req models.PurchaseRequest) (*models.Result, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidationError("amount", "amount must be positive")
	}

	err := s.repo.Tx(ctx, func(tx repository.PurchaseRepository) error {
		user, err := s.lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		if user.MainBalance.LessThan(req.Amount) {
			return apperrors.NewInsufficientBalanceError(user.MainBalance.String(), req.Amount.String())
		}

		points := req.Amount.Mul(PointsPerUnit)
		user.MainBalance = user.MainBalance.Sub(req.Amount)
		user.Points = user.Points.Add(points)
		if err := tx.UpdateUser(ctx, user); err != nil {
			return apperrors.NewDatabaseError("update account", err)
		}

		record := &models.Transaction{
			ID:     uuid.New().String(),
			UserID: userID,
			Type:   models.TypePurchase,
			Amount: req.Amount,
			Points: points,
			Status: models.StatusCompleted,
		}
		if err := tx.CreateTransaction(ctx, record); err != nil {
			return apperrors.NewDatabaseError("create transaction", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.asAppError(err)
	}

	s.invalidate(ctx, userID)
	return &models.Result{Success: true, Message: "Purchase completed"}, nil
}

func (s *purchaseService) ProcessPropPurchase(ctx context.Context, userID string, req models.PropPurchaseRequest) (*models.Result, error) {
	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, apperrors.NewValidationError("email", err.Error())
	}

	code := randomVerificationCode()

	err := s.repo.Tx(ctx, func(tx repository.PurchaseRepository) error {
		user, err := s.lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		if user.MainBalance.LessThan(PropPurchasePrice) {
			return apperrors.NewInsufficientBalanceError(user.MainBalance.String(), PropPurchasePrice.String())
		}

		user.MainBalance = user.MainBalance.Sub(PropPurchasePrice)
		if err := tx.UpdateUser(ctx, user); err != nil {
			return apperrors.NewDatabaseError("update account", err)
		}

		record := &models.PropPurchase{
			ID:     uuid.New().String(),
			UserID: userID,
			Email:  req.Email,
			Amount: PropPurchasePrice,
			Code:   code,
			Status: models.StatusPending,
		}
		if err := tx.CreateProp(ctx, record); err != nil {
			return apperrors.NewDatabaseError("create prop purchase", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.asAppError(err)
	}

	s.invalidate(ctx, userID)

	// The debit is already committed. A failed send is surfaced but not
	// compensated; this ordering is a known product decision.
	subject := "Your prop verification code"
	text := fmt.Sprintf("Your verification code is %s", code)
	if err := s.mailer.Send(ctx, req.Email, subject, text); err != nil {
		logger.Error().
			Str("user_id", userID).
			Err(err).
			Msg("Prop verification mail failed after debit")
		return nil, apperrors.NewMailRelayError("send verification code", err)
	}

	return &models.Result{Success: true, Message: "Verification code sent"}, nil
}

func (s *purchaseService) VerifyPropCode(ctx context.Context, userID string, req models.VerifyRequest) (*models.Result, error) {
	if req.Code == "" {
		return nil, apperrors.NewValidationError("code", "code cannot be empty")
	}

	err := s.repo.Tx(ctx, func(tx repository.PurchaseRepository) error {
		record, err := tx.GetPendingProp(ctx, userID, req.Code)
		if err != nil {
			if errors.Is(err, repository.ErrPropNotFound) {
				return apperrors.New(apperrors.ErrCodeInvalidPropCode, "Invalid or expired verification code")
			}
			return apperrors.NewDatabaseError("get prop purchase", err)
		}

		user, err := s.lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		user.PropBalance = user.PropBalance.Add(record.Amount)
		user.PropStatus = true
		if err := tx.UpdateUser(ctx, user); err != nil {
			return apperrors.NewDatabaseError("update account", err)
		}

		record.Status = models.StatusActive
		if err := tx.UpdateProp(ctx, record); err != nil {
			return apperrors.NewDatabaseError("update prop purchase", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.asAppError(err)
	}

	s.invalidate(ctx, userID)
	return &models.Result{Success: true, Message: "Prop balance activated"}, nil
}

// lockUser fetches the caller's row for update, applying the one-time
// starting balance to an account that has never traded.
func (s *purchaseService) lockUser(ctx context.Context, tx repository.PurchaseRepository, userID string) (*usermodels.User, error) {
	user, err := tx.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(userID)
		}
		return nil, apperrors.NewDatabaseError("get account", err)
	}

	if !user.MainBalanceInitialized {
		user.MainBalance = StartingMainBalance
		user.MainBalanceInitialized = true
	}
	return user, nil
}

func (s *purchaseService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
}

func (s *purchaseService) asAppError(err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return apperrors.NewDatabaseError("purchase transaction", err)
}

const codeDigits = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

func randomVerificationCode() string {
	b := make([]byte, verificationCodeLength)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	for i := range b {
		b[i] = codeDigits[int(b[i])%len(codeDigits)]
	}
	return string(b)
}

package service

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "exchange-backend/internal/common/errors"
	"exchange-backend/internal/common/validation"
	"exchange-backend/internal/features/user/models"
	"exchange-backend/internal/features/user/repository"
)

const referralCodeLength = 8

// Cache is the read-through user cache consulted by GetUser.
type Cache interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Set(ctx context.Context, u *models.User) error
	Invalidate(ctx context.Context, id string) error
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*models.UserResponse, error)
	GetUser(ctx context.Context, id string) (*models.UserResponse, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.UserResponse, error)
}

// RegisterInput carries the signup form fields. ReferralCode is the code
// of the inviting user, optional.
type RegisterInput struct {
	Email        string
	Password     string
	Name         string
	ReferralCode string
}

type userService struct {
	repo  repository.UserRepository
	cache Cache
}

func NewUserService(repo repository.UserRepository, cache Cache) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*models.UserResponse, error) {
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, apperrors.NewValidationError("email", err.Error())
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, apperrors.NewValidationError("password", err.Error())
	}
	if err := validation.ValidateName(input.Name); err != nil {
		return nil, apperrors.NewValidationError("name", err.Error())
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.New(apperrors.ErrCodeConflict, "Account already exists for this email")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewDatabaseError("get user by email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to hash password")
	}

	code, err := s.uniqueReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:             newID(),
		Email:          input.Email,
		PasswordHash:   string(hash),
		Name:           input.Name,
		AccountStatus:  models.StatusActive,
		ReferralCode:   code,
		ReferredBy:     input.ReferralCode,
		HasSignupBonus: true,
		LastLogin:      time.Now(),
	}

	err = s.repo.Tx(ctx, func(tx repository.UserRepository) error {
		if input.ReferralCode != "" {
			referrer, err := tx.GetByReferralCode(ctx, input.ReferralCode)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperrors.NewValidationError("referral_code", "unknown referral code")
				}
				return apperrors.NewDatabaseError("get referrer", err)
			}
			referrer.ReferralCount++
			if err := tx.Update(ctx, referrer); err != nil {
				return apperrors.NewDatabaseError("update referrer", err)
			}
			if s.cache != nil {
				_ = s.cache.Invalidate(ctx, referrer.ID)
			}
		}
		if err := tx.Create(ctx, user); err != nil {
			return apperrors.NewDatabaseError("create user", err)
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewDatabaseError("register", err)
	}

	return toUserResponse(user), nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.UserResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetByID(ctx, id); err == nil && cached != nil {
			return toUserResponse(cached), nil
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUserNotFoundError(id)
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, user)
	}

	return toUserResponse(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.UserResponse, error) {
	if update.Name != "" {
		if err := validation.ValidateName(update.Name); err != nil {
			return nil, apperrors.NewValidationError("name", err.Error())
		}
	}
	if err := validation.ValidatePhone(update.PhoneNumber); err != nil {
		return nil, apperrors.NewValidationError("phone_number", err.Error())
	}

	var user *models.User
	err := s.repo.Tx(ctx, func(tx repository.UserRepository) error {
		u, err := tx.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewUserNotFoundError(id)
			}
			return apperrors.NewDatabaseError("get user", err)
		}
		if update.Name != "" {
			u.Name = update.Name
		}
		if update.PhoneNumber != "" {
			u.PhoneNumber = update.PhoneNumber
		}
		if update.Avatar != "" {
			u.Avatar = update.Avatar
		}
		if err := tx.Update(ctx, u); err != nil {
			return apperrors.NewDatabaseError("update user", err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, id)
	}

	return toUserResponse(user), nil
}

// uniqueReferralCode draws codes until one is free. Collisions on an
// 8-char alphabet are rare, so a handful of attempts is enough.
func (s *userService) uniqueReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < 5; i++ {
		code := randomCode(referralCodeLength)
		_, err := s.repo.GetByReferralCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", apperrors.NewDatabaseError("check referral code", err)
		}
	}
	return "", apperrors.New(apperrors.ErrCodeInternal, "Failed to allocate referral code")
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomCode(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}

func newID() string {
	return uuid.New().String()
}

func toUserResponse(user *models.User) *models.UserResponse {
	return &models.UserResponse{
		ID:                          user.ID,
		Email:                       user.Email,
		Name:                        user.Name,
		PhoneNumber:                 user.PhoneNumber,
		Avatar:                      user.Avatar,
		AccountStatus:               user.AccountStatus,
		Balance:                     user.Balance,
		MainBalance:                 user.MainBalance,
		Points:                      user.Points,
		PropBalance:                 user.PropBalance,
		PropStatus:                  user.PropStatus,
		ReferralCode:                user.ReferralCode,
		ReferralCount:               user.ReferralCount,
		ClaimedReferralBonus:        user.ClaimedReferralBonus,
		HasSignupBonus:              user.HasSignupBonus,
		HasSignupBonusClaimed:       user.HasSignupBonusClaimed,
		HasFirstDepositBonus:        user.HasFirstDepositBonus,
		HasFirstDepositBonusClaimed: user.HasFirstDepositBonusClaimed,
		BotActivated:                user.BotActivated,
		LastLogin:                   user.LastLogin,
		CreatedAt:                   user.CreatedAt,
	}
}

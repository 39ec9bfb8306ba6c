package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "exchange-backend/internal/common/errors"
	usermodels "exchange-backend/internal/features/user/models"
	userrepo "exchange-backend/internal/features/user/repository"
	"exchange-backend/internal/features/wallet/models"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*usermodels.User
}

func newMemoryUserRepo(users ...*usermodels.User) *memoryUserRepo {
	repo := &memoryUserRepo{users: make(map[string]*usermodels.User)}
	for _, u := range users {
		copied := *u
		repo.users[u.ID] = &copied
	}
	return repo
}

func (r *memoryUserRepo) Create(_ context.Context, user *usermodels.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*usermodels.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, userrepo.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*usermodels.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, userrepo.ErrNotFound
}

func (r *memoryUserRepo) GetByReferralCode(_ context.Context, code string) (*usermodels.User, error) {
	for _, u := range r.users {
		if u.ReferralCode == code {
			copied := *u
			return &copied, nil
		}
	}
	return nil, userrepo.ErrNotFound
}

func (r *memoryUserRepo) Update(_ context.Context, user *usermodels.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepo) Tx(_ context.Context, fn func(repo userrepo.UserRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r)
}

func newTestUser(id string) *usermodels.User {
	return &usermodels.User{
		ID:                   id,
		Email:                id + "@example.com",
		ReferralCode:         "CODE" + id,
		AccountStatus:        usermodels.StatusActive,
		Balance:              decimal.Zero,
		ClaimedReferralBonus: decimal.Zero,
	}
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectsBelowMinimum", func(t *testing.T) {
		repo := newMemoryUserRepo(newTestUser("u1"))
		svc := NewWalletService(repo, nil)

		_, err := svc.Deposit(ctx, "u1", models.DepositRequest{
			Amount:  decimal.NewFromInt(4),
			Channel: models.ChannelBEP20,
		})
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeInvalidArgument, appErr.Code)

		user, _ := repo.GetByID(ctx, "u1")
		assert.True(t, user.Balance.IsZero(), "rejected deposit must not write")
	})

	t.Run("SubtractsChannelFee", func(t *testing.T) {
		cases := []struct {
			channel  string
			expected string
		}{
			{models.ChannelBEP20, "19.5"},
			{models.ChannelERC20, "18"},
			{models.ChannelTRC20, "19"},
			{"INTERNAL", "20"},
		}
		for _, tc := range cases {
			repo := newMemoryUserRepo(newTestUser("u1"))
			svc := NewWalletService(repo, nil)

			resp, err := svc.Deposit(ctx, "u1", models.DepositRequest{
				Amount:  decimal.NewFromInt(20),
				Channel: tc.channel,
			})
			require.NoError(t, err, tc.channel)
			assert.Equal(t, tc.expected, resp.Balance.String(), tc.channel)
		}
	})

	t.Run("ArmsFirstDepositBonusOnce", func(t *testing.T) {
		repo := newMemoryUserRepo(newTestUser("u1"))
		svc := NewWalletService(repo, nil)

		_, err := svc.Deposit(ctx, "u1", models.DepositRequest{Amount: decimal.NewFromInt(10), Channel: models.ChannelTRC20})
		require.NoError(t, err)

		user, _ := repo.GetByID(ctx, "u1")
		assert.True(t, user.HasFirstDepositBonus)

		// Claim, then deposit again: the flag must not re-arm.
		_, err = svc.ClaimFirstDepositBonus(ctx, "u1")
		require.NoError(t, err)

		_, err = svc.Deposit(ctx, "u1", models.DepositRequest{Amount: decimal.NewFromInt(10), Channel: models.ChannelTRC20})
		require.NoError(t, err)

		user, _ = repo.GetByID(ctx, "u1")
		assert.True(t, user.HasFirstDepositBonusClaimed)
		assert.False(t, user.HasFirstDepositBonus && !user.HasFirstDepositBonusClaimed)

		_, err = svc.ClaimFirstDepositBonus(ctx, "u1")
		require.Error(t, err, "claimed bonus must not be claimable again")
	})
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	validAddress := "0x1234567890abcdef1234567890abcdef12345678"

	t.Run("RejectsBelowMinimum", func(t *testing.T) {
		user := newTestUser("u1")
		user.Balance = decimal.NewFromInt(100)
		user.HasSignupBonusClaimed = true
		user.HasFirstDepositBonusClaimed = true
		repo := newMemoryUserRepo(user)
		svc := NewWalletService(repo, nil)

		// minimum = 2 * (5 + 10) = 30
		_, err := svc.Withdraw(ctx, "u1", models.WithdrawRequest{
			Amount:  decimal.NewFromInt(10),
			Address: validAddress,
			Channel: models.ChannelBEP20,
		})
		require.Error(t, err)
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, apperrors.ErrCodeBelowMinimum, appErr.Code)

		got, _ := repo.GetByID(ctx, "u1")
		assert.Equal(t, "100", got.Balance.String(), "rejected withdrawal must not write")
	})

	t.Run("RejectsOverBalance", func(t *testing.T) {
		user := newTestUser("u1")
		user.Balance = decimal.NewFromInt(8)
		repo := newMemoryUserRepo(user)
		svc := NewWalletService(repo, nil)

		_, err := svc.Withdraw(ctx, "u1", models.WithdrawRequest{
			Amount:  decimal.NewFromInt(9),
			Address: validAddress,
			Channel: models.ChannelBEP20,
		})
		require.Error(t, err)
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, apperrors.ErrCodeInsufficientBalance, appErr.Code)
	})

	t.Run("RejectsBadAddress", func(t *testing.T) {
		user := newTestUser("u1")
		user.Balance = decimal.NewFromInt(100)
		repo := newMemoryUserRepo(user)
		svc := NewWalletService(repo, nil)

		_, err := svc.Withdraw(ctx, "u1", models.WithdrawRequest{
			Amount:  decimal.NewFromInt(10),
			Address: "not-an-address",
			Channel: models.ChannelERC20,
		})
		require.Error(t, err)
	})

	t.Run("DebitsBalance", func(t *testing.T) {
		user := newTestUser("u1")
		user.Balance = decimal.NewFromInt(100)
		repo := newMemoryUserRepo(user)
		svc := NewWalletService(repo, nil)

		resp, err := svc.Withdraw(ctx, "u1", models.WithdrawRequest{
			Amount:  decimal.NewFromInt(40),
			Address: validAddress,
			Channel: models.ChannelBEP20,
		})
		require.NoError(t, err)
		assert.Equal(t, "60", resp.Balance.String())
	})
}

func TestClaimReferralBonus(t *testing.T) {
	ctx := context.Background()

	t.Run("PaysOutstandingBonus", func(t *testing.T) {
		user := newTestUser("u1")
		user.ReferralCount = 3
		repo := newMemoryUserRepo(user)
		svc := NewWalletService(repo, nil)

		resp, err := svc.ClaimReferralBonus(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "6", resp.Credited.String())
		assert.Equal(t, "6", resp.ClaimedReferralBonus.String())
	})

	t.Run("IdempotentOncePaid", func(t *testing.T) {
		user := newTestUser("u1")
		user.ReferralCount = 2
		repo := newMemoryUserRepo(user)
		svc := NewWalletService(repo, nil)

		_, err := svc.ClaimReferralBonus(ctx, "u1")
		require.NoError(t, err)

		_, err = svc.ClaimReferralBonus(ctx, "u1")
		require.Error(t, err)
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, apperrors.ErrCodeNoBonusAvailable, appErr.Code)

		got, _ := repo.GetByID(ctx, "u1")
		assert.Equal(t, "4", got.Balance.String(), "second claim must not change balance")
	})

	t.Run("PaysOnlyNewReferrals", func(t *testing.T) {
		user := newTestUser("u1")
		user.ReferralCount = 5
		user.ClaimedReferralBonus = decimal.NewFromInt(6)
		repo := newMemoryUserRepo(user)
		svc := NewWalletService(repo, nil)

		resp, err := svc.ClaimReferralBonus(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "4", resp.Credited.String())
		assert.Equal(t, "10", resp.ClaimedReferralBonus.String())
	})
}

func TestMinimumWithdrawal(t *testing.T) {
	user := newTestUser("u1")
	assert.Equal(t, "5", MinimumWithdrawal(user).String())

	user.HasSignupBonusClaimed = true
	assert.Equal(t, "10", MinimumWithdrawal(user).String())

	user.HasFirstDepositBonusClaimed = true
	assert.Equal(t, "30", MinimumWithdrawal(user).String())
}

// TestNewUserLifecycle walks a fresh account through signup bonus, first
// deposit, first-deposit bonus and a rejected withdrawal.
func TestNewUserLifecycle(t *testing.T) {
	ctx := context.Background()

	user := newTestUser("u1")
	user.HasSignupBonus = true
	repo := newMemoryUserRepo(user)
	svc := NewWalletService(repo, nil)

	resp, err := svc.ClaimSignupBonus(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "5", resp.Balance.String())

	_, err = svc.ClaimSignupBonus(ctx, "u1")
	require.Error(t, err, "signup bonus is one-time")

	resp, err = svc.Deposit(ctx, "u1", models.DepositRequest{
		Amount:  decimal.NewFromInt(20),
		Channel: models.ChannelBEP20,
	})
	require.NoError(t, err)
	assert.Equal(t, "24.5", resp.Balance.String())

	got, _ := repo.GetByID(ctx, "u1")
	require.True(t, got.HasFirstDepositBonus)

	resp, err = svc.ClaimFirstDepositBonus(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "34.5", resp.Balance.String())

	// Minimum is now 2*(5+10) = 30; a 10 USDT withdrawal must fail.
	_, err = svc.Withdraw(ctx, "u1", models.WithdrawRequest{
		Amount:  decimal.NewFromInt(10),
		Address: "0x1234567890abcdef1234567890abcdef12345678",
		Channel: models.ChannelBEP20,
	})
	require.Error(t, err)

	got, _ = repo.GetByID(ctx, "u1")
	assert.Equal(t, "34.5", got.Balance.String())
}

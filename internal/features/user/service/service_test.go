package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "exchange-backend/internal/common/errors"
	"exchange-backend/internal/features/user/models"
	"exchange-backend/internal/features/user/repository"
)

type memoryUserRepo struct {
	users map[string]*models.User
}

func newMemoryUserRepo(users ...*models.User) *memoryUserRepo {
	repo := &memoryUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		copied := *u
		repo.users[u.ID] = &copied
	}
	return repo
}

func (r *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepo) GetByReferralCode(_ context.Context, code string) (*models.User, error) {
	for _, u := range r.users {
		if u.ReferralCode == code {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepo) Update(_ context.Context, user *models.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepo) Tx(_ context.Context, fn func(repo repository.UserRepository) error) error {
	return fn(r)
}

type stubCache struct {
	entries     map[string]*models.User
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]*models.User)}
}

func (c *stubCache) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := c.entries[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (c *stubCache) Set(_ context.Context, u *models.User) error {
	copied := *u
	c.entries[u.ID] = &copied
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, id string) error {
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:    "new@example.com",
		Password: "correct horse",
		Name:     "New User",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesAccountWithSignupBonus", func(t *testing.T) {
		repo := newMemoryUserRepo()
		svc := NewUserService(repo, nil)

		resp, err := svc.Register(ctx, validRegisterInput())
		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "new@example.com", resp.Email)
		assert.Len(t, resp.ReferralCode, referralCodeLength)
		assert.True(t, resp.HasSignupBonus)
		assert.False(t, resp.HasSignupBonusClaimed)

		stored, err := repo.GetByID(ctx, resp.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "correct horse", stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo := newMemoryUserRepo()
		svc := NewUserService(repo, nil)

		_, err := svc.Register(ctx, validRegisterInput())
		require.NoError(t, err)

		_, err = svc.Register(ctx, validRegisterInput())
		require.Error(t, err)
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
	})

	t.Run("CreditsReferrer", func(t *testing.T) {
		referrer := &models.User{ID: "ref1", Email: "ref@example.com", ReferralCode: "FRIENDS1"}
		repo := newMemoryUserRepo(referrer)
		cache := newStubCache()
		svc := NewUserService(repo, cache)

		input := validRegisterInput()
		input.ReferralCode = "FRIENDS1"
		resp, err := svc.Register(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "FRIENDS1", repo.users[resp.ID].ReferredBy)

		got, _ := repo.GetByID(ctx, "ref1")
		assert.Equal(t, 1, got.ReferralCount)
		assert.Contains(t, cache.invalidated, "ref1")
	})

	t.Run("UnknownReferralCode", func(t *testing.T) {
		repo := newMemoryUserRepo()
		svc := NewUserService(repo, nil)

		input := validRegisterInput()
		input.ReferralCode = "NOSUCH99"
		_, err := svc.Register(ctx, input)
		require.Error(t, err)
		appErr, _ := apperrors.AsAppError(err)
		assert.True(t, appErr.IsValidation())
		assert.Empty(t, repo.users, "failed signup must not create the account")
	})

	t.Run("RejectsWeakPassword", func(t *testing.T) {
		svc := NewUserService(newMemoryUserRepo(), nil)

		input := validRegisterInput()
		input.Password = "short"
		_, err := svc.Register(ctx, input)
		require.Error(t, err)
	})
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()

	t.Run("ReadThroughCache", func(t *testing.T) {
		user := &models.User{ID: "u1", Email: "u1@example.com", Name: "One"}
		repo := newMemoryUserRepo(user)
		cache := newStubCache()
		svc := NewUserService(repo, cache)

		resp, err := svc.GetUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "One", resp.Name)
		assert.Contains(t, cache.entries, "u1", "miss must populate the cache")

		// Serve the second read from the cache even if the row vanishes.
		delete(repo.users, "u1")
		resp, err = svc.GetUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "One", resp.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := NewUserService(newMemoryUserRepo(), newStubCache())

		_, err := svc.GetUser(ctx, "ghost")
		require.Error(t, err)
		appErr, _ := apperrors.AsAppError(err)
		assert.True(t, appErr.IsNotFound())
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("UpdatesOnlyGivenFields", func(t *testing.T) {
		user := &models.User{ID: "u1", Email: "u1@example.com", Name: "Old", PhoneNumber: "+15550001111"}
		repo := newMemoryUserRepo(user)
		cache := newStubCache()
		svc := NewUserService(repo, cache)

		resp, err := svc.UpdateProfile(ctx, "u1", models.ProfileUpdate{Name: "New"})
		require.NoError(t, err)
		assert.Equal(t, "New", resp.Name)
		assert.Equal(t, "+15550001111", resp.PhoneNumber)
		assert.Contains(t, cache.invalidated, "u1")
	})

	t.Run("RejectsMalformedPhone", func(t *testing.T) {
		user := &models.User{ID: "u1", Email: "u1@example.com", Name: "One"}
		svc := NewUserService(newMemoryUserRepo(user), nil)

		_, err := svc.UpdateProfile(ctx, "u1", models.ProfileUpdate{PhoneNumber: "call-me"})
		require.Error(t, err)
	})
}

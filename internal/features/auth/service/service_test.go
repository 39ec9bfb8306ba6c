package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "exchange-backend/internal/common/errors"
	"exchange-backend/internal/features/auth/models"
	"exchange-backend/internal/features/auth/repository"
	usermodels "exchange-backend/internal/features/user/models"
	userrepo "exchange-backend/internal/features/user/repository"
)

type memorySessionRepo struct {
	sessions map[string]*models.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *memorySessionRepo) Save(_ context.Context, session *models.Session) error {
	copied := *session
	r.sessions[session.Token] = &copied
	return nil
}

func (r *memorySessionRepo) Get(_ context.Context, token string) (*models.Session, error) {
	s, ok := r.sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memorySessionRepo) Delete(_ context.Context, token string) error {
	delete(r.sessions, token)
	return nil
}

type memoryUserRepo struct {
	users map[string]*usermodels.User
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
	return fn(r)
}

func seedUser(t *testing.T, password string) (*memoryUserRepo, *usermodels.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &usermodels.User{
		ID:           "u1",
		Email:        "u1@example.com",
		PasswordHash: string(hash),
	}
	repo := &memoryUserRepo{users: map[string]*usermodels.User{user.ID: user}}
	return repo, user
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("IssuesSignedInSession", func(t *testing.T) {
		users, _ := seedUser(t, "hunter22")
		sessions := newMemorySessionRepo()
		svc := NewAuthService(sessions, users, time.Hour)

		resp, err := svc.Login(ctx, "u1@example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, "u1", resp.UserID)
		assert.Len(t, resp.Token, 64)

		stored, err := sessions.Get(ctx, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, models.StateSignedIn, stored.State)
		assert.WithinDuration(t, stored.IssuedAt.Add(time.Hour), stored.ExpiresAt, time.Second)

		touched, _ := users.GetByID(ctx, "u1")
		assert.False(t, touched.LastLogin.IsZero())
	})

	t.Run("WrongPassword", func(t *testing.T) {
		users, _ := seedUser(t, "hunter22")
		sessions := newMemorySessionRepo()
		svc := NewAuthService(sessions, users, time.Hour)

		_, err := svc.Login(ctx, "u1@example.com", "wrong")
		require.Error(t, err)
		appErr, _ := apperrors.AsAppError(err)
		assert.True(t, appErr.IsUnauthenticated())
		assert.Empty(t, sessions.sessions)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		users, _ := seedUser(t, "hunter22")
		svc := NewAuthService(newMemorySessionRepo(), users, time.Hour)

		_, err := svc.Login(ctx, "nobody@example.com", "hunter22")
		require.Error(t, err)
		appErr, _ := apperrors.AsAppError(err)
		assert.True(t, appErr.IsUnauthenticated(), "unknown email and wrong password are indistinguishable")
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("ResolvesActiveSession", func(t *testing.T) {
		users, _ := seedUser(t, "hunter22")
		sessions := newMemorySessionRepo()
		svc := NewAuthService(sessions, users, time.Hour)

		resp, err := svc.Login(ctx, "u1@example.com", "hunter22")
		require.NoError(t, err)

		session, err := svc.Authenticate(ctx, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "u1", session.UserID)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		users, _ := seedUser(t, "hunter22")
		svc := NewAuthService(newMemorySessionRepo(), users, time.Hour)

		_, err := svc.Authenticate(ctx, "deadbeef")
		require.Error(t, err)
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, apperrors.ErrCodeSessionExpired, appErr.Code)
	})

	t.Run("ExpiredSessionIsEvicted", func(t *testing.T) {
		users, _ := seedUser(t, "hunter22")
		sessions := newMemorySessionRepo()
		svc := NewAuthService(sessions, users, -time.Minute)

		resp, err := svc.Login(ctx, "u1@example.com", "hunter22")
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, resp.Token)
		require.Error(t, err)
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, apperrors.ErrCodeSessionExpired, appErr.Code)

		_, err = sessions.Get(ctx, resp.Token)
		assert.Error(t, err, "expired session must be deleted")
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	users, _ := seedUser(t, "hunter22")
	sessions := newMemorySessionRepo()
	svc := NewAuthService(sessions, users, time.Hour)

	resp, err := svc.Login(ctx, "u1@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token))

	_, err = svc.Authenticate(ctx, resp.Token)
	assert.Error(t, err)

	// A second logout with the same token is a no-op.
	assert.NoError(t, svc.Logout(ctx, resp.Token))
}

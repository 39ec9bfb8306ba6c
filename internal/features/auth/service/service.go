package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "exchange-backend/internal/common/errors"
	"exchange-backend/internal/features/auth/models"
	"exchange-backend/internal/features/auth/repository"
	userrepo "exchange-backend/internal/features/user/repository"
)

// Authenticator resolves a bearer token to an active session. The auth
// middleware depends on this narrow interface.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

type AuthService interface {
	Authenticator
	Login(ctx context.Context, email, password string) (*models.SessionResponse, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	sessions repository.SessionRepository
	users    userrepo.UserRepository
	ttl      time.Duration
}

func NewAuthService(sessions repository.SessionRepository, users userrepo.UserRepository, ttl time.Duration) AuthService {
	return &authService{sessions: sessions, users: users, ttl: ttl}
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.SessionResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, apperrors.NewUnauthenticatedError("unknown email or wrong password")
		}
		return nil, apperrors.NewDatabaseError("get user by email", err)
	}

	session := &models.Session{
		Token:    newToken(),
		UserID:   user.ID,
		State:    models.StateSignedOut,
		IssuedAt: time.Now(),
	}
	if err := session.Transition(models.StateSigningIn); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Session state error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthenticatedError("unknown email or wrong password")
	}

	if err := session.Transition(models.StateSignedIn); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Session state error")
	}
	session.ExpiresAt = session.IssuedAt.Add(s.ttl)

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apperrors.NewDatabaseError("save session", err)
	}

	user.LastLogin = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.NewDatabaseError("touch last login", err)
	}

	return &models.SessionResponse{
		Token:     session.Token,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrCodeSessionExpired, "Session expired or unknown")
		}
		return nil, apperrors.NewDatabaseError("get session", err)
	}

	if !session.Active(time.Now()) {
		_ = session.Transition(models.StateExpired)
		_ = s.sessions.Delete(ctx, token)
		return nil, apperrors.New(apperrors.ErrCodeSessionExpired, "Session expired or unknown")
	}

	return session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return apperrors.NewDatabaseError("get session", err)
	}

	if err := session.Transition(models.StateSignedOut); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "Session state error")
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return apperrors.NewDatabaseError("delete session", err)
	}
	return nil
}

func newToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

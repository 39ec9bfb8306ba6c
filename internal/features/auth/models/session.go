package models

import (
	"fmt"
	"time"
)

// SessionState models authentication state as an explicit machine instead
// of scattered token removals: signed-out → signing-in → signed-in, with
// signed-in expiring or returning to signed-out on logout.
type SessionState string

const (
	StateSignedOut SessionState = "signed-out"
	StateSigningIn SessionState = "signing-in"
	StateSignedIn  SessionState = "signed-in"
	StateExpired   SessionState = "expired"
)

var allowedTransitions = map[SessionState][]SessionState{
	StateSignedOut: {StateSigningIn},
	StateSigningIn: {StateSignedIn, StateSignedOut},
	StateSignedIn:  {StateExpired, StateSignedOut},
	StateExpired:   {},
}

// Session is the server-side record behind a bearer token.
type Session struct {
	Token     string       `json:"token"`
	UserID    string       `json:"user_id"`
	State     SessionState `json:"state"`
	IssuedAt  time.Time    `json:"issued_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Transition moves the session to next, rejecting any backward or skipped
// step.
func (s *Session) Transition(next SessionState) error {
	for _, allowed := range allowedTransitions[s.State] {
		if allowed == next {
			s.State = next
			return nil
		}
	}
	return fmt.Errorf("invalid session transition %s -> %s", s.State, next)
}

// Active reports whether the session authenticates requests.
func (s *Session) Active(now time.Time) bool {
	return s.State == StateSignedIn && now.Before(s.ExpiresAt)
}

// LoginRequest is the credentials payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Name         string `json:"name" binding:"required"`
	ReferralCode string `json:"referral_code"`
}

// SessionResponse is returned on login.
type SessionResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

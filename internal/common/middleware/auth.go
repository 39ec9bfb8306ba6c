package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"exchange-backend/internal/common/errors"
	"exchange-backend/internal/common/notify"
	"exchange-backend/internal/features/auth/service"
)

const (
	// UserIDCtxParam is the gin context key holding the authenticated user id.
	UserIDCtxParam = "user_id"

	// SessionTokenCtxParam holds the raw bearer token for logout.
	SessionTokenCtxParam = "session_token"
)

// RequireAuth validates the bearer session and stores the caller identity
// in the request context. Missing or expired sessions abort with 401.
func RequireAuth(auth service.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			notify.Fail(c, errors.NewUnauthenticatedError("bearer session token required"))
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			notify.Fail(c, err)
			return
		}

		c.Set(UserIDCtxParam, session.UserID)
		c.Set(SessionTokenCtxParam, token)
		c.Next()
	}
}

// CallerID returns the authenticated user id set by RequireAuth.
func CallerID(c *gin.Context) string {
	if v, exists := c.Get(UserIDCtxParam); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("auth")
}

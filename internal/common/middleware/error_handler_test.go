package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exchange-backend/internal/common/errors"
	"exchange-backend/internal/common/notify"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), ErrorHandler())
	return router
}

func perform(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	router := newTestRouter()
	router.GET("/ok", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	t.Run("AssignsID", func(t *testing.T) {
		w := perform(router, http.MethodGet, "/ok")
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("HonorsCallerID", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("X-Request-ID", "caller-id")
		router.ServeHTTP(w, req)
		assert.Equal(t, "caller-id", w.Header().Get("X-Request-ID"))
	})
}

func TestErrorHandler(t *testing.T) {
	cases := []struct {
		name   string
		err    *errors.AppError
		status int
	}{
		{"Validation", errors.NewValidationError("amount", "must be positive"), http.StatusBadRequest},
		{"NotFound", errors.NewUserNotFoundError("u1"), http.StatusNotFound},
		{"Unauthenticated", errors.NewUnauthenticatedError("bad token"), http.StatusUnauthorized},
		{"Precondition", errors.NewInsufficientBalanceError("1", "2"), http.StatusUnprocessableEntity},
		{"Conflict", errors.New(errors.ErrCodeAlreadyListed, "already listed"), http.StatusConflict},
		{"BadGateway", errors.New(errors.ErrCodeMailRelayError, "relay down"), http.StatusBadGateway},
		{"Internal", errors.New(errors.ErrCodeDatabaseError, "db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter()
			router.GET("/fail", func(c *gin.Context) {
				notify.Fail(c, tc.err)
			})

			w := perform(router, http.MethodGet, "/fail")
			assert.Equal(t, tc.status, w.Code)

			var body notify.Notification
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, notify.SeverityError, body.Severity)
			assert.Equal(t, tc.err.Message, body.Message)
			assert.NotEmpty(t, body.RequestID)
		})
	}

	t.Run("RecoversPanic", func(t *testing.T) {
		router := newTestRouter()
		router.GET("/panic", func(*gin.Context) {
			panic("boom")
		})

		w := perform(router, http.MethodGet, "/panic")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"exchange-backend/internal/common/errors"
	"exchange-backend/internal/common/logger"
	"exchange-backend/internal/common/notify"
)

// RequestID assigns every request an id, honoring X-Request-ID when the
// caller supplies one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorHandler converts panics and handler errors into the notification
// envelope with a mapped HTTP status.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				requestID := getRequestID(c)

				logger.Error().
					Str("request_id", requestID).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Interface("panic", recovered).
					Str("stack", string(debug.Stack())).
					Msg("Panic recovered")

				appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
					WithRequestID(requestID).
					WithDetail("panic", fmt.Sprintf("%v", recovered))

				sendErrorResponse(c, appErr)
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			if appErr, ok := errors.AsAppError(err); ok {
				sendErrorResponse(c, appErr)
				return
			}

			appErr := errors.Wrap(err, errors.ErrCodeInternal, "Handler error occurred").
				WithRequestID(getRequestID(c))
			sendErrorResponse(c, appErr)
		}
	}
}

func sendErrorResponse(c *gin.Context, appErr *errors.AppError) {
	requestID := getRequestID(c)
	appErr.WithRequestID(requestID)

	logError(c, appErr)

	c.Writer.Header().Set("Content-Type", "application/json")
	c.JSON(httpStatusFor(appErr), notify.Notification{
		Severity:  notify.SeverityError,
		Message:   appErr.Message,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
	})
	c.Abort()
}

func httpStatusFor(appErr *errors.AppError) int {
	switch {
	case appErr.IsValidation():
		return http.StatusBadRequest
	case appErr.IsNotFound():
		return http.StatusNotFound
	case appErr.IsUnauthenticated():
		return http.StatusUnauthorized
	case appErr.IsPrecondition():
		return http.StatusUnprocessableEntity
	case appErr.Code == errors.ErrCodeConflict || appErr.Code == errors.ErrCodeAlreadyListed:
		return http.StatusConflict
	case appErr.Code == errors.ErrCodeInvalidPropCode:
		return http.StatusNotFound
	case appErr.Code == errors.ErrCodeMailRelayError || appErr.Code == errors.ErrCodeExternalAPIError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func logError(c *gin.Context, appErr *errors.AppError) {
	event := logger.Error()
	switch {
	case appErr.IsUnauthenticated():
		event = logger.Warn()
	case appErr.IsValidation(), appErr.IsNotFound(), appErr.IsPrecondition():
		event = logger.Info()
	}

	event.
		Str("request_id", getRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Err(appErr.Cause).
		Msg(appErr.Message)
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}

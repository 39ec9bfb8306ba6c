package notify

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"exchange-backend/internal/common/errors"
)

// Severity of a user-facing notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is the single envelope every handler responds with, for
// both success and failure outcomes.
type Notification struct {
	Severity  Severity         `json:"severity"`
	Message   string           `json:"message"`
	Data      interface{}      `json:"data,omitempty"`
	Error     *errors.AppError `json:"error,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id,omitempty"`
}

// Success writes a success notification with an optional payload.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Notification{
		Severity:  SeveritySuccess,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: requestID(c),
	})
}

// Created writes a success notification with 201 status.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Notification{
		Severity:  SeveritySuccess,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: requestID(c),
	})
}

// Fail records err on the context so the error-handling middleware renders
// the notification with the mapped HTTP status.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func requestID(c *gin.Context) string {
	if v, exists := c.Get("request_id"); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

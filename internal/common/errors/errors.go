package errors

import (
	"fmt"
	"time"
)

// ErrorCode identifies a class of application error. The RPC-facing codes
// (unauthenticated, invalid-argument, failed-precondition, not-found,
// internal) are surfaced verbatim to API clients.
type ErrorCode string

const (
	ErrCodeInternal           ErrorCode = "INTERNAL"
	ErrCodeInvalidArgument    ErrorCode = "INVALID_ARGUMENT"
	ErrCodeFailedPrecondition ErrorCode = "FAILED_PRECONDITION"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	ErrCodeConflict           ErrorCode = "CONFLICT"

	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"
	ErrCodeSessionExpired  ErrorCode = "SESSION_EXPIRED"
	ErrCodeInvalidUserData ErrorCode = "INVALID_USER_DATA"

	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeNoBonusAvailable    ErrorCode = "NO_BONUS_AVAILABLE"
	ErrCodeBelowMinimum        ErrorCode = "BELOW_MINIMUM"

	ErrCodeTokenNotFound    ErrorCode = "TOKEN_NOT_FOUND"
	ErrCodeAlreadyListed    ErrorCode = "TOKEN_ALREADY_LISTED"
	ErrCodeInvalidPropCode  ErrorCode = "INVALID_PROP_CODE"
	ErrCodeDatabaseError    ErrorCode = "DATABASE_ERROR"
	ErrCodeMailRelayError   ErrorCode = "MAIL_RELAY_ERROR"
	ErrCodeExternalAPIError ErrorCode = "EXTERNAL_API_ERROR"
)

// AppError is the typed application error carried across service and
// delivery boundaries.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound || e.Code == ErrCodeUserNotFound || e.Code == ErrCodeTokenNotFound
}

func (e *AppError) IsValidation() bool {
	return e.Code == ErrCodeInvalidArgument || e.Code == ErrCodeInvalidUserData
}

func (e *AppError) IsUnauthenticated() bool {
	return e.Code == ErrCodeUnauthenticated || e.Code == ErrCodeSessionExpired
}

func (e *AppError) IsPrecondition() bool {
	return e.Code == ErrCodeFailedPrecondition ||
		e.Code == ErrCodeInsufficientBalance ||
		e.Code == ErrCodeNoBonusAvailable ||
		e.Code == ErrCodeBelowMinimum
}

func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal ||
		e.Code == ErrCodeDatabaseError ||
		e.Code == ErrCodeMailRelayError ||
		e.Code == ErrCodeExternalAPIError
}

// WithDetail attaches structured detail to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID tags the error with the originating request.
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Constructors for frequently used errors.

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeInvalidArgument, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewUserNotFoundError(userID string) *AppError {
	return New(ErrCodeUserNotFound, "User data not found").
		WithDetail("user_id", userID)
}

func NewUnauthenticatedError(reason string) *AppError {
	return New(ErrCodeUnauthenticated, fmt.Sprintf("Unauthenticated: %s", reason)).
		WithDetail("reason", reason)
}

func NewInsufficientBalanceError(balance, amount string) *AppError {
	return New(ErrCodeInsufficientBalance, "Insufficient balance").
		WithDetail("balance", balance).
		WithDetail("amount", amount)
}

func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Database operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewMailRelayError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeMailRelayError, fmt.Sprintf("Mail relay operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError casts err to AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}

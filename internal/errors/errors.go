package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Authentication & Authorization
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Validation
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeConflict ErrorCode = "CONFLICT"

	// Discord integration
	ErrCodeNotConfigured     ErrorCode = "DISCORD_NOT_CONFIGURED"
	ErrCodeNotConnected      ErrorCode = "DISCORD_NOT_CONNECTED"
	ErrCodeReconnectRequired ErrorCode = "DISCORD_RECONNECT_REQUIRED"
	ErrCodeQuotaExceeded     ErrorCode = "DISCORD_QUOTA_EXCEEDED"
	ErrCodeRemoteTransient   ErrorCode = "DISCORD_UNAVAILABLE"
	ErrCodeRemote            ErrorCode = "DISCORD_ERROR"
	ErrCodeInvalidOAuthState ErrorCode = "INVALID_OAUTH_STATE"

	// Rate Limiting
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

func RateLimitExceeded() *AppError {
	return New(ErrCodeRateLimitExceeded, "Rate limit exceeded")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(cause error) *AppError {
	return Wrap(ErrCodeDatabase, "Database error", cause)
}

// Discord integration constructors. The messages are user-facing and name
// the recovery action where one exists.

func DiscordNotConfigured() *AppError {
	return New(ErrCodeNotConfigured, "Discord integration is not configured on this server")
}

func DiscordNotConnected() *AppError {
	return New(ErrCodeNotConnected, "No Discord account is linked; connect your Discord account first")
}

func DiscordReconnectRequired() *AppError {
	return New(ErrCodeReconnectRequired, "Discord authorization expired; please reconnect your account")
}

func DiscordForbidden() *AppError {
	return New(ErrCodeForbidden, "You do not have permission to manage webhooks in that server; make sure the bot is invited and you can manage webhooks")
}

func DiscordQuotaExceeded() *AppError {
	return New(ErrCodeQuotaExceeded, "That channel already has the maximum number of webhooks")
}

func DiscordUnavailable(cause error) *AppError {
	return Wrap(ErrCodeRemoteTransient, "Discord is temporarily unavailable; try again shortly", cause)
}

func DiscordError(status, code int, cause error) *AppError {
	return Wrap(ErrCodeRemote, "Discord request failed", cause).
		WithDetails(map[string]int{"status": status, "code": code})
}

func InvalidOAuthState() *AppError {
	return New(ErrCodeInvalidOAuthState, "Invalid or expired authorization state; restart the connect flow")
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

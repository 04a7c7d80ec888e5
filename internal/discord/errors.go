package discord

import (
	"errors"
	"fmt"
)

// Discord JSON error codes the application translates into specific
// user-facing failures. Everything else passes through as a generic
// remote error with status and code attached.
const (
	CodeUnknownChannel     = 10003
	CodeUnknownWebhook     = 10015
	CodeMaxWebhooks        = 30007
	CodeMissingPermissions = 50013
)

// ErrRefreshRejected is returned when Discord refuses a refresh-token
// exchange. It is deliberately distinct from transport errors so callers can
// surface a "reconnect your account" state instead of retrying.
var ErrRefreshRejected = errors.New("discord rejected the refresh token")

// APIError is a non-2xx response from the Discord API.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("discord api error: status=%d code=%d message=%s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("discord api error: status=%d message=%s", e.Status, e.Message)
}

func (e *APIError) NotFound() bool {
	return e.Status == 404
}

func (e *APIError) MissingPermissions() bool {
	return e.Status == 403 || e.Code == CodeMissingPermissions
}

func (e *APIError) QuotaExceeded() bool {
	return e.Code == CodeMaxWebhooks
}

// Transient reports whether the failure is a server-side condition safe to
// retry at the caller's discretion.
func (e *APIError) Transient() bool {
	return e.Status >= 500 && e.Status <= 599
}

// AsAPIError unwraps err into an *APIError if possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

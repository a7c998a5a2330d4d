package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/services/auth"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Error codes. The web client switches on these strings.
const (
	CodeNoToken        = "no_token"
	CodeInvalidToken   = "invalid"
	CodeTokenExpired   = "expired"
	CodeInvalidSession = "invalid_session"
	CodeMissingFields  = "missing_fields"
	CodeInvalidRequest = "invalid_request"
	CodePlayerNotFound = "player_not_found"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeAdminDisabled  = "admin_disabled"
	CodeStorageError   = "storage_error"
	CodeInternalError  = "internal_error"
)

// httpError combines an HTTP status code with an error code
type httpError struct {
	status int
	code   string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.code
}

// WriteError writes the error body for err and returns the status used
func WriteError(w http.ResponseWriter, err error) int {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: he.code})
	return he.status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &httpError{http.StatusBadRequest, "invalid_" + ve.Field}
	}

	switch {
	// Handoff and session errors
	case errors.Is(err, model.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, CodeInvalidToken}
	case errors.Is(err, model.ErrTokenExpired):
		return &httpError{http.StatusUnauthorized, CodeTokenExpired}
	case errors.Is(err, model.ErrInvalidSession):
		return &httpError{http.StatusForbidden, CodeInvalidSession}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, CodePlayerNotFound}

	// Admin bearer errors
	case errors.Is(err, auth.ErrAdminNotConfigured):
		return &httpError{http.StatusNotFound, CodeAdminDisabled}
	case errors.Is(err, auth.ErrAdminForbidden):
		return &httpError{http.StatusForbidden, CodeForbidden}
	case errors.Is(err, auth.ErrAdminTokenInvalid), errors.Is(err, auth.ErrAdminTokenExpired):
		return &httpError{http.StatusUnauthorized, CodeUnauthorized}

	default:
		return &httpError{http.StatusInternalServerError, CodeStorageError}
	}
}

// NewNoTokenError is returned when a handoff token is absent from the request
func NewNoTokenError() error {
	return &httpError{http.StatusBadRequest, CodeNoToken}
}

// NewMissingFieldsError is returned when required body fields are absent
func NewMissingFieldsError() error {
	return &httpError{http.StatusBadRequest, CodeMissingFields}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError() error {
	return &httpError{http.StatusBadRequest, CodeInvalidRequest}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, CodeUnauthorized}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, CodeInternalError}
}

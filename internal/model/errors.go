package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Handoff and session errors
	ErrInvalidToken   = errors.New("invalid handoff token")
	ErrTokenExpired   = errors.New("handoff token expired")
	ErrTokenCollision = errors.New("handoff token already exists")
	ErrInvalidSession = errors.New("invalid session")
)

// ValidationError reports a malformed or missing request field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

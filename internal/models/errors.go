package models

import "errors"

// Application-wide standard errors
var (
	// User & Role Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrRoleAlreadyExists  = errors.New("role already exists")

	// Authentication Errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("login required")
	ErrForbidden          = errors.New("access forbidden")

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenRevoked   = errors.New("token invalidated")
	ErrTokenNotFound  = errors.New("token not found in storage")
	ErrWrongTokenType = errors.New("wrong token type")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
)

// ValidationError carries the specific rule that was broken so handlers can
// surface it to the client verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

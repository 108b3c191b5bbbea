package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
// It also covers scoped mutations whose predicate matched zero rows
// ("not found or not permitted").
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller is authenticated but lacks the required role or membership.
var ErrForbidden = errors.New("forbidden")

// ErrRefreshTokenExpired indicates the stored refresh token has expired.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// ErrProfileDegraded indicates an authenticated identity whose profile is
// missing or has no resolved company. Callers must surface the repair
// affordance instead of serving company-scoped data.
var ErrProfileDegraded = errors.New("profile degraded")

// AppError wraps an underlying error with an HTTP-ish status code and a
// message safe to log. Sentinels above are preferred where they fit; AppError
// carries context for everything else.
type AppError struct {
	Code int
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, msg string, err error) *AppError {
	return &AppError{Code: code, Msg: msg, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound via errors.Is.
func NewNotFoundError(msg string) *AppError {
	return &AppError{Code: 404, Msg: msg, Err: ErrNotFound}
}

// NewConflictError creates an AppError that matches ErrDuplicate via errors.Is.
func NewConflictError(msg string) *AppError {
	return &AppError{Code: 409, Msg: msg, Err: ErrDuplicate}
}

// NewValidationFailedError creates an AppError that matches ErrValidation via errors.Is.
func NewValidationFailedError(msg string) *AppError {
	return &AppError{Code: 400, Msg: msg, Err: ErrValidation}
}

// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication (bad credentials).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken indicates a missing, malformed, expired or forged bearer token.
	ErrInvalidToken = errors.New("token missing or invalid")

	// ErrForbidden indicates a valid identity without rights on the target blog.
	ErrForbidden = errors.New("You can delete only your own blogs")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation indicates a missing or malformed input field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidPassword indicates a password shorter than the allowed minimum.
	ErrInvalidPassword = errors.New("INVALID_PASSWORD")
)

// FieldError reports a single invalid field. It matches ErrValidation via errors.Is
// and, when Cause is set, the cause as well.
type FieldError struct {
	Field string
	Msg   string
	Cause error
}

// NewFieldError builds a FieldError without a cause.
func NewFieldError(field, msg string) *FieldError {
	return &FieldError{Field: field, Msg: msg}
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Msg }

// Unwrap exposes ErrValidation and the optional cause.
func (e *FieldError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrValidation, e.Cause}
	}
	return []error{ErrValidation}
}

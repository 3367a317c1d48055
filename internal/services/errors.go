package services

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the service layer. Handlers map them to HTTP
// status codes with errors.Is; repositories.ErrNotFound passes through
// untouched.
var (
	// ErrForbidden means the caller is authenticated but not permitted to
	// touch the resource (e.g. another user's order).
	ErrForbidden = errors.New("forbidden")

	// ErrUserExists means the registration email or username is taken.
	ErrUserExists = errors.New("user with this email or username already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password,
	// deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrCategoryNotEmpty blocks deletion of a category still referenced
	// by books.
	ErrCategoryNotEmpty = errors.New("cannot delete category that contains books")

	// ErrBookReferenced blocks deletion of a book referenced by order
	// items, preserving order history.
	ErrBookReferenced = errors.New("cannot delete book that appears in existing orders")
)

// ValidationError reports a business-rule violation with a caller-facing
// message (insufficient stock, invalid status value, undeletable order).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a business-rule violation.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

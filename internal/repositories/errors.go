package repositories

import "errors"

// Sentinel errors shared by all repository implementations. Callers match
// with errors.Is so messages can stay entity-specific.
var (
	// ErrNotFound is returned when a record id does not resolve.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientStock is returned by the order-creation transaction
	// when a conditional stock decrement affects zero rows, i.e. a
	// concurrent order consumed the stock after validation.
	ErrInsufficientStock = errors.New("insufficient stock")
)

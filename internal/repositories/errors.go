package repositories

import "errors"

// Sentinel errors shared by all repository implementations. Services
// translate these into their client-facing error types.
var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientStock is returned by conditional stock decrements
	// when the counter does not cover the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
)

package repositories

import "errors"

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateSKU is returned when a write violates the sku unique index.
	ErrDuplicateSKU = errors.New("duplicate sku")
	// ErrDuplicateUser is returned when a username or email is already registered.
	ErrDuplicateUser = errors.New("duplicate user")
)

package database

import "errors"

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConcurrentModification is returned when a version-checked update
	// matched no rows because another writer got there first.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a delete would break a reference held by
	// another entity.
	ErrConflict = errors.New("entity is referenced by other records")
)

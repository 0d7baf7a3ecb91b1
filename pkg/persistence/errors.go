package persistence

import "errors"

var (
	// ErrEntityNotFound is returned when an entity is not found in the repository.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrOptimisticLocking is returned when a conditional update matched nothing,
	// for example because another worker claimed the document first.
	ErrOptimisticLocking = errors.New("optimistic locking error")
)

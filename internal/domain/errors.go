package domain

import "errors"

// Domain errors.
var (
	ErrChildNotFound  = errors.New("child not found")
	ErrStateMismatch  = errors.New("state does not match entity")
	ErrCycle          = errors.New("item would become its own ancestor")
	ErrEmptySubject   = errors.New("subject cannot be empty")
	ErrEntityNotFound = errors.New("entity not found")
	ErrAmbiguousID    = errors.New("id prefix matches more than one entity")
	ErrNotTracking    = errors.New("effort is not being tracked")
	ErrInvalidPeriod  = errors.New("invalid period")
)

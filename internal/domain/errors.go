package domain

import "errors"

var (
	// ErrNotFound is returned when no record backs the given ID. Callers
	// cannot tell a deleted record from one that never existed.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID is returned for identifiers that fail the format check.
	// It is raised at the boundary, before any record is addressed.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrInvalidInput is returned for payloads that fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyBound is returned when a guest ID that is already bound to
	// one event is bound to a different one.
	ErrAlreadyBound = errors.New("guest already bound to another event")

	// ErrAggregateUnavailable is returned when every member read of a
	// fan-out failed, leaving nothing to aggregate.
	ErrAggregateUnavailable = errors.New("aggregate unavailable")
)

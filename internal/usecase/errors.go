package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrPreconditionFailed covers caller-state rejections: not a group member,
	// no active pairing, weekly mission limit reached.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrCycleNotReady reports that the external seeding job has not populated
	// quota rows for the current week. Operator error, not user error.
	ErrCycleNotReady = errors.New("cycle not ready")
	// ErrCapacityExhausted reports a drained mission quota, including losing a
	// race for the last remaining slot.
	ErrCapacityExhausted = errors.New("capacity exhausted")
	// ErrDuplicateSelection covers both uniqueness rules: one mission per day,
	// one manual selection per mission per week.
	ErrDuplicateSelection = errors.New("duplicate selection")
)

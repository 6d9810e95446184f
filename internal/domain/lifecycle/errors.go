package lifecycle

import "errors"

var (
	// ErrInvalidTransition is returned when an action is not legal from the
	// request's current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is outside the closed set.
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when every candidate transition for an
	// action is blocked by its guard condition.
	ErrGuardFailed = errors.New("guard condition failed")
)

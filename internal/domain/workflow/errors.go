package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when no transition is configured for a trigger
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrGuardFailed is returned when every configured transition is guarded off
	ErrGuardFailed = errors.New("guard condition failed")
)

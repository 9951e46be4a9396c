package workflow

import "context"

// StateMachine tracks the current phase and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if some transition for trigger is configured and its guard passes
	CanFire(ctx context.Context, trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state if allowed
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns all triggers configured for the current state
	PermittedTriggers() []Trigger
}

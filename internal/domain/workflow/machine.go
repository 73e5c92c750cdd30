package workflow

import (
	"context"
	"time"
)

// Transition is one successful Fire call
type Transition struct {
	From    State
	To      State
	Trigger Trigger
	At      time.Time
}

// StateMachine tracks the lifecycle of one record
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire reports whether trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire applies trigger; a rejected trigger leaves the state unchanged
	Fire(ctx context.Context, trigger Trigger) error

	// History returns the transitions fired so far, oldest first
	History() []Transition
}

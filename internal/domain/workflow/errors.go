package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in the current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrTerminalState accompanies ErrInvalidTransition when the record is already settled
	ErrTerminalState = errors.New("record lifecycle is complete")

	// ErrInvalidState is returned when a record cannot be mapped onto a lifecycle state
	ErrInvalidState = errors.New("invalid state")
)

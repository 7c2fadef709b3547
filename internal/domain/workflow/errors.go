package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in the
	// current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrEmptyChain is returned when a state machine is requested for an
	// approval chain with no stages.
	ErrEmptyChain = errors.New("approval chain has no stages")
)

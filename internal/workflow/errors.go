package workflow

import "errors"

// Sentinel errors for decision handling. Callers classify failures with
// errors.Is; the HTTP layer maps each to a status code in one place.
var (
	// ErrUnauthorized means the actor's role is not allowed to act at the
	// requested stage.
	ErrUnauthorized = errors.New("not authorized for this stage")

	// ErrInvalidState means the target is not in a state that permits the
	// requested action, including when a concurrent decision won the race.
	ErrInvalidState = errors.New("invalid state for this action")

	// ErrConfiguration means the department's workflow configuration cannot
	// produce a usable approval chain.
	ErrConfiguration = errors.New("workflow configuration error")

	// ErrNotFound means the target requisition or document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input itself is malformed.
	ErrValidation = errors.New("validation error")
)

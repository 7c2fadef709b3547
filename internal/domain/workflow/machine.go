package workflow

import "fmt"

// StateMachine tracks the current state and validates transitions.
type StateMachine interface {
	// State returns the current state.
	State() State

	// CanFire returns true if the trigger is permitted in the current state.
	CanFire(trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state if
	// allowed.
	Fire(trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the current
	// state.
	PermittedTriggers() []Trigger
}

type stateMachine struct {
	current     State
	transitions map[State]map[Trigger]State
}

func (m *stateMachine) State() State {
	return m.current
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	outgoing, ok := m.transitions[m.current]
	if !ok {
		return false
	}
	_, ok = outgoing[trigger]
	return ok
}

func (m *stateMachine) Fire(trigger Trigger) error {
	outgoing, ok := m.transitions[m.current]
	if !ok {
		return fmt.Errorf("%w: %s is terminal, cannot fire %s", ErrInvalidTransition, m.current, trigger)
	}

	next, ok := outgoing[trigger]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	m.current = next
	return nil
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	outgoing, ok := m.transitions[m.current]
	if !ok {
		return nil
	}

	triggers := make([]Trigger, 0, len(outgoing))
	for trigger := range outgoing {
		triggers = append(triggers, trigger)
	}
	return triggers
}

package workflow

import "fmt"

// Builder assembles the transition table for a state machine.
type Builder struct {
	transitions map[State]map[Trigger]State
}

// NewBuilder creates a new state machine builder.
func NewBuilder() *Builder {
	return &Builder{
		transitions: make(map[State]map[Trigger]State),
	}
}

// Permit allows the trigger to transition from one state to another. A state
// with no outgoing transitions is terminal.
func (b *Builder) Permit(from State, trigger Trigger, to State) *Builder {
	outgoing, ok := b.transitions[from]
	if !ok {
		outgoing = make(map[Trigger]State)
		b.transitions[from] = outgoing
	}
	outgoing[trigger] = to
	return b
}

// Build creates a state machine positioned at the given initial state. The
// transition table is copied so the builder can be reused.
func (b *Builder) Build(initial State) StateMachine {
	if initial == "" {
		panic(fmt.Sprintf("invalid initial state: %q", initial))
	}

	transitions := make(map[State]map[Trigger]State, len(b.transitions))
	for from, outgoing := range b.transitions {
		copied := make(map[Trigger]State, len(outgoing))
		for trigger, to := range outgoing {
			copied[trigger] = to
		}
		transitions[from] = copied
	}

	return &stateMachine{
		current:     initial,
		transitions: transitions,
	}
}

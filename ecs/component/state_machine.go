package component

import "github.com/milk9111/stateblend/state"

// StateMachine attaches a machine to an entity. The state machine system
// initializes it on first sight and disposes it when the entity goes away.
type StateMachine struct {
	Machine *state.Machine
	// StateSet is the file the machine's states were loaded from, if any.
	StateSet string
	// Initial states are requested once, right after initialization.
	Initial []string

	bound bool
}

// Bound reports whether the machine has been initialized for this entity.
func (s *StateMachine) Bound() bool {
	return s != nil && s.bound
}

// MarkBound is called by the system that owns initialization.
func (s *StateMachine) MarkBound() {
	if s != nil {
		s.bound = true
	}
}

var StateMachineComponent = NewComponent[StateMachine]()

package build

import (
	"fmt"

	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
)

// State is a pipeline state.
type State string

const (
	StateIdle               State = "idle"
	StateResettingWorkspace State = "resetting_workspace"
	StateEnsuringDescriptor State = "ensuring_descriptor"
	StateDispatching        State = "dispatching"
	StateSucceeded          State = "succeeded"
	StateFailed             State = "failed"
)

var transitions = map[State][]State{
	StateIdle:               {StateResettingWorkspace, StateFailed},
	StateResettingWorkspace: {StateEnsuringDescriptor, StateFailed},
	StateEnsuringDescriptor: {StateDispatching, StateFailed},
	StateDispatching:        {StateSucceeded, StateFailed},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// CanTransitionTo reports whether next may follow s.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// transition moves r to next and records it.
func (r *Result) transition(next State) error {
	if !r.State.CanTransitionTo(next) {
		return dberrors.InternalError(fmt.Sprintf("invalid state transition %s -> %s", r.State, next)).
			WithContext("from", string(r.State)).
			WithContext("to", string(next)).
			Build()
	}
	r.State = next
	r.Transitions = append(r.Transitions, next)
	return nil
}

package keel

import "fmt"

// ComponentState represents a component's position in its lifecycle.
//
// The normal progression is Registered -> Initializing -> Ready ->
// ShuttingDown -> Stopped. A failure during initialization or shutdown moves
// the component to Failed, which is absorbing: no transition leaves it.
// Stopped is likewise terminal.
type ComponentState int

const (
	// StateRegistered is the state of a component that has been added to the
	// registry but not yet booted.
	StateRegistered ComponentState = iota

	// StateInitializing is the state while the component's Init hook runs.
	StateInitializing

	// StateReady is the state of a successfully initialized component.
	StateReady

	// StateShuttingDown is the state while the component's Shutdown hook runs.
	StateShuttingDown

	// StateStopped is the terminal state of a cleanly shut down component.
	StateStopped

	// StateFailed is the absorbing state entered when Init or Shutdown fails.
	StateFailed
)

// String returns the string representation of the state.
func (s ComponentState) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Terminal reports whether no transition leaves this state.
func (s ComponentState) Terminal() bool {
	return s == StateStopped || s == StateFailed
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// transition.
func (s ComponentState) CanTransition(next ComponentState) bool {
	switch s {
	case StateRegistered:
		return next == StateInitializing
	case StateInitializing:
		return next == StateReady || next == StateFailed
	case StateReady:
		return next == StateShuttingDown
	case StateShuttingDown:
		return next == StateStopped || next == StateFailed
	case StateStopped, StateFailed:
		return false
	default:
		return false
	}
}

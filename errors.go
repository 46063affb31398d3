package flowent

import "fmt"

// StateError reports an operation that is invalid for an animation's current
// lifecycle state: starting twice, queueing after start, queueing a child
// that is no longer building. These are precondition violations raised at
// the offending call, never at tick time.
type StateError struct {
	Op    string
	State PlayState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("flowent: cannot %s in state %s", e.Op, e.State)
}

// ArgumentError reports an invalid configuration value, such as a negative
// time index or a negative time scale.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("flowent: invalid %s: %s", e.Name, e.Reason)
}

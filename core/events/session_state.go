package events

// KindStateChanged identifies session state machine transitions.
const KindStateChanged Kind = "session_state.changed"

// StateChanged reports a transition of the session state machine. Message is
// empty except for transitions into the error state.
type StateChanged struct {
	Base
	Previous string
	Current  string
	Message  string
}

// NewStateChanged creates a state transition event.
func NewStateChanged(previous, current, message string) StateChanged {
	return StateChanged{Base: NewBase(KindStateChanged), Previous: previous, Current: current, Message: message}
}

package events

const (
	// KindTurnStarted identifies the start of turn processing.
	KindTurnStarted Kind = "turn_state.started"
	// KindTurnCompleted identifies turn completion.
	KindTurnCompleted Kind = "turn_state.completed"
	// KindTurnBargedIn identifies playback interruption by user speech.
	KindTurnBargedIn Kind = "turn_state.barged_in"
)

// TurnStarted marks the start of processing for a non-empty utterance.
type TurnStarted struct {
	Base
	ID string
}

// NewTurnStarted creates a turn started event.
func NewTurnStarted(id string) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), ID: id}
}

// TurnCompleted marks completion of a full turn cycle.
type TurnCompleted struct {
	Base
	ID string
}

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted(id string) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), ID: id}
}

// TurnBargedIn marks interruption of ongoing playback by new user speech.
type TurnBargedIn struct {
	Base
	ID string
}

// NewTurnBargedIn creates a barge-in event.
func NewTurnBargedIn(id string) TurnBargedIn {
	return TurnBargedIn{Base: NewBase(KindTurnBargedIn), ID: id}
}

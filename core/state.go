package orchestration

// State is the session state machine's current phase. An orchestrator holds
// exactly one State at a time and only the session loop moves it, with the
// exception of [Orchestrator.Stop] forcing [StateIdle].
type State string

const (
	// StateIdle means no turn is in flight. The initial state, and the one
	// Stop always parks the session in.
	StateIdle State = "idle"
	// StateListening means audio capture is open and the recognizer is
	// waiting for an utterance.
	StateListening State = "listening"
	// StateProcessing means a chat turn is being streamed from the backend.
	StateProcessing State = "processing"
	// StateSpeaking means the assistant reply is being synthesized and
	// played.
	StateSpeaking State = "speaking"
	// StateError means a fault escaped a turn and ended the session loop.
	// Only a fresh Start leaves this state.
	StateError State = "error"
)

func (s State) String() string { return string(s) }

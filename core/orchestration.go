// Package orchestration implements the hands-free voice conversation loop:
// listen for speech, stream a chat completion, speak the reply, repeat. One
// orchestrator manages exactly one active session at a time.
package orchestration

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/quillchat/voice-core/core/chats"
	"github.com/quillchat/voice-core/core/events"
)

// Orchestrator composes a capture source, recognizer, chat streamer, and
// synthesizer into the Listen→Process→Speak cycle. Collaborators are
// injected through options at construction; events flow out through the
// typed callbacks registered the same way.
type Orchestrator struct {
	opts options
	emit eventEmitter

	capture *captureSource
	turns   *turnProcessor
	player  *speechPlayer

	assistantID string
	session     *chats.Session

	mu       sync.Mutex
	scope    *sessionScope
	loopDone chan struct{}

	active atomic.Bool
	state  atomic.Value

	snapshotMu   sync.RWMutex
	lastSnapshot chats.Session
}

func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{opts: defaultOptions()}
	for _, opt := range opts {
		opt(&o.opts)
	}

	o.emit = newCallbackEventEmitter(o.opts.callbacks)
	o.capture = newCaptureSource(o.opts.captureDevice, o.opts.silenceFloor, o.emit)
	o.turns = newTurnProcessor(o.opts.chatStreamer)
	o.player = newSpeechPlayer(o.opts.synthesizer)
	o.session = o.opts.session
	o.state.Store(StateIdle)

	return o
}

// Start begins a session for the given assistant and launches the session
// loop. Starting while a session is already active is a warned no-op, not an
// error. ctx bounds the whole session: its cancellation unwinds the loop the
// same way Stop does.
func (o *Orchestrator) Start(ctx context.Context, assistantID string) error {
	if strings.TrimSpace(assistantID) == "" {
		return ErrNoAssistant
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active.Load() {
		logger.Warn("session already active, ignoring start", "assistant_id", assistantID)
		return nil
	}

	if o.session == nil {
		o.session = chats.NewSession()
		if o.opts.systemPrompt != "" {
			_ = o.session.Append(chats.RoleSystem, o.opts.systemPrompt)
		}
	}
	o.refreshSnapshot()

	o.assistantID = assistantID
	o.state.Store(StateIdle)
	o.scope = newSessionScope(ctx)
	o.loopDone = make(chan struct{})
	o.active.Store(true)

	go o.run(o.scope, o.loopDone)

	return nil
}

// Stop cancels the session scope and waits for the loop to fully unwind,
// including releasing the audio device and aborting any in-flight request.
// Always safe to call, before Start or after a fault alike; the final state
// is Idle regardless of where the session was.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	scope, done := o.scope, o.loopDone
	o.mu.Unlock()

	if scope == nil {
		o.forceIdle()
		return nil
	}

	scope.Cancel()
	o.player.Stop()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	o.mu.Lock()
	scope.Close()
	if o.scope == scope {
		o.scope = nil
		o.loopDone = nil
	}
	o.mu.Unlock()

	o.forceIdle()
	return nil
}

// State returns the session state machine's current phase.
func (o *Orchestrator) State() State {
	if state, ok := o.state.Load().(State); ok {
		return state
	}
	return StateIdle
}

// Active reports whether the session loop is running.
func (o *Orchestrator) Active() bool {
	return o.active.Load()
}

// Conversation returns a point-in-time deep copy of the conversation, safe
// to read outside the session loop. It reflects the last completed turn.
func (o *Orchestrator) Conversation() chats.Session {
	o.snapshotMu.RLock()
	defer o.snapshotMu.RUnlock()
	return o.lastSnapshot
}

func (o *Orchestrator) refreshSnapshot() {
	if o.session == nil {
		return
	}

	snapshot := o.session.Snapshot()
	o.snapshotMu.Lock()
	o.lastSnapshot = snapshot
	o.snapshotMu.Unlock()
}

// transition moves the state machine and emits the change. Re-entering the
// current state is a no-op so an empty listening phase causes no churn.
func (o *Orchestrator) transition(next State, message string) {
	previous := o.State()
	if previous == next {
		return
	}

	o.state.Store(next)
	o.emit(events.NewStateChanged(previous.String(), next.String(), message))
}

func (o *Orchestrator) forceIdle() {
	o.transition(StateIdle, "")
}

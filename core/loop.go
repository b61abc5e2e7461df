package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/quillchat/voice-core/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// run drives one session: turns repeat until the scope is cancelled or a
// fault escapes a turn. Exactly one run goroutine exists per active session.
func (o *Orchestrator) run(scope *sessionScope, done chan struct{}) {
	defer close(done)
	defer o.active.Store(false)

	ctx := scope.Context()
	for !scope.Cancelled() {
		if err := panicSafeNamedWorker("voice turn", o.runTurn)(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}

			o.fault(scope, err)
			return
		}
	}
}

// fault ends the session: the scope is cancelled because turns cannot safely
// continue, and the error surfaces once through a state change into Error.
// Only a fresh Start recovers from here.
func (o *Orchestrator) fault(scope *sessionScope, err error) {
	logger.Error("session fault", "error", err)
	o.transition(StateError, err.Error())
	scope.Cancel()
}

// runTurn runs one Listen→Process→Speak cycle. An empty listening phase
// (or a recovered recognition failure) returns nil without a turn, keeping
// the loop in Listening.
func (o *Orchestrator) runTurn(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "voice turn")
	defer span.End()

	utterance, err := o.listen(ctx)
	if err != nil {
		return err
	}
	if utterance == "" {
		return nil
	}

	turnID := uuid.NewString()
	span.SetAttributes(attribute.String("turn.id", turnID))
	o.emit(events.NewUserUtterance(utterance))
	o.emit(events.NewTurnStarted(turnID))

	o.transition(StateProcessing, "")
	result, err := o.turns.Process(ctx, o.assistantID, utterance, o.session, func(fragment string) {
		o.emit(events.NewResponseFragment(fragment))
	})
	if err != nil {
		if errors.Is(err, errEmptyUtterance) {
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	o.refreshSnapshot()
	o.emit(events.NewResponseCompleted(result.ResponseText, result.Title))

	o.transition(StateSpeaking, "")
	bargedIn, err := o.speak(ctx, turnID, result.ResponseText)
	if err != nil {
		return err
	}

	o.emit(events.NewTurnCompleted(turnID))
	if bargedIn {
		// The user is already talking; skip Idle and listen for them.
		return nil
	}

	o.transition(StateIdle, "")
	return nil
}

// listen opens audio capture and runs the recognizer until its stop
// predicate fires on sustained silence. A recognition failure is recovered
// locally: the user hears the apology and listening resumes.
func (o *Orchestrator) listen(ctx context.Context) (string, error) {
	o.transition(StateListening, "")

	if o.opts.recognizer == nil {
		return "", fmt.Errorf("no recognizer configured")
	}

	utterance, err := o.opts.recognizer.Listen(ctx, o.capture.Capture(ctx), o.stopPredicate())
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		logger.Warn("speech recognition failed, resuming listening", "error", err)
		_ = o.player.Play(ctx, apologyMessage)
		return "", nil
	}

	return strings.TrimSpace(utterance), nil
}

// stopPredicate ends an utterance strictly above the configured continuous
// silence threshold.
func (o *Orchestrator) stopPredicate() func(silence time.Duration) bool {
	threshold := o.opts.silenceThreshold
	return func(silence time.Duration) bool {
		return silence > threshold
	}
}

// bargeInLevelFactor lifts the barge-in trigger well above the silence
// floor so playback bleeding into the microphone does not interrupt the
// assistant.
const bargeInLevelFactor = 4

// speak plays the sanitized reply, watching capture for barge-in when
// enabled. Barge-in cancels only the speaking stage; a session Stop cancels
// ctx itself and propagates as an error.
func (o *Orchestrator) speak(ctx context.Context, turnID, text string) (bargedIn bool, err error) {
	speakable := sanitizeForSpeech(text)
	if speakable == "" || !o.player.isConfigured() {
		return false, ctx.Err()
	}

	stageCtx, stageCancel := context.WithCancel(ctx)
	defer stageCancel()

	interrupted := atomic.Bool{}
	monitorDone := make(chan struct{})
	if o.opts.bargeIn && o.capture.isConfigured() {
		go func() {
			defer close(monitorDone)
			o.monitorBargeIn(stageCtx, turnID, &interrupted, stageCancel)
		}()
	} else {
		close(monitorDone)
	}

	playErr := o.player.Play(stageCtx, speakable)
	stageCancel()
	<-monitorDone

	if interrupted.Load() {
		return true, nil
	}
	if playErr != nil && ctx.Err() != nil {
		return false, ctx.Err()
	}

	return false, nil
}

// monitorBargeIn watches capture frames during playback and, on sustained
// user speech, stops the player and cancels the speaking stage only.
func (o *Orchestrator) monitorBargeIn(ctx context.Context, turnID string, interrupted *atomic.Bool, cancelStage context.CancelFunc) {
	detector := newBargeInDetector(
		o.opts.silenceFloor*bargeInLevelFactor,
		o.opts.bargeInTriggerFrames,
		o.opts.bargeInReleaseFrames,
	)
	encodingInfo := o.opts.captureDevice.EncodingInfo()

	for chunk, err := range o.capture.Capture(ctx) {
		if err != nil {
			return
		}

		if detector.ObserveChunk(chunk, encodingInfo) {
			interrupted.Store(true)
			o.emit(events.NewTurnBargedIn(turnID))
			o.player.Stop()
			cancelStage()
			return
		}
	}
}

package orchestration

import (
	"context"
	"sync/atomic"
)

// speechPlayer drives the synthesizer for one speaking phase at a time. It
// guarantees the stop routine runs at most once per playback and always runs
// on cancellation, so the output device is released on every path.
type speechPlayer struct {
	synthesizer Synthesizer

	stopRequested atomic.Bool
}

func newSpeechPlayer(synthesizer Synthesizer) *speechPlayer {
	return &speechPlayer{synthesizer: synthesizer}
}

func (p *speechPlayer) isConfigured() bool {
	return p != nil && p.synthesizer != nil
}

// Play synthesizes and plays text, blocking until playback completes or is
// stopped. Synthesis failures are absorbed here: a bad playback never bubbles
// into the session loop as a fault. The returned error is non-nil only on
// cancellation.
func (p *speechPlayer) Play(ctx context.Context, text string) error {
	if !p.isConfigured() || text == "" {
		return nil
	}

	p.stopRequested.Store(false)

	ctx, span := tracer.Start(ctx, "play synthesized speech")
	defer span.End()

	cancelHook := withContextCancelHook(ctx, p.Stop)
	defer close(cancelHook)

	err := p.synthesizer.Speak(ctx, text)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil && !p.stopRequested.Load() {
		span.RecordError(err)
		logger.Warn("speech synthesis failed", "error", err)
	}

	return nil
}

// Stop interrupts ongoing playback. Safe to call at any time; repeated calls
// forward at most one stop per playback to the synthesizer.
func (p *speechPlayer) Stop() {
	if !p.isConfigured() {
		return
	}

	if !p.stopRequested.CompareAndSwap(false, true) {
		return
	}

	p.synthesizer.StopSpeaking()
}

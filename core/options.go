package orchestration

import (
	"context"
	"iter"
	"time"

	"github.com/quillchat/voice-core/core/audio"
	"github.com/quillchat/voice-core/core/chats"
	"github.com/quillchat/voice-core/core/events"
)

// Recognizer turns a capture chunk sequence into an utterance. Listen is
// finite: it returns the concatenated transcript once stop reports true for
// the sustained silence riding on the chunks, or ctx.Err() on cancellation so
// callers can tell "no speech" from "cancelled".
type Recognizer interface {
	Listen(ctx context.Context, chunks iter.Seq2[audio.Chunk, error], stop func(silence time.Duration) bool) (string, error)
}

// Synthesizer renders finalized assistant text to audible speech. Speak
// blocks until playback completes, StopSpeaking is requested, or ctx is
// cancelled; the output device is released on every path. StopSpeaking is
// safe to call at any time, including concurrently with Speak.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	StopSpeaking()
}

// ChatStreamer submits a full conversation to the chat-completion backend
// and returns the response stream.
type ChatStreamer interface {
	StreamChat(ctx context.Context, assistantID string, conversation []chats.Message) chats.Stream
}

// TitleDeriver is implemented by chat streamers that can derive a short
// conversation title on demand. Optional: detected by type assertion.
type TitleDeriver interface {
	DeriveTitle(ctx context.Context, assistantID string, conversation []chats.Message) (string, error)
}

// CaptureDevice is a microphone-like audio source. StartCapture begins
// delivering raw buffers to onAudio until StopCapture; each capture is
// fresh, a stopped capture is not resumable.
type CaptureDevice interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
	EncodingInfo() audio.EncodingInfo
}

const (
	defaultSilenceThreshold = 1000 * time.Millisecond
	defaultSilenceFloor     = 0.015

	defaultBargeInTriggerFrames = 6
	defaultBargeInReleaseFrames = 2
)

type options struct {
	recognizer    Recognizer
	synthesizer   Synthesizer
	chatStreamer  ChatStreamer
	captureDevice CaptureDevice

	session      *chats.Session
	systemPrompt string

	silenceThreshold time.Duration
	silenceFloor     float64

	bargeIn              bool
	bargeInTriggerFrames int
	bargeInReleaseFrames int

	callbacks callbackOptions
}

func defaultOptions() options {
	return options{
		silenceThreshold:     defaultSilenceThreshold,
		silenceFloor:         defaultSilenceFloor,
		bargeIn:              true,
		bargeInTriggerFrames: defaultBargeInTriggerFrames,
		bargeInReleaseFrames: defaultBargeInReleaseFrames,
	}
}

type Option func(*options)

func WithRecognizer(recognizer Recognizer) Option {
	return func(o *options) { o.recognizer = recognizer }
}

func WithSynthesizer(synthesizer Synthesizer) Option {
	return func(o *options) { o.synthesizer = synthesizer }
}

func WithChatStreamer(streamer ChatStreamer) Option {
	return func(o *options) { o.chatStreamer = streamer }
}

func WithCaptureDevice(device CaptureDevice) Option {
	return func(o *options) { o.captureDevice = device }
}

// WithSession resumes an existing conversation instead of starting an empty
// one. The orchestrator takes ownership of the session until Stop completes.
func WithSession(session *chats.Session) Option {
	return func(o *options) { o.session = session }
}

// WithSystemPrompt seeds new conversations with a system message. Resumed
// sessions are left as they are.
func WithSystemPrompt(prompt string) Option {
	return func(o *options) { o.systemPrompt = prompt }
}

// WithSilenceThreshold sets how much continuous silence ends an utterance.
// The stop predicate fires strictly above the threshold.
func WithSilenceThreshold(threshold time.Duration) Option {
	return func(o *options) {
		if threshold > 0 {
			o.silenceThreshold = threshold
		}
	}
}

// WithSilenceFloor sets the normalized RMS level below which a capture chunk
// counts as silence.
func WithSilenceFloor(floor float64) Option {
	return func(o *options) {
		if floor > 0 {
			o.silenceFloor = floor
		}
	}
}

// WithBargeIn enables interrupting playback when sustained user speech is
// detected. Enabled by default.
func WithBargeIn() Option {
	return func(o *options) { o.bargeIn = true }
}

func WithoutBargeIn() Option {
	return func(o *options) { o.bargeIn = false }
}

type callbackOptions struct {
	onEvent             func(events.Event)
	onStateChanged      func(previous, current State, message string)
	onAudioLevel        func(level float64)
	onSilence           func(silence time.Duration)
	onUtterance         func(utterance string)
	onResponseFragment  func(fragment string)
	onResponseCompleted func(text, title string)
	onTurnStarted       func(turnID string)
	onTurnCompleted     func(turnID string)
	onBargeIn           func(turnID string)
}

// WithEventCallback registers a callback for every event the orchestrator
// emits, before any typed callback runs. Callbacks run on the emitting
// goroutine and should not block.
func WithEventCallback(callback func(events.Event)) Option {
	return func(o *options) { o.callbacks.onEvent = callback }
}

func WithStateChangedCallback(callback func(previous, current State, message string)) Option {
	return func(o *options) { o.callbacks.onStateChanged = callback }
}

// WithAudioLevelCallback registers a callback for capture level metering.
// Levels are point-in-time measurements superseded by the next one.
func WithAudioLevelCallback(callback func(level float64)) Option {
	return func(o *options) { o.callbacks.onAudioLevel = callback }
}

func WithSilenceCallback(callback func(silence time.Duration)) Option {
	return func(o *options) { o.callbacks.onSilence = callback }
}

func WithUtteranceCallback(callback func(utterance string)) Option {
	return func(o *options) { o.callbacks.onUtterance = callback }
}

// WithResponseFragmentCallback registers a callback for streamed response
// fragments, in arrival order. Concatenating the fragments reproduces the
// final response text.
func WithResponseFragmentCallback(callback func(fragment string)) Option {
	return func(o *options) { o.callbacks.onResponseFragment = callback }
}

func WithResponseCompletedCallback(callback func(text, title string)) Option {
	return func(o *options) { o.callbacks.onResponseCompleted = callback }
}

func WithTurnStartedCallback(callback func(turnID string)) Option {
	return func(o *options) { o.callbacks.onTurnStarted = callback }
}

func WithTurnCompletedCallback(callback func(turnID string)) Option {
	return func(o *options) { o.callbacks.onTurnCompleted = callback }
}

func WithBargeInCallback(callback func(turnID string)) Option {
	return func(o *options) { o.callbacks.onBargeIn = callback }
}

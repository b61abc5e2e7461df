package deepgram

import (
	"context"
	"testing"

	"github.com/quillchat/voice-core/core/texttospeech"
)

type nullSink struct{}

func (nullSink) Play([]byte) error                { return nil }
func (nullSink) ClearPlayback()                   {}
func (nullSink) AwaitDrain(context.Context) error { return nil }

func TestNewSynthesizerDefaultsVoiceAndEncoding(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "test-key")

	synthesizer, err := NewSynthesizer(nullSink{})
	if err != nil {
		t.Fatalf("expected synthesizer to initialize, got %v", err)
	}

	if synthesizer.voice != defaultVoice {
		t.Errorf("expected default voice %q, got %q", defaultVoice, synthesizer.voice)
	}
	if synthesizer.encoding.IsZero() {
		t.Errorf("expected a non-zero default encoding")
	}
}

func TestNewSynthesizerRejectsUnknownVoice(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "test-key")

	if _, err := NewSynthesizer(nullSink{}, texttospeech.WithVoice("aura-nobody-en")); err == nil {
		t.Fatalf("expected an error for an unknown voice")
	}
}

func TestNewSynthesizerRequiresSink(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "test-key")

	if _, err := NewSynthesizer(nil); err == nil {
		t.Fatalf("expected an error when no playback sink is given")
	}
}

func TestStopSpeakingWithoutActiveUtteranceIsSafe(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "test-key")

	synthesizer, err := NewSynthesizer(nullSink{})
	if err != nil {
		t.Fatalf("expected synthesizer to initialize, got %v", err)
	}

	synthesizer.StopSpeaking()
}

package events

import (
	"testing"
	"time"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "state changed", event: NewStateChanged("idle", "listening", ""), expected: KindStateChanged},
		{name: "capture audio level", event: NewCaptureAudioLevel(0.5), expected: KindCaptureAudioLevel},
		{name: "capture silence", event: NewCaptureSilence(time.Second), expected: KindCaptureSilence},
		{name: "user utterance", event: NewUserUtterance("text"), expected: KindUserUtterance},
		{name: "response fragment", event: NewResponseFragment("frag"), expected: KindResponseFragment},
		{name: "response completed", event: NewResponseCompleted("text", "title"), expected: KindResponseCompleted},
		{name: "turn started", event: NewTurnStarted("turn-1"), expected: KindTurnStarted},
		{name: "turn completed", event: NewTurnCompleted("turn-1"), expected: KindTurnCompleted},
		{name: "turn barged in", event: NewTurnBargedIn("turn-1"), expected: KindTurnBargedIn},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestStateChangedCarriesTransition(t *testing.T) {
	event := NewStateChanged("processing", "error", "stream broke")

	if event.Previous != "processing" || event.Current != "error" {
		t.Fatalf("expected processing->error transition, got %s->%s", event.Previous, event.Current)
	}
	if event.Message != "stream broke" {
		t.Fatalf("expected error message to be carried, got %q", event.Message)
	}
	if event.Timestamp().IsZero() {
		t.Fatalf("expected a non-zero timestamp")
	}
}

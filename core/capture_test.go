package orchestration

import (
	"context"
	"testing"
	"time"

	"github.com/quillchat/voice-core/core/audio"
	"github.com/quillchat/voice-core/core/events"
)

func TestCaptureAccumulatesSilenceAndResetsOnVoice(t *testing.T) {
	device := &scriptedCaptureDevice{
		encoding:     audio.GetDefaultEncodingInfo(),
		interval:     time.Millisecond,
		voicedFrames: map[int]bool{},
	}
	source := newCaptureSource(device, defaultSilenceFloor, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frameDuration := device.encoding.Duration(64)
	seen := 0
	var lastSilence time.Duration
	for chunk, err := range source.Capture(ctx) {
		if err != nil {
			t.Fatalf("expected no capture error, got %v", err)
		}
		if chunk.Seq != seen {
			t.Fatalf("expected sequential chunk index %d, got %d", seen, chunk.Seq)
		}
		if want := lastSilence + frameDuration; chunk.Silence != want {
			t.Fatalf("expected silence %v on chunk %d, got %v", want, seen, chunk.Silence)
		}
		lastSilence = chunk.Silence
		seen++
		if seen == 5 {
			break
		}
	}

	if got := device.stopCalls.Load(); got != 1 {
		t.Fatalf("expected device stop to run exactly once, got %d", got)
	}
}

func TestCaptureVoicedChunkResetsSilence(t *testing.T) {
	device := &scriptedCaptureDevice{
		encoding:     audio.GetDefaultEncodingInfo(),
		interval:     time.Millisecond,
		voicedFrames: map[int]bool{0: true},
	}
	source := newCaptureSource(device, defaultSilenceFloor, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for chunk, err := range source.Capture(ctx) {
		if err != nil {
			t.Fatalf("expected no capture error, got %v", err)
		}
		if chunk.Silence != 0 {
			t.Fatalf("expected voiced chunks to keep silence at zero, got %v", chunk.Silence)
		}
		if chunk.Seq == 3 {
			break
		}
	}
}

func TestCaptureCancellationStopsDeviceAndReportsError(t *testing.T) {
	device := &scriptedCaptureDevice{
		encoding: audio.GetDefaultEncodingInfo(),
		interval: time.Millisecond,
	}
	source := newCaptureSource(device, defaultSilenceFloor, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var finalErr error
	for chunk, err := range source.Capture(ctx) {
		if err != nil {
			finalErr = err
			break
		}
		if chunk.Seq == 2 {
			cancel()
		}
	}

	if finalErr != context.Canceled {
		t.Fatalf("expected context.Canceled to end the sequence, got %v", finalErr)
	}
	if got := device.stopCalls.Load(); got != 1 {
		t.Fatalf("expected device stop to run exactly once, got %d", got)
	}
}

func TestCaptureEmitsLevelAndSilenceEvents(t *testing.T) {
	device := &scriptedCaptureDevice{
		encoding: audio.GetDefaultEncodingInfo(),
		interval: time.Millisecond,
	}

	var levels, silences int
	emit := func(event events.Event) {
		switch event.Kind() {
		case events.KindCaptureAudioLevel:
			levels++
		case events.KindCaptureSilence:
			silences++
		}
	}
	source := newCaptureSource(device, defaultSilenceFloor, emit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	count := 0
	for _, err := range source.Capture(ctx) {
		if err != nil {
			t.Fatalf("expected no capture error, got %v", err)
		}
		count++
		if count == 4 {
			break
		}
	}

	if levels != count || silences != count {
		t.Fatalf("expected one level and one silence event per chunk, got %d and %d for %d chunks", levels, silences, count)
	}
}

func TestCaptureWithoutDeviceFails(t *testing.T) {
	source := newCaptureSource(nil, defaultSilenceFloor, nil)

	for _, err := range source.Capture(context.Background()) {
		if err == nil {
			t.Fatalf("expected an error for a missing device")
		}
		return
	}
	t.Fatalf("expected the sequence to yield an error")
}

package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func TestDurationCoversLinear16Payload(t *testing.T) {
	encodingInfo := EncodingInfo{SampleRate: 16000, Format: EncodingLinear16}

	// One second of 16kHz linear16 is 32000 bytes.
	if got := encodingInfo.Duration(32000); got != time.Second {
		t.Fatalf("expected 1s duration, got %v", got)
	}
}

func TestDurationAndSamplesRoundTrip(t *testing.T) {
	encodingInfo := EncodingInfo{SampleRate: 8000, Format: EncodingMulaw}

	payloadLen := encodingInfo.Samples(250 * time.Millisecond)
	if payloadLen != 2000 {
		t.Fatalf("expected 2000 bytes for 250ms of 8kHz mulaw, got %d", payloadLen)
	}
	if got := encodingInfo.Duration(payloadLen); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", got)
	}
}

func TestDurationOnZeroEncodingInfo(t *testing.T) {
	var encodingInfo EncodingInfo
	if got := encodingInfo.Duration(32000); got != 0 {
		t.Fatalf("expected zero duration for zero encoding info, got %v", got)
	}
}

func TestLevelOfSilenceIsZero(t *testing.T) {
	encodingInfo := GetDefaultEncodingInfo()
	payload := make([]byte, 640)

	if got := Level(payload, encodingInfo); got != 0 {
		t.Fatalf("expected zero level for silent payload, got %f", got)
	}
}

func TestLevelOfFullScaleSquareWave(t *testing.T) {
	encodingInfo := GetDefaultEncodingInfo()
	payload := make([]byte, 640)
	for i := 0; i+1 < len(payload); i += 2 {
		binary.LittleEndian.PutUint16(payload[i:], uint16(int16(16384)))
	}

	got := Level(payload, encodingInfo)
	if math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("expected level 0.5 for half-scale square wave, got %f", got)
	}
}

func TestLevelIgnoresNonLinearEncodings(t *testing.T) {
	encodingInfo := EncodingInfo{SampleRate: 8000, Format: EncodingMulaw}
	payload := []byte{0x12, 0x34, 0x56}

	if got := Level(payload, encodingInfo); got != 0 {
		t.Fatalf("expected zero level for mulaw payload, got %f", got)
	}
}

package events

import "time"

const (
	// KindCaptureAudioLevel identifies capture level measurements.
	KindCaptureAudioLevel Kind = "capture.audio_level"
	// KindCaptureSilence identifies continuous silence measurements.
	KindCaptureSilence Kind = "capture.silence"
)

// CaptureAudioLevel carries the normalized RMS level of the most recent
// capture buffer, in [0, 1].
type CaptureAudioLevel struct {
	Base
	Level float64
}

// NewCaptureAudioLevel creates a capture level event.
func NewCaptureAudioLevel(level float64) CaptureAudioLevel {
	return CaptureAudioLevel{Base: NewBase(KindCaptureAudioLevel), Level: level}
}

// CaptureSilence carries the continuous silence observed so far during a
// listening phase. Voiced audio resets the duration to zero.
type CaptureSilence struct {
	Base
	Duration time.Duration
}

// NewCaptureSilence creates a silence measurement event.
func NewCaptureSilence(duration time.Duration) CaptureSilence {
	return CaptureSilence{Base: NewBase(KindCaptureSilence), Duration: duration}
}

package orchestration

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quillchat/voice-core/core/audio"
	"github.com/quillchat/voice-core/core/events"
)

const captureQueueCapacity = 32

// captureSource adapts a [CaptureDevice] into the lazy chunk sequence the
// recognizer consumes. Each Capture call begins a fresh capture; a capture is
// not restartable mid-stream. Alongside the chunks it emits level and
// silence events as a side channel for UI metering.
type captureSource struct {
	device       CaptureDevice
	silenceFloor float64
	emit         eventEmitter
}

func newCaptureSource(device CaptureDevice, silenceFloor float64, emit eventEmitter) *captureSource {
	if emit == nil {
		emit = noopEventEmitter
	}

	return &captureSource{
		device:       device,
		silenceFloor: silenceFloor,
		emit:         emit,
	}
}

func (s *captureSource) isConfigured() bool {
	return s != nil && s.device != nil
}

// Capture starts the device and yields chunks until the consumer stops
// iterating or ctx is cancelled, in which case the final element carries
// ctx.Err(). The device's stop routine runs exactly once per capture, no
// matter which path ends the iteration.
func (s *captureSource) Capture(ctx context.Context) iter.Seq2[audio.Chunk, error] {
	return func(yield func(audio.Chunk, error) bool) {
		if !s.isConfigured() {
			yield(audio.Chunk{}, fmt.Errorf("no capture device configured"))
			return
		}

		encodingInfo := s.device.EncodingInfo()

		buffers := make(chan []byte, captureQueueCapacity)
		var dropped atomic.Int64

		defer func() {
			if n := dropped.Load(); n > 0 {
				logger.Warn("capture dropped buffers for a stalled consumer", "dropped", n)
			}
		}()

		stopOnce := sync.Once{}
		stop := func() {
			stopOnce.Do(func() {
				if err := s.device.StopCapture(); err != nil {
					logger.Warn("failed to stop capture device", "error", err)
				}
			})
		}
		defer stop()

		if err := s.device.StartCapture(ctx, func(buffer []byte) {
			copied := append([]byte(nil), buffer...)
			select {
			case buffers <- copied:
			default:
				// A stalled consumer must not block the device callback;
				// stale audio is worthless anyway.
				dropped.Add(1)
			}
		}); err != nil {
			yield(audio.Chunk{}, fmt.Errorf("failed to start capture: %w", err))
			return
		}

		// Stop the device promptly on cancellation even if the consumer is
		// still mid-iteration.
		cancelHook := withContextCancelHook(ctx, stop)
		defer close(cancelHook)

		seq := 0
		silence := time.Duration(0)
		for {
			select {
			case <-ctx.Done():
				yield(audio.Chunk{}, ctx.Err())
				return
			case buffer := <-buffers:
				level := audio.Level(buffer, encodingInfo)
				if level < s.silenceFloor {
					silence += encodingInfo.Duration(len(buffer))
				} else {
					silence = 0
				}

				s.emit(events.NewCaptureAudioLevel(level))
				s.emit(events.NewCaptureSilence(silence))

				if !yield(audio.Chunk{Seq: seq, Data: buffer, Silence: silence}, nil) {
					return
				}
				seq++
			}
		}
	}
}

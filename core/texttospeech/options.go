// Package texttospeech holds the provider-neutral configuration and playback
// contract shared by speech synthesis backends.
package texttospeech

import (
	"context"

	"github.com/quillchat/voice-core/core/audio"
)

// PlaybackSink receives synthesized audio and plays it on an output device.
// Play enqueues without blocking on the device; AwaitDrain blocks until the
// enqueued audio has been played out or the context is cancelled.
type PlaybackSink interface {
	Play(payload []byte) error
	ClearPlayback()
	AwaitDrain(ctx context.Context) error
}

type Options struct {
	Voice        string
	EncodingInfo audio.EncodingInfo
}

type Option func(*Options)

func WithVoice(voice string) Option {
	return func(o *Options) {
		o.Voice = voice
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) Option {
	return func(o *Options) {
		if encodingInfo.IsZero() {
			return
		}

		o.EncodingInfo = encodingInfo
	}
}

// Package speechtotext holds the provider-neutral configuration shared by
// speech recognition backends.
package speechtotext

import "github.com/quillchat/voice-core/core/audio"

type Options struct {
	// InterimTranscriptionCallback receives provisional transcripts while
	// an utterance is still in flight. Providers that cannot produce
	// interim results ignore it.
	InterimTranscriptionCallback func(transcript string)

	Model    string
	Language string

	EncodingInfo audio.EncodingInfo
}

type Option func(*Options)

func WithInterimTranscriptionCallback(callback func(transcript string)) Option {
	return func(o *Options) {
		o.InterimTranscriptionCallback = callback
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithLanguage(language string) Option {
	return func(o *Options) {
		o.Language = language
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) Option {
	return func(o *Options) {
		o.EncodingInfo = encodingInfo
	}
}

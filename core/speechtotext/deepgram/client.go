// Package deepgram provides speech recognition over the Deepgram live listen
// websocket API.
package deepgram

import (
	"fmt"
	"os"

	"github.com/quillchat/voice-core/core/audio"
	"github.com/quillchat/voice-core/core/speechtotext"
)

const (
	defaultModel    = "nova-3"
	defaultLanguage = "en-US"
)

// Recognizer turns captured audio into finalized transcripts. It is safe to
// reuse across utterances; each Listen call opens its own connection.
type Recognizer struct {
	apiKey  string
	options speechtotext.Options
}

func NewRecognizer(opts ...speechtotext.Option) (*Recognizer, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	options := speechtotext.Options{
		Model:        defaultModel,
		Language:     defaultLanguage,
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Model == "" {
		options.Model = defaultModel
	}
	if options.Language == "" {
		options.Language = defaultLanguage
	}
	if options.EncodingInfo.IsZero() {
		options.EncodingInfo = audio.GetDefaultEncodingInfo()
	}

	return &Recognizer{apiKey: apiKey, options: options}, nil
}

// Package deepgram provides speech synthesis over the Deepgram speak
// websocket API.
package deepgram

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/quillchat/voice-core/core/audio"
	"github.com/quillchat/voice-core/core/texttospeech"
)

type Voice string

const (
	VoiceAsteria Voice = "aura-asteria-en"
	VoiceLuna    Voice = "aura-luna-en"
	VoiceStella  Voice = "aura-stella-en"
	VoiceAthena  Voice = "aura-athena-en"
	VoiceHera    Voice = "aura-hera-en"
	VoiceOrion   Voice = "aura-orion-en"
	VoiceArcas   Voice = "aura-arcas-en"
	VoicePerseus Voice = "aura-perseus-en"
	VoiceAngus   Voice = "aura-angus-en"
	VoiceOrpheus Voice = "aura-orpheus-en"
	VoiceHelios  Voice = "aura-helios-en"
	VoiceZeus    Voice = "aura-zeus-en"
)

const defaultVoice = VoiceAsteria

func AvailableVoices() []Voice {
	return []Voice{
		VoiceAsteria, VoiceLuna, VoiceStella, VoiceAthena, VoiceHera,
		VoiceOrion, VoiceArcas, VoicePerseus, VoiceAngus, VoiceOrpheus,
		VoiceHelios, VoiceZeus,
	}
}

// Synthesizer speaks text through a playback sink. Speak calls are expected
// to be serialized by the caller; StopSpeaking may be called concurrently
// from another goroutine to interrupt the in-flight one.
type Synthesizer struct {
	apiKey   string
	voice    Voice
	encoding audio.EncodingInfo
	sink     texttospeech.PlaybackSink

	sessionMu sync.Mutex
	session   *speakSession
}

func NewSynthesizer(sink texttospeech.PlaybackSink, opts ...texttospeech.Option) (*Synthesizer, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}
	if sink == nil {
		return nil, fmt.Errorf("playback sink is required")
	}

	options := texttospeech.Options{
		Voice:        string(defaultVoice),
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	voice := Voice(options.Voice)
	if !slices.Contains(AvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice: %q", options.Voice)
	}

	return &Synthesizer{
		apiKey:   apiKey,
		voice:    voice,
		encoding: options.EncodingInfo,
		sink:     sink,
	}, nil
}

func (s *Synthesizer) setSession(session *speakSession) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	s.session = session
}

// StopSpeaking interrupts the in-flight utterance, discarding both the
// synthesis still on the wire and the audio already queued for playback.
// It is a no-op when nothing is being spoken.
func (s *Synthesizer) StopSpeaking() {
	s.sessionMu.Lock()
	session := s.session
	s.sessionMu.Unlock()

	if session != nil {
		session.stop()
	}
}

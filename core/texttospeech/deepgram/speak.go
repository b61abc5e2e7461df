package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quillchat/voice-core/core/texttospeech"
)

const closeDrainTimeout = 3 * time.Second

// Speak synthesizes the given text and blocks until the audio has been played
// out, the utterance is interrupted through StopSpeaking, or the context is
// cancelled. Each call opens its own connection to the speak endpoint.
func (s *Synthesizer) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	conn, err := s.connectWebsocket()
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	session := &speakSession{
		conn:       conn,
		sink:       s.sink,
		flushed:    make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	s.setSession(session)
	defer s.setSession(nil)

	go session.readMessages()

	if err := session.sendMessage(speakMsg(text)); err != nil {
		conn.Close()
		<-session.readerDone
		return err
	}
	if err := session.sendMessage(flushMsg); err != nil {
		conn.Close()
		<-session.readerDone
		return err
	}

	// All synthesized audio is on the sink once the server confirms the
	// flush; what remains is waiting for the device to play it out.
	select {
	case <-session.flushed:
	case <-session.readerDone:
		if !session.stopped.Load() {
			return fmt.Errorf("speak stream closed before the utterance was synthesized")
		}
	case <-ctx.Done():
		session.stop()
		<-session.readerDone
		return ctx.Err()
	}

	if err := session.sendMessage(closeMsg); err == nil {
		select {
		case <-session.readerDone:
		case <-time.After(closeDrainTimeout):
		}
	}
	conn.Close()

	if session.stopped.Load() {
		return nil
	}

	if err := s.sink.AwaitDrain(ctx); err != nil {
		s.sink.ClearPlayback()
		return err
	}
	return nil
}

func (s *Synthesizer) connectWebsocket() (*websocket.Conn, error) {
	urlValues := url.Values{}
	urlValues.Set("encoding", s.encoding.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(s.encoding.SampleRate))
	urlValues.Set("model", string(s.voice))
	urlValues.Set("container", "none")

	conn, _, err := websocket.DefaultDialer.Dial(
		(&url.URL{
			Scheme: "wss",
			Host:   "api.deepgram.com", Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + s.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

// speakSession holds the per-utterance connection state.
type speakSession struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	sink texttospeech.PlaybackSink

	flushed    chan struct{}
	flushOnce  sync.Once
	readerDone chan struct{}
	stopped    atomic.Bool
}

func (r *speakSession) readMessages() {
	defer close(r.readerDone)

	for {
		msgType, msg, err := r.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) &&
				!r.stopped.Load() {
				log.Printf("Websocket read error: %v", err)
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if r.stopped.Load() || len(msg) == 0 {
				continue
			}
			if err := r.sink.Play(msg); err != nil {
				log.Printf("Failed to enqueue synthesized audio: %v", err)
			}
		case websocket.TextMessage:
			var parsedMsg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				continue
			}

			if parsedMsg.Type == "Flushed" {
				r.flushOnce.Do(func() { close(r.flushed) })
			}
		}
	}
}

// stop interrupts the utterance: the server-side buffer is cleared, the
// connection torn down, and any audio already queued on the sink discarded.
func (r *speakSession) stop() {
	if !r.stopped.CompareAndSwap(false, true) {
		return
	}

	if err := r.sendMessage(clearMsg); err == nil {
		_ = r.sendMessage(closeMsg)
	}
	r.conn.Close()
	r.sink.ClearPlayback()
}

type websocketMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func speakMsg(text string) websocketMessage {
	return websocketMessage{Type: "Speak", Text: text}
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	clearMsg = websocketMessage{Type: "Clear"}
	closeMsg = websocketMessage{Type: "Close"}
)

func (r *speakSession) sendMessage(msg websocketMessage) error {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if err := r.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}

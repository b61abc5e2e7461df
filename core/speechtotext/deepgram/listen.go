package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"

	"github.com/quillchat/voice-core/core/audio"
)

const (
	keepAliveInterval = 5 * time.Second
	drainTimeout      = 3 * time.Second
)

// Listen streams the captured chunks to the live listen endpoint until the
// stop predicate fires on a chunk's accumulated silence, then drains the
// remaining finalized results and returns them joined as one utterance.
// Cancelling the context abandons the utterance and returns the context's
// error.
func (r *Recognizer) Listen(ctx context.Context, chunks iter.Seq2[audio.Chunk, error], stop func(silence time.Duration) bool) (string, error) {
	encoding, err := convertEncoding(r.options.EncodingInfo)
	if err != nil {
		return "", fmt.Errorf("invalid encoding: %w", err)
	}

	conn, err := connectWebsocket(r.apiKey, connectionOptions{
		sampleRate:     encoding.SampleRate,
		encoding:       encoding.Format.Name(),
		model:          r.options.Model,
		language:       r.options.Language,
		interimResults: r.options.InterimTranscriptionCallback != nil,
	})
	if err != nil {
		return "", fmt.Errorf("failed to open websocket: %w", err)
	}

	session := &listenSession{
		conn:        conn,
		interim:     r.options.InterimTranscriptionCallback,
		lastAudioTs: time.Now(),
		readerDone:  make(chan struct{}),
	}

	go session.readMessages()

	keepAliveCtx, stopKeepAlive := context.WithCancel(ctx)
	defer stopKeepAlive()
	go session.keepAlive(keepAliveCtx)

	for chunk, chunkErr := range chunks {
		if chunkErr != nil {
			conn.Close()
			<-session.readerDone
			return "", chunkErr
		}

		if err := session.sendAudio(chunk.Data); err != nil {
			conn.Close()
			<-session.readerDone
			return "", err
		}

		if stop(chunk.Silence) {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		conn.Close()
		<-session.readerDone
		return "", err
	}

	// Ask the server to flush whatever it still holds; it answers with the
	// remaining finalized results and a normal close.
	if err := session.closeStream(); err != nil {
		log.Println("Failed to close deepgram stream", "error", err)
	}
	select {
	case <-session.readerDone:
	case <-time.After(drainTimeout):
	case <-ctx.Done():
		conn.Close()
		<-session.readerDone
		return "", ctx.Err()
	}
	conn.Close()

	return session.transcript(), nil
}

type connectionOptions struct {
	sampleRate int
	encoding   string
	model      string
	language   string

	interimResults bool
}

func connectWebsocket(apiKey string, options connectionOptions) (*websocket.Conn, error) {
	listenUrl, _ := url.Parse("wss://api.deepgram.com/v1/listen")
	queryParams := listenUrl.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", options.model)
	queryParams.Set("language", options.language)
	queryParams.Set("smart_format", "true")
	queryParams.Set("endpointing", "300")
	if options.interimResults {
		queryParams.Set("interim_results", "true")
	}

	listenUrl.RawQuery = queryParams.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(listenUrl.String(),
		http.Header{"Authorization": {"Token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

// listenSession holds the per-utterance connection state. The finals slice is
// owned by the reader goroutine until readerDone closes.
type listenSession struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	interim func(transcript string)

	lastAudioTs time.Time

	finals     []string
	readerDone chan struct{}
}

func (s *listenSession) sendAudio(payload []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	s.lastAudioTs = time.Now()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

func (s *listenSession) sendKeepAlive() {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if err := s.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: "KeepAlive"}); err != nil {
		log.Println("Failed to write to deepgram client", "error", err)
	}
}

func (s *listenSession) closeStream() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if err := s.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		return fmt.Errorf("failed to close deepgram stream through websocket: %w", err)
	}
	return nil
}

// keepAlive keeps the connection open across capture stalls. The server drops
// connections that stay silent for too long.
func (s *listenSession) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.connMu.Lock()
			stalled := time.Since(s.lastAudioTs) >= keepAliveInterval
			if stalled {
				s.lastAudioTs = time.Now()
			}
			s.connMu.Unlock()

			if stalled {
				s.sendKeepAlive()
			}
		}
	}
}

func (s *listenSession) readMessages() {
	defer close(s.readerDone)

	for {
		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Println("Failed to read deepgram websocket message", "error", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			s.processMessage(msg)
		}
	}
}

func (s *listenSession) processMessage(msg []byte) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		log.Println("Failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}
		if len(msgResp.Channel.Alternatives) == 0 {
			return
		}

		transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		if len(transcript) == 0 {
			return
		}

		if msgResp.IsFinal {
			s.finals = append(s.finals, transcript)
		} else if s.interim != nil {
			s.interim(strings.TrimSpace(strings.Join(append(s.finals, transcript), " ")))
		}
	}
}

func (s *listenSession) transcript() string {
	return strings.TrimSpace(strings.Join(s.finals, " "))
}

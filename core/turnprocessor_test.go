package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/quillchat/voice-core/core/chats"
)

func TestProcessAppendsUserAndAssistantMessages(t *testing.T) {
	session := chats.NewSession()
	processor := newTurnProcessor(&scriptedStreamer{
		responses: map[string][]string{"hello": {"Hel", "lo, ", "world!"}},
	})

	var observed []string
	result, err := processor.Process(context.Background(), "assistant-1", "hello", session, func(fragment string) {
		observed = append(observed, fragment)
	})
	if err != nil {
		t.Fatalf("expected turn to succeed, got %v", err)
	}

	if result.ResponseText != "Hello, world!" {
		t.Fatalf("expected fragments concatenated in arrival order, got %q", result.ResponseText)
	}
	if got := strings.Join(observed, ""); got != "Hello, world!" {
		t.Fatalf("expected observer to see the same fragments, got %q", got)
	}
	if got := session.MessageCount(); got != 2 {
		t.Fatalf("expected 2 messages, got %d", got)
	}
	if session.Messages[0].Role != chats.RoleUser || session.Messages[1].Role != chats.RoleAssistant {
		t.Fatalf("expected user then assistant, got %s then %s", session.Messages[0].Role, session.Messages[1].Role)
	}
}

func TestProcessRejectsEmptyUtterance(t *testing.T) {
	session := chats.NewSession()
	processor := newTurnProcessor(&scriptedStreamer{})

	if _, err := processor.Process(context.Background(), "assistant-1", "   ", session, nil); !errors.Is(err, errEmptyUtterance) {
		t.Fatalf("expected empty utterance error, got %v", err)
	}
	if got := session.MessageCount(); got != 0 {
		t.Fatalf("expected session untouched, got %d messages", got)
	}
}

func TestProcessRejectsMissingAssistant(t *testing.T) {
	processor := newTurnProcessor(&scriptedStreamer{})

	if _, err := processor.Process(context.Background(), "", "hello", chats.NewSession(), nil); !errors.Is(err, ErrNoAssistant) {
		t.Fatalf("expected ErrNoAssistant, got %v", err)
	}
}

func TestProcessSubstitutesApologyOnStreamFailure(t *testing.T) {
	session := chats.NewSession()
	processor := newTurnProcessor(&scriptedStreamer{err: fmt.Errorf("connection reset")})

	result, err := processor.Process(context.Background(), "assistant-1", "hello", session, nil)
	if err != nil {
		t.Fatalf("expected a recovered turn, got %v", err)
	}
	if !result.Recovered {
		t.Fatalf("expected the turn to be marked recovered")
	}
	if result.ResponseText != apologyMessage {
		t.Fatalf("expected the apology, got %q", result.ResponseText)
	}
	if got := session.MessageCount(); got != 2 {
		t.Fatalf("expected user + apology, got %d messages", got)
	}
}

func TestProcessUnwindsSessionOnCancellation(t *testing.T) {
	session := chats.NewSession()
	ctx, cancel := context.WithCancel(context.Background())
	processor := newTurnProcessor(&cancellingStreamer{cancel: cancel})

	if _, err := processor.Process(ctx, "assistant-1", "hello", session, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := session.MessageCount(); got != 0 {
		t.Fatalf("expected aborted turn to leave the session untouched, got %d messages", got)
	}
}

func TestProcessUsesBackendTitleFromTerminalChunk(t *testing.T) {
	session := chats.NewSession()
	processor := newTurnProcessor(&titledStreamer{fragments: []string{"Sure."}, title: "Vacation policy"})

	result, err := processor.Process(context.Background(), "assistant-1", "what is the vacation policy", session, nil)
	if err != nil {
		t.Fatalf("expected turn to succeed, got %v", err)
	}
	if result.Title != "Vacation policy" {
		t.Fatalf("expected backend title, got %q", result.Title)
	}
	if session.Title != "Vacation policy" {
		t.Fatalf("expected session title updated, got %q", session.Title)
	}
}

func TestProcessFallsBackToUtteranceTitle(t *testing.T) {
	session := chats.NewSession()
	processor := newTurnProcessor(&scriptedStreamer{
		responses: map[string][]string{"how do refunds work exactly here then": {"Like this."}},
	})

	result, err := processor.Process(context.Background(), "assistant-1", "how do refunds work exactly here then", session, nil)
	if err != nil {
		t.Fatalf("expected turn to succeed, got %v", err)
	}
	if result.Title != "how do refunds work exactly here…" {
		t.Fatalf("expected truncated opening-words title, got %q", result.Title)
	}
}

func TestProcessKeepsExistingTitle(t *testing.T) {
	session := chats.NewSession()
	session.Title = "Already titled"
	processor := newTurnProcessor(&scriptedStreamer{
		responses: map[string][]string{"hello": {"Hi."}},
	})

	result, err := processor.Process(context.Background(), "assistant-1", "hello", session, nil)
	if err != nil {
		t.Fatalf("expected turn to succeed, got %v", err)
	}
	if result.Title != "" {
		t.Fatalf("expected no derived title for a titled session, got %q", result.Title)
	}
	if session.Title != "Already titled" {
		t.Fatalf("expected existing title preserved, got %q", session.Title)
	}
}

type cancellingStreamer struct {
	cancel context.CancelFunc
}

func (s *cancellingStreamer) StreamChat(context.Context, string, []chats.Message) chats.Stream {
	return &cancellingStream{cancel: s.cancel}
}

type cancellingStream struct {
	cancel context.CancelFunc
}

func (s *cancellingStream) Chunks(ctx context.Context) func(func(chats.StreamChunk, error) bool) {
	return func(yield func(chats.StreamChunk, error) bool) {
		if !yield(testContentChunk{content: "partial "}, nil) {
			return
		}
		s.cancel()
		yield(nil, ctx.Err())
	}
}

type titledStreamer struct {
	fragments []string
	title     string
}

func (s *titledStreamer) StreamChat(context.Context, string, []chats.Message) chats.Stream {
	return &titledStream{fragments: s.fragments, title: s.title}
}

type titledStream struct {
	fragments []string
	title     string
}

func (s *titledStream) Chunks(context.Context) func(func(chats.StreamChunk, error) bool) {
	return func(yield func(chats.StreamChunk, error) bool) {
		for _, fragment := range s.fragments {
			if !yield(testContentChunk{content: fragment}, nil) {
				return
			}
		}
		finishReason := "stop"
		yield(testTitleChunk{finishReason: &finishReason, title: s.title}, nil)
	}
}

type testTitleChunk struct {
	finishReason *string
	title        string
}

func (c testTitleChunk) FinishReason() *string { return c.finishReason }
func (c testTitleChunk) Title() string         { return c.title }

package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quillchat/voice-core/core/chats"
)

func TestStreamChatYieldsContentInArrivalOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req requestBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("expected decodable request body, got %v", err)
		}
		if req.AssistantID != "assistant-7" {
			t.Errorf("expected assistant id assistant-7, got %q", req.AssistantID)
		}
		if !req.Stream {
			t.Errorf("expected a streaming request")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo, \"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"world!\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"finish_reason\":\"stop\"}}],\"title\":\"Greeting\"}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	stream := client.StreamChat(context.Background(), "assistant-7", []chats.Message{
		{Role: chats.RoleUser, Content: "hello"},
	})

	var builder strings.Builder
	var title string
	for chunk, err := range stream.Chunks(context.Background()) {
		if err != nil {
			t.Fatalf("expected no stream error, got %v", err)
		}
		if contentChunk, ok := chunk.(chats.StreamContentChunk); ok {
			builder.WriteString(contentChunk.Content())
		}
		if titleChunk, ok := chunk.(chats.StreamTitleChunk); ok {
			title = titleChunk.Title()
		}
	}

	if got := builder.String(); got != "Hello, world!" {
		t.Fatalf("expected accumulated content %q, got %q", "Hello, world!", got)
	}
	if title != "Greeting" {
		t.Fatalf("expected title %q, got %q", "Greeting", title)
	}
}

func TestStreamChatSeparatesReasoningFromContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"reasoning\":\"weighing sources\",\"channel\":\"analysis\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"The policy allows it.\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	stream := client.StreamChat(context.Background(), "assistant-7", nil)

	var content, reasoning string
	for chunk, err := range stream.Chunks(context.Background()) {
		if err != nil {
			t.Fatalf("expected no stream error, got %v", err)
		}
		switch typedChunk := chunk.(type) {
		case chats.StreamReasoningChunk:
			reasoning += typedChunk.Reasoning()
			if typedChunk.Channel() != "analysis" {
				t.Fatalf("expected analysis channel, got %q", typedChunk.Channel())
			}
		case chats.StreamContentChunk:
			content += typedChunk.Content()
		}
	}

	if content != "The policy allows it." {
		t.Fatalf("expected content without reasoning, got %q", content)
	}
	if reasoning != "weighing sources" {
		t.Fatalf("expected reasoning to be yielded separately, got %q", reasoning)
	}
}

func TestStreamChatReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "relay unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	stream := client.StreamChat(context.Background(), "assistant-7", nil)

	var streamErr error
	for _, err := range stream.Chunks(context.Background()) {
		if err != nil {
			streamErr = err
			break
		}
	}

	if streamErr == nil {
		t.Fatalf("expected an error for a non-OK response")
	}
	if !strings.Contains(streamErr.Error(), "non-OK HTTP status") {
		t.Fatalf("expected a non-OK status error, got %v", streamErr)
	}
}

func TestDeriveTitleParsesStructuredResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req titleRequestBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("expected decodable request body, got %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Errorf("expected a json_schema response format")
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"{\"title\":\"Remote work policy\"}"}}]}`)
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	title, err := client.DeriveTitle(context.Background(), "assistant-7", []chats.Message{
		{Role: chats.RoleUser, Content: "can I work from abroad?"},
	})
	if err != nil {
		t.Fatalf("expected title derivation to succeed, got %v", err)
	}
	if title != "Remote work policy" {
		t.Fatalf("expected derived title, got %q", title)
	}
}

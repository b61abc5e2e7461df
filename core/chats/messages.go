package chats

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Role describes who a conversation message is from.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single message in a conversation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one conversation: an ordered list of messages plus naming and
// bookkeeping metadata. A session has a single writer at a time; concurrent
// readers must go through [Session.Snapshot].
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an empty, untitled session.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message to the conversation. Conversations alternate
// speakers: appending a message with the same role as the last one fails and
// leaves the session unchanged.
func (s *Session) Append(role Role, content string) error {
	if len(s.Messages) > 0 && s.Messages[len(s.Messages)-1].Role == role {
		return fmt.Errorf("message would repeat role %q", role)
	}

	now := time.Now()
	s.Messages = append(s.Messages, Message{Role: role, Content: content, Timestamp: now})
	s.UpdatedAt = now
	return nil
}

// Snapshot returns a deep copy of the session that is safe to read outside
// the owning goroutine.
func (s *Session) Snapshot() Session {
	var view Session
	_ = copier.CopyWithOption(&view, s, copier.Option{DeepCopy: true})
	return view
}

// MessageCount returns the number of messages in the conversation.
func (s *Session) MessageCount() int {
	return len(s.Messages)
}

// ShortID returns the first 8 characters of the session ID, for display.
func (s *Session) ShortID() string {
	if len(s.ID) >= 8 {
		return s.ID[:8]
	}
	return s.ID
}

// DisplayTitle returns the session title, falling back to the short ID for
// untitled sessions.
func (s *Session) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.ShortID()
}

// FallbackTitle derives a session title from the opening words of an
// utterance, used when the chat backend does not provide one.
func FallbackTitle(utterance string) string {
	const maxWords = 6

	words := strings.Fields(utterance)
	if len(words) == 0 {
		return ""
	}
	if len(words) > maxWords {
		words = words[:maxWords]
		return strings.Join(words, " ") + "…"
	}
	return strings.Join(words, " ")
}

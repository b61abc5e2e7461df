package relay

import (
	"github.com/quillchat/voice-core/core/chats"
)

type message struct {
	Role    messageRole `json:"role"`
	Content string      `json:"content"`
}

type messageRole string

const (
	messageRoleSystem    messageRole = "system"
	messageRoleUser      messageRole = "user"
	messageRoleAssistant messageRole = "assistant"
)

func toMessages(conversation []chats.Message) []message {
	messages := []message{}
	for _, msg := range conversation {
		role := messageRoleUser
		switch msg.Role {
		case chats.RoleSystem:
			role = messageRoleSystem
		case chats.RoleAssistant:
			role = messageRoleAssistant
		case chats.RoleUser:
			role = messageRoleUser
		}
		messages = append(messages, message{Role: role, Content: msg.Content})
	}
	return messages
}

type requestBody struct {
	AssistantID string    `json:"assistant_id"`
	Messages    []message `json:"messages"`
	Stream      bool      `json:"stream"`
}

type streamingResponseBody struct {
	Choices []struct {
		Delta struct {
			Content      string  `json:"content,omitempty"`
			Reasoning    string  `json:"reasoning,omitempty"`
			Channel      string  `json:"channel,omitempty"`
			FinishReason *string `json:"finish_reason,omitempty"`
		} `json:"delta"`
	} `json:"choices"`
	// Title is only present on the terminal chunk, and only when the relay
	// derived a conversation title for this exchange.
	Title string `json:"title,omitempty"`
	Usage *struct {
		PromptTokens     int     `json:"prompt_tokens"`
		CompletionTokens int     `json:"completion_tokens"`
		TotalTokens      int     `json:"total_tokens"`
		TotalTime        float64 `json:"total_time"`
	} `json:"usage,omitempty"`
}

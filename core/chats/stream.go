package chats

import "context"

// Stream is an in-flight assistant response. Chunks yields the streamed
// chunks in arrival order; consumers assemble the final response text by
// concatenating content chunks in that order. The iteration ends after a
// chunk carrying a finish reason, or with a non-nil error.
type Stream interface {
	Chunks(context.Context) func(func(StreamChunk, error) bool)
}

type StreamChunk interface {
	FinishReason() *string
}

// StreamContentChunk carries user-facing response text.
type StreamContentChunk interface {
	StreamChunk
	Content() string
}

// StreamReasoningChunk carries model reasoning that must never be spoken or
// recorded as response content.
type StreamReasoningChunk interface {
	StreamChunk
	Reasoning() string
	Channel() string
}

// StreamTitleChunk carries a conversation title derived by the backend; when
// present it arrives on the terminal chunk.
type StreamTitleChunk interface {
	StreamChunk
	Title() string
}

// StreamUsageChunk carries token accounting reported by the backend.
type StreamUsageChunk interface {
	StreamChunk
	Usage() Usage
}

// Usage is the token accounting for one completed response.
type Usage struct {
	// InputTokens represents the number of input tokens.
	InputTokens int
	// OutputTokens represents the number of output tokens.
	OutputTokens int
	// TotalTokens represents the total number of tokens used.
	TotalTokens int
	// TotalTime represents the total time it took to complete the request.
	//
	// Note: This might be just an approximation.
	TotalTime float64
}

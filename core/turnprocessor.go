package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/quillchat/voice-core/core/chats"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// turnProcessor runs the Processing stage of one turn: conversation
// bookkeeping around a streamed chat completion. It owns no state of its own;
// the session is the orchestrator's and is only ever touched from the
// session loop.
type turnProcessor struct {
	streamer ChatStreamer
}

func newTurnProcessor(streamer ChatStreamer) *turnProcessor {
	return &turnProcessor{streamer: streamer}
}

// turnResult is what the Processing stage hands back to the session loop.
type turnResult struct {
	// ResponseText is the final concatenation of the streamed fragments, or
	// the apology when the stream failed.
	ResponseText string
	// Title is the conversation title derived during this turn, empty when
	// the session already had one.
	Title string
	// Recovered reports that the chat call failed and the apology was
	// substituted. The turn still counts as completed.
	Recovered bool
}

// Process appends the utterance as a user message, streams the full updated
// conversation to the backend, accumulates fragments in arrival order, and
// appends the final text as the assistant message. onFragment, when set,
// observes partial accumulation; the loop only ever sees the final text.
//
// A chat-call failure is absorbed here: the apology is appended instead and
// the turn succeeds, so the message count grows by exactly two either way.
func (p *turnProcessor) Process(
	ctx context.Context,
	assistantID string,
	utterance string,
	session *chats.Session,
	onFragment func(fragment string),
) (turnResult, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return turnResult{}, errEmptyUtterance
	}
	if assistantID == "" {
		return turnResult{}, ErrNoAssistant
	}
	if p.streamer == nil {
		return turnResult{}, fmt.Errorf("no chat streamer configured")
	}

	ctx, span := tracer.Start(ctx, "process chat turn")
	defer span.End()
	span.SetAttributes(attribute.String("turn.assistant_id", assistantID))
	span.SetAttributes(attribute.Int("turn.history_messages", session.MessageCount()))

	if err := session.Append(chats.RoleUser, utterance); err != nil {
		return turnResult{}, fmt.Errorf("failed to record utterance: %w", err)
	}

	result := p.streamResponse(ctx, assistantID, session, onFragment)

	if ctx.Err() != nil {
		// An aborted turn leaves the session untouched: unwind the user
		// message so the conversation only ever records completed turns.
		session.Messages = session.Messages[:len(session.Messages)-1]
		return turnResult{}, ctx.Err()
	}

	if result.Title == "" && session.Title == "" && !result.Recovered {
		result.Title = p.deriveTitle(ctx, assistantID, session, utterance)
	}
	if result.Title != "" {
		session.Title = result.Title
	}

	if err := session.Append(chats.RoleAssistant, result.ResponseText); err != nil {
		return turnResult{}, fmt.Errorf("failed to record response: %w", err)
	}

	return result, nil
}

func (p *turnProcessor) streamResponse(
	ctx context.Context,
	assistantID string,
	session *chats.Session,
	onFragment func(fragment string),
) turnResult {
	span := trace.SpanFromContext(ctx)

	buffer := newResponseBuffer()
	defer buffer.Complete()

	result := turnResult{}
	stream := p.streamer.StreamChat(ctx, assistantID, session.Messages)
	for chunk, err := range stream.Chunks(ctx) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Warn("chat stream failed, substituting apology", "error", err)
			return turnResult{ResponseText: apologyMessage, Recovered: true}
		}

		if contentChunk, ok := chunk.(chats.StreamContentChunk); ok && contentChunk.Content() != "" {
			buffer.AddFragment(contentChunk.Content())
			if onFragment != nil {
				onFragment(contentChunk.Content())
			}
		}

		// Reasoning chunks are deliberately not accumulated: they are never
		// spoken or recorded as response content.

		if titleChunk, ok := chunk.(chats.StreamTitleChunk); ok && titleChunk.Title() != "" {
			result.Title = titleChunk.Title()
		}

		if usageChunk, ok := chunk.(chats.StreamUsageChunk); ok {
			usage := usageChunk.Usage()
			span.SetAttributes(attribute.Int("turn.usage.total_tokens", usage.TotalTokens))
		}
	}

	if ctx.Err() != nil {
		// Cancellation is control flow, not a turn failure; the loop decides
		// what to do with an unfinished turn.
		return turnResult{ResponseText: buffer.String()}
	}

	result.ResponseText = buffer.String()
	if strings.TrimSpace(result.ResponseText) == "" {
		logger.Warn("chat stream completed without content, substituting apology")
		return turnResult{ResponseText: apologyMessage, Title: result.Title, Recovered: true}
	}

	return result
}

// deriveTitle names an untitled conversation: a structured completion when
// the backend supports it, the opening words of the utterance otherwise.
func (p *turnProcessor) deriveTitle(ctx context.Context, assistantID string, session *chats.Session, utterance string) string {
	if deriver, ok := p.streamer.(TitleDeriver); ok {
		title, err := deriver.DeriveTitle(ctx, assistantID, session.Messages)
		if err == nil && title != "" {
			return title
		}
		if err != nil {
			logger.Warn("failed to derive conversation title", "error", err)
		}
	}

	return chats.FallbackTitle(utterance)
}

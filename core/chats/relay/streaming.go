package relay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quillchat/voice-core/core/chats"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBaseURL  = "https://relay.quillchat.io"
	completionsPath = "/v1/chat/completions"

	endMessage  = "[DONE]"
	chunkPrefix = "data:"
)

// Client talks to the QuillChat relay, the platform's chat-completion
// gateway. The zero value is not usable; construct with [NewClient].
type Client struct {
	baseURL string
	apiKey  string
}

type ClientOption func(*Client)

// WithBaseURL points the client at a non-default relay deployment.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{baseURL: defaultBaseURL, apiKey: apiKey}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// StreamChat submits the full conversation to the relay and returns the
// response stream. The request is not sent until the stream is iterated.
func (c *Client) StreamChat(_ context.Context, assistantID string, conversation []chats.Message) chats.Stream {
	return &Stream{
		baseURL:     c.baseURL,
		apiKey:      c.apiKey,
		assistantID: assistantID,
		messages:    toMessages(conversation),
	}
}

type Stream struct {
	baseURL string
	apiKey  string

	assistantID string
	messages    []message
}

func (s *Stream) Chunks(ctx context.Context) func(func(chats.StreamChunk, error) bool) {
	requestToFirstTokenTime := time.Time{}
	setRequestToFirstTokenTime := func(span trace.Span) {
		if requestToFirstTokenTime.IsZero() {
			return
		}
		span.SetAttributes(attribute.Float64("response.request_to_first_token_time", time.Since(requestToFirstTokenTime).Seconds()))
		span.AddEvent("received first chunk")
		requestToFirstTokenTime = time.Time{}
	}

	return func(yield func(chats.StreamChunk, error) bool) {
		ctx, span := tracer.Start(ctx, "stream chat completion")
		defer span.End()
		span.SetAttributes(attribute.String("request.assistant_id", s.assistantID))
		span.SetAttributes(attribute.Int("request.messages", len(s.messages)))

		reqBody := requestBody{
			AssistantID: s.assistantID,
			Messages:    s.messages,
			Stream:      true,
		}

		requestBodyBytes, err := json.Marshal(reqBody)
		if err != nil {
			err = fmt.Errorf("error marshalling JSON: %w", err)
			span.RecordError(err)
			yield(nil, err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+completionsPath, bytes.NewBuffer(requestBodyBytes))
		if err != nil {
			err = fmt.Errorf("error creating HTTP request: %w", err)
			span.RecordError(err)
			yield(nil, err)
			return
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.apiKey)

		span.SetAttributes(attribute.String("request.url", req.URL.String()))
		client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)}
		requestToFirstTokenTime = time.Now()
		span.AddEvent("request started")
		resp, err := client.Do(req)
		if err != nil {
			err = fmt.Errorf("error sending request: %w", err)
			span.RecordError(err)
			yield(nil, err)
			return
		}
		defer resp.Body.Close()

		span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
		if resp.StatusCode != http.StatusOK {
			if errorBody, err := io.ReadAll(resp.Body); err != nil {
				err = fmt.Errorf("error reading error body: %w", err)
				span.RecordError(err)
				span.SetAttributes(attribute.String("error", err.Error()))
			} else {
				span.SetAttributes(attribute.String("response.error", string(errorBody)))
			}

			err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
			span.RecordError(err)
			yield(nil, err)
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			chunk := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), chunkPrefix))
			setRequestToFirstTokenTime(span)

			if len(chunk) == 0 {
				continue
			}

			if chunk == endMessage {
				break
			}

			var responseBody streamingResponseBody
			err := json.Unmarshal([]byte(chunk), &responseBody)
			if err != nil {
				err = fmt.Errorf("error unmarshalling JSON: %w", err)
				span.RecordError(err)
				if !yield(nil, err) {
					return
				}
				continue
			}

			var finishReason *string
			if len(responseBody.Choices) > 0 {
				delta := responseBody.Choices[0].Delta

				if delta.FinishReason != nil {
					finishReason = delta.FinishReason
				}

				if delta.Content != "" {
					if !yield(StreamContentChunk{
						finishReason: finishReason,
						content:      delta.Content,
					}, nil) {
						return
					}
				}

				if delta.Reasoning != "" {
					if !yield(StreamReasoningChunk{
						finishReason: finishReason,
						reasoning:    delta.Reasoning,
						channel:      delta.Channel,
					}, nil) {
						return
					}
				}
			}

			if responseBody.Title != "" {
				span.SetAttributes(attribute.String("response.title", responseBody.Title))
				if !yield(StreamTitleChunk{
					finishReason: finishReason,
					title:        responseBody.Title,
				}, nil) {
					return
				}
			}

			if responseBody.Usage != nil {
				span.SetAttributes(attribute.Int("usage.input", responseBody.Usage.PromptTokens))
				span.SetAttributes(attribute.Int("usage.output", responseBody.Usage.CompletionTokens))
				span.SetAttributes(attribute.Int("usage.total", responseBody.Usage.TotalTokens))
				span.SetAttributes(attribute.Float64("usage.total_time", responseBody.Usage.TotalTime))

				if !yield(StreamUsageChunk{
					finishReason: finishReason,
					usage: chats.Usage{
						InputTokens:  responseBody.Usage.PromptTokens,
						OutputTokens: responseBody.Usage.CompletionTokens,
						TotalTokens:  responseBody.Usage.TotalTokens,
						TotalTime:    responseBody.Usage.TotalTime,
					},
				}, nil) {
					return
				}
			}

			if finishReason != nil && responseBody.Title == "" {
				// Terminal chunks without content still need to surface the
				// finish reason to the consumer.
				if len(responseBody.Choices) > 0 && responseBody.Choices[0].Delta.Content == "" && responseBody.Choices[0].Delta.Reasoning == "" {
					if !yield(StreamContentChunk{finishReason: finishReason}, nil) {
						return
					}
				}
			}
		}

		if err := scanner.Err(); err != nil {
			yield(nil, fmt.Errorf("error reading streamed response: %w", err))
			return
		}
	}
}

type StreamContentChunk struct {
	finishReason *string
	content      string
}

func (s StreamContentChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamContentChunk) Content() string {
	return s.content
}

type StreamReasoningChunk struct {
	finishReason *string
	reasoning    string
	channel      string
}

func (s StreamReasoningChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamReasoningChunk) Reasoning() string {
	return s.reasoning
}

func (s StreamReasoningChunk) Channel() string {
	return s.channel
}

type StreamTitleChunk struct {
	finishReason *string
	title        string
}

func (s StreamTitleChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamTitleChunk) Title() string {
	return s.title
}

type StreamUsageChunk struct {
	finishReason *string
	usage        chats.Usage
}

func (s StreamUsageChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamUsageChunk) Usage() chats.Usage {
	return s.usage
}

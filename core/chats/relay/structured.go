package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/quillchat/voice-core/core/chats"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

type sessionTitle struct {
	Title string `json:"title" jsonschema:"title=Title,description=A short title for the conversation in at most six words"`
}

const titlePrompt = "Summarize this conversation into a short title a user can recognize it by later."

// DeriveTitle asks the relay for a short conversation title via a structured
// completion. Used when the streamed response did not carry one.
func (c *Client) DeriveTitle(ctx context.Context, assistantID string, conversation []chats.Message) (string, error) {
	ctx, span := tracer.Start(ctx, "derive conversation title")
	defer span.End()

	messages := toMessages(conversation)
	messages = append(messages, message{
		Role:    messageRoleUser,
		Content: titlePrompt,
	})

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(sessionTitle{})

	reqBody := titleRequestBody{
		AssistantID: assistantID,
		Messages:    messages,
		ResponseFormat: &chatResponseFormat{
			Type: "json_schema",
			JSONSchema: &responseJSONSchema{
				Name:   "sessionTitle",
				Schema: *schema,
				Strict: true,
			},
		},
	}

	span.SetAttributes(attribute.String("request.assistant_id", assistantID))
	schemaString, _ := schema.MarshalJSON()
	span.SetAttributes(attribute.String("request.schema", string(schemaString)))

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+completionsPath, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	span.SetAttributes(attribute.String("request.url", req.URL.String()))
	client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	resp, err := client.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		return "", err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, err := io.ReadAll(resp.Body); err != nil {
			err = fmt.Errorf("error reading error body: %w", err)
			span.RecordError(err)
		} else {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}

		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		return "", err
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("error reading response body: %w", err)
		span.RecordError(err)
		return "", err
	}

	var responseBody titleResponseBody
	if err := json.Unmarshal(respBodyBytes, &responseBody); err != nil {
		err = fmt.Errorf("error unmarshalling response: %w", err)
		span.RecordError(err)
		return "", err
	}
	if len(responseBody.Choices) == 0 {
		err := fmt.Errorf("response carried no choices")
		span.RecordError(err)
		return "", err
	}

	content := responseBody.Choices[0].Message.Content
	if split := strings.Split(content, "```"); len(split) > 1 {
		content = split[1]
	}

	var title sessionTitle
	if err := json.Unmarshal([]byte(content), &title); err != nil {
		err = fmt.Errorf("error unmarshalling structured title: %w", err)
		span.RecordError(err)
		return "", err
	}

	span.SetAttributes(attribute.String("response.title", title.Title))
	return strings.TrimSpace(title.Title), nil
}

type titleRequestBody struct {
	AssistantID    string              `json:"assistant_id"`
	Messages       []message           `json:"messages"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponseFormat struct {
	Type       string              `json:"type"`
	JSONSchema *responseJSONSchema `json:"json_schema,omitempty"`
}

type responseJSONSchema struct {
	// Name further identifies the schema in the response.
	Name string `json:"name"`
	// Schema is the JSON schema the completion must satisfy.
	Schema jsonschema.Schema `json:"schema"`
	// Strict determines whether to enforce the schema upon the generated
	// content.
	Strict bool `json:"strict"`
}

type titleResponseBody struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"message"`
	} `json:"choices"`
}

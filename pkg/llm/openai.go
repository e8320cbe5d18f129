package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/xhad/compligen/internal/types"
)

// OpenAIBackend produces JSON documents through the chat completions API with
// a strict json_schema response format.
type OpenAIBackend struct {
	config ChatConfig
	client *openai.Client
}

func NewOpenAIBackend(config ChatConfig) (*OpenAIBackend, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if err := config.applyDefaults("gpt-4o-mini"); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIBackend{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Complete implements types.StructuredCompletionBackend.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string, schema types.Schema) (string, error) {
	const op = "openai.complete"

	req := openai.ChatCompletionRequest{
		Model: b.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(b.config.SystemTemplate, schema.Name, string(schema.Definition))},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:         float32(b.config.Temperature),
		MaxCompletionTokens: b.config.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        schema.Name,
				Description: schema.Description,
				Schema:      schema,
				Strict:      true,
			},
		},
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(op, err)
	}
	if len(resp.Choices) == 0 {
		return "", types.NewError(types.KindSchemaViolation, op, errors.New("OpenAI returned no choices"))
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", types.Errorf(types.KindContentPolicyRejection, op, "model refused: %s", choice.Message.Refusal)
	}
	switch choice.FinishReason {
	case openai.FinishReasonContentFilter:
		return "", types.Errorf(types.KindContentPolicyRejection, op, "generation stopped by content filter")
	case openai.FinishReasonLength:
		return "", types.Errorf(types.KindSchemaViolation, op, "completion truncated at %d tokens", b.config.MaxTokens)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", types.NewError(types.KindSchemaViolation, op, errors.New("empty completion"))
	}
	return choice.Message.Content, nil
}

// classifyOpenAIError maps client errors onto pipeline error kinds. A 400 with
// a content policy code is a rejection; every other failure means the backend
// could not serve the request.
func classifyOpenAIError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code, _ := apiErr.Code.(string)
		if apiErr.HTTPStatusCode == http.StatusBadRequest &&
			(code == "content_policy_violation" || code == "content_filter") {
			return types.NewError(types.KindContentPolicyRejection, op, err)
		}
		return types.NewError(types.KindBackendUnavailable, op, fmt.Errorf("OpenAI API call failed (%d): %w", apiErr.HTTPStatusCode, err))
	}
	return types.NewError(types.KindBackendUnavailable, op, fmt.Errorf("OpenAI API call failed: %w", err))
}

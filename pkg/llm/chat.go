package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	lcschema "github.com/tmc/langchaingo/schema"

	"github.com/xhad/compligen/internal/types"
)

// ChatConfig represents the configuration for a structured completion backend.
type ChatConfig struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	SystemTemplate string
	BaseURL        string // Ollama server URL, or OpenAI-compatible base URL
	APIKey         string // OpenAI only
}

const defaultSystemTemplate = "You are an expert Australian compliance drafter. " +
	"Reply with a single JSON object and nothing else. " +
	"The object must be valid against this JSON Schema named %s:\n%s"

func (c *ChatConfig) applyDefaults(defaultModel string) error {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max tokens cannot be negative")
	} else if c.MaxTokens == 0 {
		c.MaxTokens = 8192
	}
	if c.SystemTemplate == "" {
		c.SystemTemplate = defaultSystemTemplate
	}
	return nil
}

// OllamaBackend produces JSON documents with a local Ollama model. Ollama has
// no schema enforcement, so the schema travels in the system message and the
// model runs in JSON mode.
type OllamaBackend struct {
	config ChatConfig
	llm    llms.Model
}

// NewOllamaBackend creates a backend with the given configuration.
func NewOllamaBackend(config ChatConfig) (*OllamaBackend, error) {
	if err := config.applyDefaults("llama3.1"); err != nil {
		return nil, err
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}

	llm, err := ollama.New(ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &OllamaBackend{config: config, llm: llm}, nil
}

// Complete implements types.StructuredCompletionBackend.
func (b *OllamaBackend) Complete(ctx context.Context, prompt string, schema types.Schema) (string, error) {
	const op = "ollama.complete"

	content := []llms.MessageContent{
		llms.TextParts(lcschema.ChatMessageTypeSystem, fmt.Sprintf(b.config.SystemTemplate, schema.Name, string(schema.Definition))),
		llms.TextParts(lcschema.ChatMessageTypeHuman, prompt),
	}

	resp, err := b.llm.GenerateContent(ctx, content,
		llms.WithJSONMode(),
		llms.WithTemperature(b.config.Temperature),
		llms.WithMaxTokens(b.config.MaxTokens),
	)
	if err != nil {
		return "", types.NewError(types.KindBackendUnavailable, op, fmt.Errorf("chat error: %w", err))
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", types.NewError(types.KindSchemaViolation, op, errors.New("no response from LLM"))
	}

	choice := resp.Choices[0]
	switch strings.ToLower(choice.StopReason) {
	case "content_filter", "safety":
		return "", types.Errorf(types.KindContentPolicyRejection, op, "generation stopped: %s", choice.StopReason)
	}
	if strings.TrimSpace(choice.Content) == "" {
		return "", types.NewError(types.KindSchemaViolation, op, errors.New("empty completion"))
	}
	return choice.Content, nil
}

package llm

import (
	"fmt"

	"github.com/xhad/compligen/internal/types"
)

// NewBackend returns the structured completion backend for provider.
func NewBackend(provider string, config ChatConfig) (types.StructuredCompletionBackend, error) {
	switch provider {
	case "ollama":
		return NewOllamaBackend(config)
	case "openai":
		return NewOpenAIBackend(config)
	}
	return nil, fmt.Errorf("unknown LLM provider %q", provider)
}

// NewEmbedder returns the embedder for provider.
func NewEmbedder(provider string, config EmbedderConfig) (types.BatchEmbedder, error) {
	switch provider {
	case "ollama":
		return NewOllamaEmbedder(config)
	case "openai":
		return NewOpenAIEmbedder(config)
	}
	return nil, fmt.Errorf("unknown embedder provider %q", provider)
}

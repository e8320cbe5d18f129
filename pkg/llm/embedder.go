package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"
)

// EmbedderConfig represents the configuration for an embedder.
type EmbedderConfig struct {
	Model   string
	BaseURL string // Ollama server URL, or OpenAI-compatible base URL
	APIKey  string // OpenAI only
}

// embeddingClient is the part of *ollama.LLM the embedder needs.
type embeddingClient interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// OllamaEmbedder embeds text with an Ollama embedding model.
type OllamaEmbedder struct {
	config EmbedderConfig
	client embeddingClient
}

// NewOllamaEmbedder creates an embedder for the given configuration.
func NewOllamaEmbedder(config EmbedderConfig) (*OllamaEmbedder, error) {
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest" // Default Ollama model
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}

	emb, err := ollama.New(ollama.WithModel(config.Model), ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	return &OllamaEmbedder{config: config, client: emb}, nil
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding (%s): %w", e.config.Model, err)
	}
	if err := checkEmbeddings(vectors, len(texts)); err != nil {
		return nil, err
	}
	return vectors, nil
}

var errEmptyEmbedding = errors.New("embedding backend returned an empty vector")

func checkEmbeddings(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("embedding backend returned %d vectors for %d inputs", len(vectors), want)
	}
	for _, v := range vectors {
		if len(v) == 0 {
			return errEmptyEmbedding
		}
	}
	return nil
}

package types

import (
	"context"
	"encoding/json"

	"github.com/xhad/compligen/internal/models"
)

// Core interfaces
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder is implemented by embedders that can embed many texts in one
// round trip. Stores use it when indexing.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// CorpusStore indexes and queries the legislation/example corpus.
type CorpusStore interface {
	Index(ctx context.Context, chunks []models.Chunk) error
	Query(ctx context.Context, text string, k int, filter models.Filter) ([]models.Chunk, error)
	Close()
}

// StructuredCompletionBackend turns a prompt into raw JSON text intended to
// satisfy schema.
type StructuredCompletionBackend interface {
	Complete(ctx context.Context, prompt string, schema Schema) (string, error)
}

type Processor interface {
	Process(docs []models.Document) ([]models.ProcessedDocument, error)
}

// Schema is a named JSON Schema for one document type.
type Schema struct {
	Name        string
	Description string
	Definition  json.RawMessage
}

// MarshalJSON lets a Schema stand in wherever a json.Marshaler is expected.
func (s Schema) MarshalJSON() ([]byte, error) {
	if len(s.Definition) == 0 {
		return []byte("{}"), nil
	}
	return s.Definition, nil
}

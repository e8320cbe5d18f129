package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SourceKind tags what a corpus chunk was ingested from.
type SourceKind string

const (
	SourceLaw      SourceKind = "law"
	SourceExample  SourceKind = "example"
	SourceTemplate SourceKind = "template"
)

// ParseSourceKind accepts the three corpus kinds, case-insensitively.
func ParseSourceKind(s string) (SourceKind, error) {
	switch k := SourceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case SourceLaw, SourceExample, SourceTemplate:
		return k, nil
	}
	return "", fmt.Errorf("unknown doc_type %q (want law, example or template)", s)
}

// ChunkMetadata is the tag set stored alongside every corpus chunk.
type ChunkMetadata struct {
	Kind         SourceKind `json:"doc_type" yaml:"doc_type"`
	Jurisdiction string     `json:"jurisdiction" yaml:"jurisdiction"`
	PolicyType   string     `json:"policy_type,omitempty" yaml:"policy_type"`
	Regulation   string     `json:"regulation,omitempty" yaml:"regulation"`
	Company      string     `json:"company,omitempty" yaml:"company"`
	Source       string     `json:"source" yaml:"source"`
	Page         *int       `json:"page,omitempty" yaml:"page"`
}

// Chunk is one embedded unit of the corpus. Chunks are immutable once indexed.
type Chunk struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  ChunkMetadata
	// Score is the similarity assigned by a query; zero when not from a query.
	Score float32
}

// Filter restricts a corpus query by metadata. Zero fields match anything;
// PolicyTypes matches when the chunk's policy type equals any entry.
type Filter struct {
	Kind         SourceKind
	PolicyTypes  []string
	Jurisdiction string
}

// Match reports whether the metadata satisfies the filter.
func (f Filter) Match(m ChunkMetadata) bool {
	if f.Kind != "" && m.Kind != f.Kind {
		return false
	}
	if f.Jurisdiction != "" && !strings.EqualFold(f.Jurisdiction, m.Jurisdiction) {
		return false
	}
	if len(f.PolicyTypes) == 0 {
		return true
	}
	for _, pt := range f.PolicyTypes {
		if strings.EqualFold(pt, m.PolicyType) {
			return true
		}
	}
	return false
}

// ChunkID derives a stable id from the chunk's source and position, so
// re-indexing the same source overwrites instead of duplicating.
func ChunkID(source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", source, index))).String()
}

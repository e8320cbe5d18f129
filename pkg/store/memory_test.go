package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
)

// keywordEmbedder maps text onto counts of a fixed vocabulary, plus a bias
// dimension so no vector is all zeros.
type keywordEmbedder struct {
	err error
}

var vocabulary = []string{"privacy", "cookie", "consumer", "breach", "acceptable"}

func (e keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	text = strings.ToLower(text)
	v := make([]float32, len(vocabulary)+1)
	for i, w := range vocabulary {
		v[i] = float32(strings.Count(text, w))
	}
	v[len(vocabulary)] = 0.1
	return v, nil
}

func chunk(id, content string, kind models.SourceKind, policyType string) models.Chunk {
	return models.Chunk{
		ID:       id,
		Content:  content,
		Metadata: models.ChunkMetadata{Kind: kind, PolicyType: policyType, Jurisdiction: "AU", Source: id + ".txt"},
	}
}

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(keywordEmbedder{})
	require.NoError(t, s.Index(context.Background(), []models.Chunk{
		chunk("app1", "privacy principles privacy collection", models.SourceLaw, ""),
		chunk("acl", "consumer guarantees consumer law", models.SourceLaw, ""),
		chunk("ndb", "eligible data breach notification privacy", models.SourceLaw, ""),
		chunk("ex-cookie", "cookie banner cookie consent", models.SourceExample, "Cookie Policy"),
		chunk("ex-tou", "consumer terms of use", models.SourceExample, "Terms of use"),
	}))
	return s
}

func TestMemoryQueryRanksByCosine(t *testing.T) {
	s := seededStore(t)

	got, err := s.Query(context.Background(), "privacy", 2, models.Filter{Kind: models.SourceLaw})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "app1", got[0].ID)
	assert.Equal(t, "ndb", got[1].ID)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
}

func TestMemoryQueryAppliesFilter(t *testing.T) {
	s := seededStore(t)

	got, err := s.Query(context.Background(), "consumer", 8, models.Filter{
		Kind:        models.SourceExample,
		PolicyTypes: []string{"Terms of Service", "Terms of use"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ex-tou", got[0].ID)
}

func TestMemoryQueryNoMatchesIsEmptyNotError(t *testing.T) {
	s := seededStore(t)

	got, err := s.Query(context.Background(), "cookie", 6, models.Filter{Kind: models.SourceExample, PolicyTypes: []string{"Data Processing Agreement"}})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = s.Query(context.Background(), "cookie", 0, models.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryIndexIsIdempotentPerID(t *testing.T) {
	s := seededStore(t)
	require.Equal(t, 5, s.Len())

	updated := chunk("acl", "consumer guarantees cannot be excluded", models.SourceLaw, "")
	require.NoError(t, s.Index(context.Background(), []models.Chunk{updated}))
	assert.Equal(t, 5, s.Len())

	got, err := s.Query(context.Background(), "consumer", 1, models.Filter{Kind: models.SourceLaw})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "consumer guarantees cannot be excluded", got[0].Content)
}

func TestMemoryIndexRejectsDimensionMismatch(t *testing.T) {
	s := seededStore(t)
	bad := chunk("odd", "x", models.SourceLaw, "")
	bad.Embedding = []float32{1, 2}
	assert.Error(t, s.Index(context.Background(), []models.Chunk{bad}))
}

func TestMemoryEmbedderFailureIsRetrievalUnavailable(t *testing.T) {
	s := NewMemoryStore(keywordEmbedder{err: errors.New("connection refused")})

	_, err := s.Query(context.Background(), "privacy", 3, models.Filter{})
	assert.Equal(t, types.KindRetrievalUnavailable, types.KindOf(err))

	err = s.Index(context.Background(), []models.Chunk{chunk("a", "privacy", models.SourceLaw, "")})
	assert.Equal(t, types.KindRetrievalUnavailable, types.KindOf(err))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2}, []float32{2, 4}), 1e-6)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Equal(t, float32(0), cosine([]float32{0, 0}, []float32{1, 1}))
}

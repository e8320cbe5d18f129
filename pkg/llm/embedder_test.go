package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingClient struct {
	vectors [][]float32
	err     error
}

func (f fakeEmbeddingClient) CreateEmbedding(context.Context, []string) ([][]float32, error) {
	return f.vectors, f.err
}

func TestNewOllamaEmbedder(t *testing.T) {
	emb, err := NewOllamaEmbedder(EmbedderConfig{})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text:latest", emb.config.Model)
	assert.Equal(t, "http://localhost:11434", emb.config.BaseURL)
}

func TestOllamaEmbed(t *testing.T) {
	emb := &OllamaEmbedder{client: fakeEmbeddingClient{vectors: [][]float32{{0.1, 0.2}}}}
	v, err := emb.Embed(context.Background(), "consumer guarantees")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, v)

	emb = &OllamaEmbedder{client: fakeEmbeddingClient{err: errors.New("dial tcp: refused")}}
	_, err = emb.Embed(context.Background(), "x")
	assert.ErrorContains(t, err, "refused")

	emb = &OllamaEmbedder{client: fakeEmbeddingClient{vectors: [][]float32{{}}}}
	_, err = emb.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, errEmptyEmbedding)

	vs, err := emb.EmbedBatch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vs)
}

func TestOpenAIEmbedBatchOrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[
			{"object":"embedding","index":1,"embedding":[0.3,0.4]},
			{"object":"embedding","index":0,"embedding":[0.1,0.2]}]}`))
	}))
	defer srv.Close()

	emb, err := NewOpenAIEmbedder(EmbedderConfig{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	vs, err := emb.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, vs)
}

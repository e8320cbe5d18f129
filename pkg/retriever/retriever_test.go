package retriever

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
)

type stubStore struct {
	mu      sync.Mutex
	results map[models.SourceKind][]models.Chunk
	fail    map[models.SourceKind]error
	calls   []Query
}

func (s *stubStore) Index(context.Context, []models.Chunk) error { return nil }
func (s *stubStore) Close()                                      {}

func (s *stubStore) Query(_ context.Context, text string, k int, f models.Filter) ([]models.Chunk, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Query{Text: text, K: k, Filter: f})
	s.mu.Unlock()
	if err := s.fail[f.Kind]; err != nil {
		return nil, err
	}
	return s.results[f.Kind], nil
}

var plan = Plan{
	Legal:   Query{Text: "cookies tracking consent", K: 8, Filter: models.Filter{Kind: models.SourceLaw}},
	Example: Query{Text: "cookie policy saas", K: 6, Filter: models.Filter{Kind: models.SourceExample, PolicyTypes: []string{"Cookie Policy"}}},
}

func TestRetrieveJoinsInRankOrder(t *testing.T) {
	store := &stubStore{results: map[models.SourceKind][]models.Chunk{
		models.SourceLaw:     {{Content: "APP 5"}, {Content: "APP 6"}},
		models.SourceExample: {{Content: "We use cookies."}},
	}}

	got, err := New(store).Retrieve(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, "APP 5\n\n---\n\nAPP 6", got.Legal())
	assert.Equal(t, "We use cookies.", got.Examples())
	assert.Len(t, store.calls, 2)
	assert.ElementsMatch(t, []Query{plan.Legal, plan.Example}, store.calls)
}

func TestRetrieveZeroResultsIsNotAnError(t *testing.T) {
	got, err := New(&stubStore{}).Retrieve(context.Background(), plan)
	require.NoError(t, err)
	assert.Empty(t, got.Legal())
	assert.Empty(t, got.Examples())
}

func TestRetrieveFailsWhenEitherQueryFails(t *testing.T) {
	unavailable := types.NewError(types.KindRetrievalUnavailable, "store.query", errors.New("connection refused"))
	store := &stubStore{
		results: map[models.SourceKind][]models.Chunk{models.SourceLaw: {{Content: "APP 5"}}},
		fail:    map[models.SourceKind]error{models.SourceExample: unavailable},
	}

	got, err := New(store).Retrieve(context.Background(), plan)
	require.Error(t, err)
	assert.Equal(t, types.KindRetrievalUnavailable, types.KindOf(err))
	assert.Empty(t, got.LegalChunks)
}

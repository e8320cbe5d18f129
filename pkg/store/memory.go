package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
)

// MemoryStore is a CorpusStore using brute-force cosine similarity. It keeps
// insertion order so equal scores rank deterministically.
type MemoryStore struct {
	mu       sync.RWMutex
	embedder types.Embedder
	order    []string
	chunks   map[string]models.Chunk
}

func NewMemoryStore(embedder types.Embedder) *MemoryStore {
	return &MemoryStore{
		embedder: embedder,
		chunks:   make(map[string]models.Chunk),
	}
}

func (s *MemoryStore) Index(ctx context.Context, chunks []models.Chunk) error {
	batch := make([]models.Chunk, len(chunks))
	copy(batch, chunks)
	if err := ensureEmbeddings(ctx, s.embedder, batch); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range batch {
		if c.ID == "" {
			return errors.New("chunk id is required")
		}
		if dim := s.dimension(); dim > 0 && len(c.Embedding) != dim {
			return fmt.Errorf("chunk %s: vector dimension mismatch (%d != %d)", c.ID, len(c.Embedding), dim)
		}
		if _, ok := s.chunks[c.ID]; !ok {
			s.order = append(s.order, c.ID)
		}
		s.chunks[c.ID] = c
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, text string, k int, filter models.Filter) ([]models.Chunk, error) {
	if k <= 0 {
		return []models.Chunk{}, nil
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, types.NewError(types.KindRetrievalUnavailable, "store.query", fmt.Errorf("failed to embed query: %w", err))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.Chunk, 0, len(s.order))
	for _, id := range s.order {
		c := s.chunks[id]
		if !filter.Match(c.Metadata) {
			continue
		}
		c.Score = cosine(c.Embedding, vector)
		results = append(results, c)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Len reports how many chunks are indexed.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) dimension() int {
	if len(s.order) == 0 {
		return 0
	}
	return len(s.chunks[s.order[0]].Embedding)
}

func cosine(a, b []float32) float32 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

package retriever

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
)

// Separator joins chunk contents inside a context block.
const Separator = "\n\n---\n\n"

// Query is one similarity search against the corpus.
type Query struct {
	Text   string
	K      int
	Filter models.Filter
}

// Plan pairs the legislation query with the example-document query.
type Plan struct {
	Legal   Query
	Example Query
}

// Context is the retrieved material handed to the prompt assembler.
type Context struct {
	LegalChunks   []models.Chunk
	ExampleChunks []models.Chunk
}

// Legal joins the legal chunk contents in rank order.
func (c Context) Legal() string { return join(c.LegalChunks) }

// Examples joins the example chunk contents in rank order.
func (c Context) Examples() string { return join(c.ExampleChunks) }

func join(chunks []models.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, Separator)
}

type Retriever struct {
	store types.CorpusStore
}

func New(store types.CorpusStore) *Retriever {
	return &Retriever{store: store}
}

// Retrieve runs both queries of the plan concurrently. Zero results is not an
// error; a store failure fails the whole retrieval.
func (r *Retriever) Retrieve(ctx context.Context, plan Plan) (Context, error) {
	var out Context
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		chunks, err := r.store.Query(gctx, plan.Legal.Text, plan.Legal.K, plan.Legal.Filter)
		out.LegalChunks = chunks
		return err
	})
	g.Go(func() error {
		chunks, err := r.store.Query(gctx, plan.Example.Text, plan.Example.K, plan.Example.Filter)
		out.ExampleChunks = chunks
		return err
	})

	if err := g.Wait(); err != nil {
		return Context{}, err
	}
	return out, nil
}

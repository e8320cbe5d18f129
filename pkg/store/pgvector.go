package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
)

type VectorStoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
	BatchSize  int
}

// PGVectorStore is a CorpusStore backed by PostgreSQL with the pgvector
// extension.
type PGVectorStore struct {
	config   VectorStoreConfig
	pool     *pgxpool.Pool
	embedder types.Embedder
}

func NewPGVectorStore(ctx context.Context, config VectorStoreConfig, embedder types.Embedder) (*PGVectorStore, error) {
	if config.TableName == "" {
		config.TableName = "corpus_chunks"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768 // nomic-embed-text
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, types.NewError(types.KindRetrievalUnavailable, "store.connect", fmt.Errorf("failed to connect to database: %v", err))
	}

	vs := &PGVectorStore{
		config:   config,
		pool:     pool,
		embedder: embedder,
	}

	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, classifyPGError("store.initialize", err)
	}

	return vs, nil
}

func (vs *PGVectorStore) initialize(ctx context.Context) error {
	// Enable pgvector extension
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding vector(%d),
			doc_type TEXT NOT NULL DEFAULT '',
			jurisdiction TEXT NOT NULL DEFAULT '',
			policy_type TEXT NOT NULL DEFAULT '',
			regulation TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			page INTEGER
		)`, vs.config.TableName, vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	indexes := []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_embedding_idx
			ON %[1]s
			USING ivfflat (embedding vector_cosine_ops)
			WITH (lists = 100)`, vs.config.TableName),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_doc_type_idx ON %[1]s (doc_type, policy_type)`, vs.config.TableName),
	}
	for _, stmt := range indexes {
		if _, err := vs.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Index embeds chunks that have no embedding yet and upserts them by id, one
// transaction per batch.
func (vs *PGVectorStore) Index(ctx context.Context, chunks []models.Chunk) error {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, content, embedding, doc_type, jurisdiction, policy_type, regulation, company, source, page)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			doc_type = EXCLUDED.doc_type,
			jurisdiction = EXCLUDED.jurisdiction,
			policy_type = EXCLUDED.policy_type,
			regulation = EXCLUDED.regulation,
			company = EXCLUDED.company,
			source = EXCLUDED.source,
			page = EXCLUDED.page`,
		vs.config.TableName)

	for start := 0; start < len(chunks); start += vs.config.BatchSize {
		end := min(start+vs.config.BatchSize, len(chunks))
		group := make([]models.Chunk, end-start)
		copy(group, chunks[start:end])

		for i := range group {
			group[i].Content = sanitizeUTF8(group[i].Content)
		}
		if err := ensureEmbeddings(ctx, vs.embedder, group); err != nil {
			return err
		}
		for _, c := range group {
			if len(c.Embedding) != vs.config.VectorDim {
				return fmt.Errorf("chunk %s: embedding has %d dimensions, table expects %d", c.ID, len(c.Embedding), vs.config.VectorDim)
			}
		}

		if err := vs.storeBatch(ctx, stmt, group); err != nil {
			return classifyPGError("store.index", err)
		}
	}

	return nil
}

func (vs *PGVectorStore) storeBatch(ctx context.Context, stmt string, group []models.Chunk) error {
	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range group {
		m := c.Metadata
		batch.Queue(stmt,
			c.ID,
			c.Content,
			pgvector.NewVector(c.Embedding),
			string(m.Kind),
			m.Jurisdiction,
			m.PolicyType,
			m.Regulation,
			m.Company,
			m.Source,
			m.Page,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Query returns at most k chunks matching filter, nearest first by cosine
// distance.
func (vs *PGVectorStore) Query(ctx context.Context, text string, k int, filter models.Filter) ([]models.Chunk, error) {
	if k <= 0 {
		return []models.Chunk{}, nil
	}

	vector, err := vs.embedder.Embed(ctx, text)
	if err != nil {
		return nil, types.NewError(types.KindRetrievalUnavailable, "store.query", fmt.Errorf("failed to embed query: %w", err))
	}

	query, args := buildQuery(vs.config.TableName, pgvector.NewVector(vector), k, filter)
	rows, err := vs.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyPGError("store.query", fmt.Errorf("failed to query chunks: %w", err))
	}
	defer rows.Close()

	chunks := []models.Chunk{}
	for rows.Next() {
		var (
			c     models.Chunk
			kind  string
			score float64
		)
		err := rows.Scan(
			&c.ID,
			&c.Content,
			&kind,
			&c.Metadata.Jurisdiction,
			&c.Metadata.PolicyType,
			&c.Metadata.Regulation,
			&c.Metadata.Company,
			&c.Metadata.Source,
			&c.Metadata.Page,
			&score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		c.Metadata.Kind = models.SourceKind(kind)
		c.Score = float32(score)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPGError("store.query", err)
	}

	return chunks, nil
}

// buildQuery renders the filtered similarity query. $1 is the query vector and
// $2 the limit; filter arguments follow.
func buildQuery(table string, vector pgvector.Vector, k int, filter models.Filter) (string, []any) {
	args := []any{vector, k}
	var where []string

	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		where = append(where, fmt.Sprintf("doc_type = $%d", len(args)))
	}
	if len(filter.PolicyTypes) > 0 {
		lowered := make([]string, len(filter.PolicyTypes))
		for i, pt := range filter.PolicyTypes {
			lowered[i] = strings.ToLower(pt)
		}
		args = append(args, lowered)
		where = append(where, fmt.Sprintf("lower(policy_type) = ANY($%d)", len(args)))
	}
	if filter.Jurisdiction != "" {
		args = append(args, strings.ToLower(filter.Jurisdiction))
		where = append(where, fmt.Sprintf("lower(jurisdiction) = $%d", len(args)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT id, content, doc_type, jurisdiction, policy_type, regulation, company, source, page,
		1 - (embedding <=> $1) AS score
		FROM %s`, table)
	if len(where) > 0 {
		sb.WriteString("\n\t\tWHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString("\n\t\tORDER BY embedding <=> $1\n\t\tLIMIT $2")

	return sb.String(), args
}

func (vs *PGVectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

// classifyPGError keeps server-side SQL errors plain and reports everything
// else (dial, pool, timeout) as the corpus being unreachable.
func classifyPGError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var typed *types.Error
	if errors.As(err, &typed) {
		return err
	}
	return types.NewError(types.KindRetrievalUnavailable, op, err)
}

// ensureEmbeddings fills in missing embeddings, batching when the embedder
// supports it.
func ensureEmbeddings(ctx context.Context, embedder types.Embedder, chunks []models.Chunk) error {
	var missing []int
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if embedder == nil {
		return fmt.Errorf("%d chunks have no embedding and no embedder is configured", len(missing))
	}

	if batcher, ok := embedder.(types.BatchEmbedder); ok {
		texts := make([]string, len(missing))
		for j, i := range missing {
			texts[j] = chunks[i].Content
		}
		vectors, err := batcher.EmbedBatch(ctx, texts)
		if err != nil {
			return types.NewError(types.KindRetrievalUnavailable, "store.embed", fmt.Errorf("failed to create embeddings: %w", err))
		}
		for j, i := range missing {
			chunks[i].Embedding = vectors[j]
		}
		return nil
	}

	for _, i := range missing {
		v, err := embedder.Embed(ctx, chunks[i].Content)
		if err != nil {
			return types.NewError(types.KindRetrievalUnavailable, "store.embed", fmt.Errorf("failed to create embeddings: %w", err))
		}
		chunks[i].Embedding = v
	}
	return nil
}

func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

package main

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
	"github.com/xhad/compligen/pkg/scraper"
)

var (
	ingestKind         string
	ingestJurisdiction string
	ingestPolicyType   string
	ingestRegulation   string
	ingestCompany      string
	ingestMaxDepth     int
	ingestProbe        string
	ingestProbeK       int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path|url...]",
	Short: "Chunk and index corpus sources",
	Long: `Chunks legislation, example policies or templates and indexes them
into the corpus store with metadata. Arguments are local files, directories
or http(s) URLs; URLs are crawled on the same host up to --max-depth.

--probe runs a filtered query against the corpus after indexing (or on its
own when no sources are given) and prints the top chunks with timings.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestKind, "kind", "law", "source kind: law, example or template")
	ingestCmd.Flags().StringVar(&ingestJurisdiction, "jurisdiction", "", "jurisdiction tag (default corpus.jurisdiction)")
	ingestCmd.Flags().StringVar(&ingestPolicyType, "policy-type", "", `policy type tag for examples, e.g. "Privacy Policy"`)
	ingestCmd.Flags().StringVar(&ingestRegulation, "regulation", "", `regulation tag for law, e.g. "Privacy Act 1988 (Cth)"`)
	ingestCmd.Flags().StringVar(&ingestCompany, "company", "", "company an example policy belongs to")
	ingestCmd.Flags().IntVar(&ingestMaxDepth, "max-depth", 0, "crawl depth for URLs (default scraper.max_depth)")
	ingestCmd.Flags().StringVar(&ingestProbe, "probe", "", "query to run against the corpus")
	ingestCmd.Flags().IntVar(&ingestProbeK, "probe-k", 5, "number of chunks to show for --probe")
	rootCmd.AddCommand(ingestCmd)
}

func ingestMetadata() (models.ChunkMetadata, error) {
	kind, err := models.ParseSourceKind(ingestKind)
	if err != nil {
		return models.ChunkMetadata{}, types.NewError(types.KindInvalidRequest, "ingest", err)
	}
	jurisdiction := ingestJurisdiction
	if jurisdiction == "" && cfg != nil {
		jurisdiction = cfg.Corpus.Jurisdiction
	}
	return models.ChunkMetadata{
		Kind:         kind,
		Jurisdiction: jurisdiction,
		PolicyType:   ingestPolicyType,
		Regulation:   ingestRegulation,
		Company:      ingestCompany,
	}, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(args) == 0 && ingestProbe == "" {
		return types.Errorf(types.KindInvalidRequest, "ingest", "nothing to do: give sources or --probe")
	}
	meta, err := ingestMetadata()
	if err != nil {
		return err
	}
	if err := validateConfig(); err != nil {
		return err
	}

	corpus, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer corpus.Close()

	var urls, paths []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			urls = append(urls, arg)
		} else {
			paths = append(paths, arg)
		}
	}

	total := 0
	for _, u := range urls {
		docs, err := scrapeURL(ctx, u, meta)
		if err != nil {
			return err
		}
		n, err := indexDocuments(ctx, corpus, docs)
		if err != nil {
			return err
		}
		total += n
	}
	if len(paths) > 0 {
		n, err := ingestPaths(ctx, corpus, paths, meta)
		if err != nil {
			return err
		}
		total += n
	}
	if len(args) > 0 {
		color.Green("✓ Indexed %d chunks", total)
		log.Info("ingest complete", "chunks", total, "kind", meta.Kind)
	}

	if ingestProbe != "" {
		return probe(ctx, cmd, corpus, meta)
	}
	return nil
}

func scrapeURL(ctx context.Context, u string, meta models.ChunkMetadata) ([]models.Document, error) {
	depth := ingestMaxDepth
	if depth == 0 {
		depth = cfg.Scraper.MaxDepth
	}

	var pages int32
	s, err := scraper.NewWithConfig(scraper.ScraperConfig{
		BaseURL:           u,
		MaxDepth:          depth,
		RateLimit:         cfg.Scraper.RateLimit,
		IgnorePatterns:    cfg.Scraper.IgnorePatterns,
		AllowedExtensions: cfg.Scraper.AllowedExtensions,
		Metadata:          meta,
		Logger:            log,
		OnProgress: func(string) {
			atomic.AddInt32(&pages, 1)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scraper: %w", err)
	}

	color.Blue("Scraping %s", u)
	spinner := getSpinner(" Scraping pages...")
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				spinner.Describe(color.CyanString(" Scraping pages... (%d)", atomic.LoadInt32(&pages)))
				_ = spinner.Add(1)
			}
		}
	}()

	docs, err := s.Scrape(ctx, u)
	close(done)
	_ = spinner.Finish()
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %w", u, err)
	}
	color.Green("✓ Scraped %d pages", len(docs))
	return docs, nil
}

func ingestPaths(ctx context.Context, corpus types.CorpusStore, paths []string, meta models.ChunkMetadata) (int, error) {
	docs, err := loadSources(paths, meta)
	if err != nil {
		return 0, fmt.Errorf("failed to read sources: %w", err)
	}
	return indexDocuments(ctx, corpus, docs)
}

// indexDocuments chunks docs and indexes the chunks in batches of
// database.batch_size.
func indexDocuments(ctx context.Context, corpus types.CorpusStore, docs []models.Document) (int, error) {
	p := newProcessor(cfg)
	processed, err := p.Process(docs)
	if err != nil {
		return 0, fmt.Errorf("failed to process documents: %w", err)
	}

	var chunks []models.Chunk
	for _, doc := range processed {
		chunks = append(chunks, doc.ToChunks()...)
	}
	if len(chunks) == 0 {
		color.Yellow("No chunks produced from %d documents", len(docs))
		return 0, nil
	}

	bar := getProgressBar(len(chunks), " Indexing chunks")
	batchSize := cfg.Database.BatchSize
	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))
		if err := corpus.Index(ctx, chunks[i:end]); err != nil {
			_ = bar.Finish()
			return i, fmt.Errorf("failed to index batch: %w", err)
		}
		_ = bar.Add(end - i)
	}
	_ = bar.Finish()
	return len(chunks), nil
}

func probe(ctx context.Context, cmd *cobra.Command, corpus types.CorpusStore, meta models.ChunkMetadata) error {
	filter := models.Filter{
		Kind:         meta.Kind,
		Jurisdiction: meta.Jurisdiction,
	}
	if meta.PolicyType != "" {
		filter.PolicyTypes = []string{meta.PolicyType}
	}

	start := time.Now()
	chunks, err := corpus.Query(ctx, ingestProbe, ingestProbeK, filter)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %q: %d chunks in %s\n", color.CyanString("probe"), ingestProbe, len(chunks), elapsed.Round(time.Millisecond))
	for i, c := range chunks {
		fmt.Fprintf(out, "  [%d] %.3f %s %s", i+1, c.Score, c.Metadata.Kind, c.Metadata.Source)
		if c.Metadata.PolicyType != "" {
			fmt.Fprintf(out, " (%s)", c.Metadata.PolicyType)
		}
		if c.Metadata.Regulation != "" {
			fmt.Fprintf(out, " (%s)", c.Metadata.Regulation)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "      %s\n", snippet(c.Content, 120))
	}
	return nil
}

func snippet(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}

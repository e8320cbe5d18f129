package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
	cfgPkg "github.com/xhad/compligen/pkg/config"
	"github.com/xhad/compligen/pkg/llm"
	"github.com/xhad/compligen/pkg/postprocess"
	"github.com/xhad/compligen/pkg/processor"
	"github.com/xhad/compligen/pkg/scraper"
	"github.com/xhad/compligen/pkg/store"
)

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// openStore builds the embedder and the configured corpus store.
func openStore(ctx context.Context, c *cfgPkg.Config) (types.CorpusStore, error) {
	embedder, err := llm.NewEmbedder(c.Embedder.Provider, llm.EmbedderConfig{
		Model:   c.Embedder.Model,
		BaseURL: c.Embedder.BaseURL,
		APIKey:  c.LLM.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	switch c.Corpus.Backend {
	case cfgPkg.CorpusMemory:
		return store.NewMemoryStore(embedder), nil
	case cfgPkg.CorpusPGVector:
		vs, err := store.NewPGVectorStore(ctx, store.VectorStoreConfig{
			ConnString: c.Database.URL,
			TableName:  c.Database.TableName,
			VectorDim:  c.Database.VectorDim,
			BatchSize:  c.Database.BatchSize,
		}, embedder)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vector store: %w", err)
		}
		return vs, nil
	}
	return nil, fmt.Errorf("unknown corpus backend %q", c.Corpus.Backend)
}

func newBackend(c *cfgPkg.Config) (types.StructuredCompletionBackend, error) {
	backend, err := llm.NewBackend(c.LLM.Provider, llm.ChatConfig{
		Model:       c.LLM.Model,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		BaseURL:     c.LLM.BaseURL,
		APIKey:      c.LLM.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize backend: %w", err)
	}
	return backend, nil
}

func newProcessor(c *cfgPkg.Config) processor.Processor {
	return processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:      c.Processor.ChunkSize,
		ChunkOverlap:   c.Processor.ChunkOverlap,
		MinChunkLength: c.Processor.MinChunkLength,
		Boilerplate:    postprocess.DefaultBanned,
	})
}

// loadSources reads local corpus files. Directories are walked; .html and
// .htm files go through the HTML extractor, everything else is read as text.
func loadSources(paths []string, meta models.ChunkMetadata) ([]models.Document, error) {
	var docs []models.Document
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			doc, err := loadFile(path, meta)
			if err != nil {
				return err
			}
			if doc.Content != "" {
				docs = append(docs, doc)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func loadFile(path string, meta models.ChunkMetadata) (models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Document{}, err
	}
	defer f.Close()

	source := filepath.ToSlash(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return scraper.ParseHTML(f, source, meta)
	case ".txt", ".md", "":
	default:
		return models.Document{}, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return models.Document{}, err
	}
	meta.Source = source
	return models.Document{
		ID:       models.ChunkID(source, -1),
		URL:      source,
		Title:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Content:  string(data),
		Metadata: meta,
	}, nil
}

// exitCode maps error kinds to process exit codes: 2 for bad input, 3 when a
// collaborator is unavailable, 1 otherwise.
func exitCode(err error) int {
	switch types.KindOf(err) {
	case types.KindInvalidRequest:
		return 2
	case types.KindRetrievalUnavailable, types.KindBackendUnavailable:
		return 3
	}
	return 1
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
	cfgPkg "github.com/xhad/compligen/pkg/config"
	"github.com/xhad/compligen/pkg/policy"
)

var (
	generateInput   string
	generateOut     string
	generateCorpus  []string
	generateTimeout time.Duration
	generateSchema  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <type>",
	Short: "Generate a compliance document",
	Long: `Generates one document from a request file (YAML or JSON).

Types: privacy, tos, dpa, aup, cookie (or the full names such as
privacy_policy). The repaired document is written as JSON to --out or
stdout. With the memory corpus backend, --corpus loads local files into the
corpus before generating.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateInput, "input", "i", "-", "request file (YAML or JSON), - for stdin")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "output file (default stdout)")
	generateCmd.Flags().StringSliceVar(&generateCorpus, "corpus", nil, "files or directories to load into the memory corpus")
	generateCmd.Flags().DurationVar(&generateTimeout, "timeout", 0, "bound on one generation (default llm.timeout)")
	generateCmd.Flags().BoolVar(&generateSchema, "schema", false, "print the JSON Schema of the document type and exit")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dt, err := models.ParseDocumentType(args[0])
	if err != nil {
		return types.NewError(types.KindInvalidRequest, "generate", err)
	}
	if generateSchema {
		schema, err := policy.SchemaOf(dt)
		if err != nil {
			return err
		}
		return writeJSON(cmd, schema)
	}
	if err := validateConfig(); err != nil {
		return err
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}
	corpus, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer corpus.Close()

	timeout := generateTimeout
	if timeout == 0 {
		timeout = cfg.LLM.Timeout
	}
	svc, err := policy.NewService(corpus, backend, policy.Options{
		Logger:  log,
		Metrics: mtr,
		Timeout: timeout,
	})
	if err != nil {
		return err
	}

	raw, err := readInput(cmd, generateInput)
	if err != nil {
		return types.NewError(types.KindInvalidRequest, "generate", err)
	}

	if len(generateCorpus) > 0 {
		if cfg.Corpus.Backend != cfgPkg.CorpusMemory {
			return fmt.Errorf("--corpus needs the memory corpus backend (have %q)", cfg.Corpus.Backend)
		}
		if _, err := ingestPaths(ctx, corpus, generateCorpus, models.ChunkMetadata{
			Kind:         models.SourceLaw,
			Jurisdiction: cfg.Corpus.Jurisdiction,
		}); err != nil {
			return err
		}
	}

	spinner := getSpinner(fmt.Sprintf("Generating %s...", dt.Title()))
	doc, err := svc.Generate(ctx, dt, raw)
	_ = spinner.Finish()
	if err != nil {
		return err
	}

	if err := writeJSON(cmd, doc); err != nil {
		return err
	}
	if generateOut != "" {
		color.Green("✓ %s written to %s", dt.Title(), generateOut)
	}
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	data = append(data, '\n')

	if generateOut == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(generateOut, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", strings.TrimSpace(generateOut), err)
	}
	return nil
}

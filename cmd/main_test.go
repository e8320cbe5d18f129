package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configPath, metricsFile, logMode = "", "", ""
		generateInput, generateOut, generateSchema = "-", "", false
		ingestKind, ingestProbe = "law", ""
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("corpus:\n  backend: memory\n  jurisdiction: AU\nlog:\n  mode: prod\n"), 0o644))
	return path
}

func TestVersionCmd(t *testing.T) {
	original := version
	version = "test-version-1.0.0"
	defer func() { version = original }()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "compligen version test-version-1.0.0")
}

func TestGenerateSchema(t *testing.T) {
	out, err := execute(t, "generate", "cookie", "--schema", "--config", writeConfig(t))
	require.NoError(t, err)

	assert.True(t, json.Valid([]byte(out)))
	assert.Contains(t, out, "cookie_types")
	assert.Contains(t, out, "last_updated")
}

func TestGenerateUnknownType(t *testing.T) {
	_, err := execute(t, "generate", "nda", "--config", writeConfig(t))
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestGenerateInvalidRequest(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "request.yaml")
	require.NoError(t, os.WriteFile(input, []byte("company_name: Acme Pty Ltd\n"), 0o644))
	metricsPath := filepath.Join(dir, "compligen.prom")

	_, err := execute(t, "generate", "privacy", "--config", writeConfig(t), "-i", input, "--metrics-file", metricsPath)
	require.Error(t, err)
	assert.Equal(t, types.KindInvalidRequest, types.KindOf(err))
	assert.Equal(t, 2, exitCode(err))

	teardown()
	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `compligen_generations_total{doc_type="privacy_policy",outcome="invalid_request"} 1`)
}

func TestIngestNeedsWork(t *testing.T) {
	_, err := execute(t, "ingest", "--config", writeConfig(t))
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestIngestRejectsUnknownKind(t *testing.T) {
	_, err := execute(t, "ingest", "--config", writeConfig(t), "--kind", "blog", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown doc_type")
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app1.txt"), []byte("APP 1 requires an open and transparent privacy policy."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policy.html"), []byte("<html><head><title>Example</title></head><body><main>We collect names.</main></body></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.pdf"), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".cache"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cache", "old.txt"), []byte("stale"), 0o644))

	meta := models.ChunkMetadata{Kind: models.SourceLaw, Jurisdiction: "AU"}
	docs, err := loadSources([]string{dir}, meta)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byTitle := map[string]models.Document{}
	for _, d := range docs {
		byTitle[d.Title] = d
	}
	assert.Equal(t, "APP 1 requires an open and transparent privacy policy.", byTitle["app1"].Content)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "app1.txt")), byTitle["app1"].Metadata.Source)
	assert.Equal(t, "We collect names.", byTitle["Example"].Content)
	assert.Equal(t, models.SourceLaw, byTitle["Example"].Metadata.Kind)

	_, err = loadSources([]string{filepath.Join(dir, "missing")}, meta)
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 2, exitCode(types.NewError(types.KindInvalidRequest, "decode", errors.New("bad"))))
	assert.Equal(t, 3, exitCode(types.NewError(types.KindBackendUnavailable, "complete", errors.New("refused"))))
	assert.Equal(t, 1, exitCode(types.NewError(types.KindInvariantViolation, "repair", errors.New("too few sections"))))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short text", snippet("short\n  text", 20))
	assert.Equal(t, "abc...", snippet("abcdef", 3))
}

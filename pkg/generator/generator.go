package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xhad/compligen/internal/types"
)

// Generator turns a prompt into a schema-valid document. It never retries;
// retry policy belongs to the caller.
type Generator struct {
	backend  types.StructuredCompletionBackend
	validate *validator.Validate
}

func New(backend types.StructuredCompletionBackend) *Generator {
	return &Generator{
		backend:  backend,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Generate fills out, a pointer to a document struct, from the backend's
// completion for prompt.
func (g *Generator) Generate(ctx context.Context, prompt string, schema types.Schema, out any) error {
	raw, err := g.backend.Complete(ctx, prompt, schema)
	if err != nil {
		if types.KindOf(err) == "" {
			err = types.NewError(types.KindBackendUnavailable, "generate", err)
		}
		return err
	}
	return g.Decode(raw, out)
}

// Decode strictly decodes raw JSON into out and validates it. Any failure is
// a SchemaViolation.
func (g *Generator) Decode(raw string, out any) error {
	dec := json.NewDecoder(strings.NewReader(StripFences(raw)))
	dec.DisallowUnknownFields()

	if err := dec.Decode(out); err != nil {
		return types.NewError(types.KindSchemaViolation, "decode", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return types.NewError(types.KindSchemaViolation, "decode", errors.New("trailing data after JSON object"))
	}

	if err := g.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return types.NewError(types.KindSchemaViolation, "validate", fmt.Errorf("%d field(s) invalid: %w", len(verrs), err))
		}
		return types.NewError(types.KindSchemaViolation, "validate", err)
	}
	return nil
}

// StripFences removes a surrounding markdown code fence, which some models
// add even in JSON mode.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the info string, e.g. ```json
		if !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

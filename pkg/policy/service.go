package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/xhad/compligen/internal/logger"
	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
	"github.com/xhad/compligen/pkg/generator"
	"github.com/xhad/compligen/pkg/metrics"
	"github.com/xhad/compligen/pkg/postprocess"
	"github.com/xhad/compligen/pkg/prompt"
	"github.com/xhad/compligen/pkg/retriever"
)

// Options tunes a Service. The zero value is usable.
type Options struct {
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	// Timeout bounds one generation, retrieval included. Zero means no bound
	// beyond the caller's context.
	Timeout time.Duration
	// Template overrides prompt.DefaultTemplate.
	Template    string
	Postprocess postprocess.Config
	// Now is the clock used for last_updated.
	Now func() time.Time
}

// Service generates the five document types. It holds no per-request state
// and is safe for concurrent use.
type Service struct {
	retriever *retriever.Retriever
	assembler *prompt.Assembler
	generator *generator.Generator
	repairer  *postprocess.Processor
	validate  *validator.Validate
	schemas   map[models.DocumentType]types.Schema

	log     *logger.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time
}

func NewService(store types.CorpusStore, backend types.StructuredCompletionBackend, opts Options) (*Service, error) {
	if store == nil || backend == nil {
		return nil, errors.New("policy: store and backend are required")
	}

	s := &Service{
		retriever: retriever.New(store),
		assembler: prompt.New(),
		generator: generator.New(backend),
		repairer:  postprocess.New(opts.Postprocess),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		schemas:   make(map[models.DocumentType]types.Schema, len(models.DocumentTypes)),
		log:       opts.Logger,
		metrics:   opts.Metrics,
		timeout:   opts.Timeout,
		now:       opts.Now,
	}
	if opts.Template != "" {
		s.assembler = prompt.NewWithTemplate(opts.Template)
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}

	for _, doc := range emptyDocs() {
		schema, err := schemaOf(doc)
		if err != nil {
			return nil, err
		}
		s.schemas[doc.Type()] = schema
	}
	return s, nil
}

func emptyDocs() []models.StructuredDocument {
	return []models.StructuredDocument{
		privacyStrategy.newDoc(),
		termsStrategy.newDoc(),
		dpaStrategy.newDoc(),
		aupStrategy.newDoc(),
		cookieStrategy.newDoc(),
	}
}

func schemaOf(doc models.StructuredDocument) (types.Schema, error) {
	return generator.SchemaFor(doc, "A complete "+doc.Type().Title()+" for an Australian business")
}

// SchemaOf builds the output schema of dt without a Service.
func SchemaOf(dt models.DocumentType) (types.Schema, error) {
	for _, doc := range emptyDocs() {
		if doc.Type() == dt {
			return schemaOf(doc)
		}
	}
	return types.Schema{}, types.Errorf(types.KindInvalidRequest, "schema", "unknown document type %q", dt)
}

func (s *Service) GeneratePrivacyPolicy(ctx context.Context, req models.PrivacyPolicyRequest) (*models.PrivacyPolicy, error) {
	return generate(ctx, s, privacyStrategy, req)
}

func (s *Service) GenerateTermsOfService(ctx context.Context, req models.TermsOfServiceRequest) (*models.TermsOfService, error) {
	return generate(ctx, s, termsStrategy, req)
}

func (s *Service) GenerateDataProcessingAgreement(ctx context.Context, req models.DataProcessingAgreementRequest) (*models.DataProcessingAgreement, error) {
	return generate(ctx, s, dpaStrategy, req)
}

func (s *Service) GenerateAcceptableUsePolicy(ctx context.Context, req models.AcceptableUsePolicyRequest) (*models.AcceptableUsePolicy, error) {
	return generate(ctx, s, aupStrategy, req)
}

func (s *Service) GenerateCookiePolicy(ctx context.Context, req models.CookiePolicyRequest) (*models.CookiePolicy, error) {
	return generate(ctx, s, cookieStrategy, req)
}

// Generate decodes a YAML or JSON request of type dt and generates the
// document.
func (s *Service) Generate(ctx context.Context, dt models.DocumentType, raw []byte) (models.StructuredDocument, error) {
	switch dt {
	case models.PrivacyPolicyType:
		return dispatch(ctx, raw, dt, s.GeneratePrivacyPolicy)
	case models.TermsOfServiceType:
		return dispatch(ctx, raw, dt, s.GenerateTermsOfService)
	case models.DataProcessingAgreementType:
		return dispatch(ctx, raw, dt, s.GenerateDataProcessingAgreement)
	case models.AcceptableUsePolicyType:
		return dispatch(ctx, raw, dt, s.GenerateAcceptableUsePolicy)
	case models.CookiePolicyType:
		return dispatch(ctx, raw, dt, s.GenerateCookiePolicy)
	}
	return nil, types.Errorf(types.KindInvalidRequest, "generate", "unknown document type %q", dt)
}

func dispatch[R models.Request, D models.StructuredDocument](ctx context.Context, raw []byte, dt models.DocumentType, fn func(context.Context, R) (D, error)) (models.StructuredDocument, error) {
	var req R
	if err := DecodeRequest(raw, &req); err != nil {
		return nil, types.WithDocType(err, dt)
	}
	doc, err := fn(ctx, req)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeRequest strictly decodes a JSON object or YAML mapping into req.
// Unknown fields are rejected.
func DecodeRequest(raw []byte, req any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return types.Errorf(types.KindInvalidRequest, "decode", "empty request")
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			return types.NewError(types.KindInvalidRequest, "decode", err)
		}
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(trimmed))
	dec.KnownFields(true)
	if err := dec.Decode(req); err != nil && !errors.Is(err, io.EOF) {
		return types.NewError(types.KindInvalidRequest, "decode", err)
	}
	return nil
}

func generate[R models.Request, D models.StructuredDocument](ctx context.Context, s *Service, st strategy[R, D], req R) (D, error) {
	var zero D

	if err := s.validate.Struct(req); err != nil {
		err = types.WithDocType(types.NewError(types.KindInvalidRequest, "validate", err), st.docType)
		s.metrics.RecordOutcome(st.docType, err)
		return zero, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	r := newRun(st.docType, s.log, s.metrics)

	r.to(StateRetrieving)
	rc, err := s.retriever.Retrieve(ctx, st.retrieval(req))
	if err != nil {
		return zero, r.fail(err)
	}
	s.metrics.ObserveRetrieved(st.docType, string(models.SourceLaw), len(rc.LegalChunks))
	s.metrics.ObserveRetrieved(st.docType, string(models.SourceExample), len(rc.ExampleChunks))
	if len(rc.LegalChunks) == 0 && len(rc.ExampleChunks) == 0 {
		r.log.Warn("no context retrieved, generating without guidance")
	}

	r.to(StatePrompting)
	date := s.now().Format(time.DateOnly)
	company := req.CompanyInfo()
	text, err := s.assembler.Assemble(prompt.Input{
		Role:          st.role,
		DocumentTitle: st.docType.Title(),
		CompanyName:   company.CompanyName,
		Legal:         rc.Legal(),
		Examples:      rc.Examples(),
		Facts:         st.facts(req),
		Rules:         st.rules(req),
		SchemaName:    string(st.docType),
		Date:          date,
	})
	if err != nil {
		return zero, r.fail(err)
	}

	r.to(StateGenerating)
	doc := st.newDoc()
	if err := s.generator.Generate(ctx, text, s.schemas[st.docType], doc); err != nil {
		return zero, r.fail(err)
	}

	r.to(StateRepairing)
	if err := postprocess.Repair(s.repairer, doc, st.repairPlan(req, date)); err != nil {
		return zero, r.fail(err)
	}

	r.complete()
	return doc, nil
}

// Schema returns the output schema of dt.
func (s *Service) Schema(dt models.DocumentType) (types.Schema, error) {
	schema, ok := s.schemas[dt]
	if !ok {
		return types.Schema{}, fmt.Errorf("no schema for document type %q", dt)
	}
	return schema, nil
}

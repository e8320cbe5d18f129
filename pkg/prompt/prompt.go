package prompt

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/xhad/compligen/internal/models"
)

// Fact is one labelled company fact rendered into the prompt.
type Fact struct {
	Label string
	Value string
}

// FactGroup is a titled block of facts.
type FactGroup struct {
	Title string
	Facts []Fact
}

// Rules is the rule block of a document type.
type Rules struct {
	MandatorySections []string
	// Forbidden lists phrasings that must never appear in the output.
	Forbidden []string
	// ExactlyOnce lists clauses that must appear verbatim exactly once.
	ExactlyOnce []string
	// Instructions are drafting rules, mostly resolved from the request.
	Instructions []string
	MinSections  int
}

// Input is everything one prompt is rendered from.
type Input struct {
	Role          string
	DocumentTitle string
	CompanyName   string
	Legal         string
	Examples      string
	Facts         []FactGroup
	Rules         Rules
	SchemaName    string
	Date          string
}

// DefaultTemplate is the Go template every document type renders through.
const DefaultTemplate = `{{.role}}

=== LEGAL REQUIREMENTS (GUIDANCE ONLY) ===
Use these excerpts as guidance only. Do not copy licensing notices, attributions or unrelated text.

{{.legal_context}}

=== INDUSTRY EXAMPLES (GUIDANCE ONLY) ===
Use these excerpts for structure and tone only. Never copy another company's facts.

{{.example_context}}

=== COMPANY INFORMATION ===
{{range .facts}}
{{.Title}}:
{{range .Facts}}- {{.Label}}: {{.Value}}
{{end}}{{end}}
=== RULES ===
- Use only the company information above. Do not invent company facts. Where a fact is "{{.not_specified}}", use compliant generic wording instead of guessing.
- Use Australian English spelling and plain, accessible language.
- Every string is plain text: no markdown, no bullet characters, no line breaks.
{{- if .forbidden}}
- Never write any of the following: {{.forbidden}}.
{{- end}}
{{- range .exactly_once}}
- Include this sentence verbatim exactly once: "{{.}}"
{{- end}}
{{- range .instructions}}
- {{.}}
{{- end}}

=== MANDATORY SECTIONS ===
{{range .sections}}{{.}}
{{end}}
Produce at least {{.min_sections}} sections, numbered from 1 without gaps.

=== OUTPUT ===
Return the complete {{.title}} for {{.company_name}} as one JSON object matching the {{.schema_name}} schema.
Set last_updated to {{.date}}.
`

type Assembler struct {
	template prompts.PromptTemplate
}

// New returns an assembler using DefaultTemplate.
func New() *Assembler {
	return NewWithTemplate(DefaultTemplate)
}

func NewWithTemplate(tmpl string) *Assembler {
	pt := prompts.NewPromptTemplate(tmpl, []string{
		"role", "legal_context", "example_context", "facts", "not_specified",
		"forbidden", "exactly_once", "instructions", "sections", "min_sections",
		"title", "company_name", "schema_name", "date",
	})
	pt.TemplateFormat = prompts.TemplateFormatGoTemplate
	return &Assembler{template: pt}
}

// Assemble renders the prompt. It is pure: the same input always yields the
// same string.
func (a *Assembler) Assemble(in Input) (string, error) {
	facts := make([]FactGroup, len(in.Facts))
	for i, g := range in.Facts {
		group := FactGroup{Title: g.Title, Facts: make([]Fact, len(g.Facts))}
		for j, f := range g.Facts {
			group.Facts[j] = Fact{Label: f.Label, Value: models.Answer(f.Value)}
		}
		facts[i] = group
	}

	sections := make([]string, len(in.Rules.MandatorySections))
	for i, s := range in.Rules.MandatorySections {
		sections[i] = fmt.Sprintf("%d. %s", i+1, s)
	}

	out, err := a.template.Format(map[string]any{
		"role":            in.Role,
		"legal_context":   models.Answer(in.Legal),
		"example_context": models.Answer(in.Examples),
		"facts":           facts,
		"not_specified":   models.NotSpecified,
		"forbidden":       strings.Join(in.Rules.Forbidden, "; "),
		"exactly_once":    in.Rules.ExactlyOnce,
		"instructions":    in.Rules.Instructions,
		"sections":        sections,
		"min_sections":    in.Rules.MinSections,
		"title":           in.DocumentTitle,
		"company_name":    in.CompanyName,
		"schema_name":     in.SchemaName,
		"date":            in.Date,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return out, nil
}

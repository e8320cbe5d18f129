package policy

import (
	"strings"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/pkg/postprocess"
	"github.com/xhad/compligen/pkg/prompt"
	"github.com/xhad/compligen/pkg/retriever"
)

// ACLClause is the consumer-guarantee sentence every Terms of Service must
// carry verbatim, exactly once.
const ACLClause = "Nothing in these Terms excludes, restricts or modifies rights under the Australian Consumer Law."

// commonForbidden are phrasings no document may contain.
var commonForbidden = []string{
	"[insert", "[number", "TBD", "to be confirmed",
	"Creative Commons", "Commonwealth of Australia", "Source: Licensed from",
}

// jurisdictionRule applies to every document type; retrieved examples are
// often drafted for other jurisdictions.
const jurisdictionRule = "Cite only Australian law such as the Privacy Act 1988 (Cth), the Australian Privacy Principles and the Australian Consumer Law. Do not cite non-Australian legislation such as GDPR articles or the CCPA as the governing framework."

// strategy is the read-only configuration of one document type. Every
// function must be pure.
type strategy[R models.Request, D models.StructuredDocument] struct {
	docType     models.DocumentType
	role        string
	minSections int
	sections    []string
	clauses     []string
	newDoc      func() D

	retrieval    func(req R) retriever.Plan
	facts        func(req R) []prompt.FactGroup
	instructions func(req R) []string
	repair       func(req R, plan *postprocess.Plan[D])
}

func (s strategy[R, D]) rules(req R) prompt.Rules {
	r := prompt.Rules{
		MandatorySections: s.sections,
		Forbidden:         commonForbidden,
		ExactlyOnce:       s.clauses,
		MinSections:       s.minSections,
		Instructions:      []string{jurisdictionRule},
	}
	if s.instructions != nil {
		r.Instructions = append(r.Instructions, s.instructions(req)...)
	}
	return r
}

// repairPlan builds the post-processing plan for req. The header always comes
// from the request.
func (s strategy[R, D]) repairPlan(req R, date string) postprocess.Plan[D] {
	plan := postprocess.Plan[D]{
		Header:      postprocess.Header(req.CompanyInfo(), date),
		MinSections: s.minSections,
	}
	if s.repair != nil {
		s.repair(req, &plan)
	}
	return plan
}

// withFlags appends the fragment of every true flag to base, in order.
func withFlags(base string, flags ...flag) string {
	var b strings.Builder
	b.WriteString(base)
	for _, f := range flags {
		if f.on {
			b.WriteString(" ")
			b.WriteString(f.fragment)
		}
	}
	return b.String()
}

type flag struct {
	on       bool
	fragment string
}

func lawFilter() models.Filter {
	return models.Filter{Kind: models.SourceLaw}
}

func exampleFilter(policyTypes ...string) models.Filter {
	return models.Filter{Kind: models.SourceExample, PolicyTypes: policyTypes}
}

func companyFacts(c models.Company) prompt.FactGroup {
	return prompt.FactGroup{
		Title: "Company Details",
		Facts: []prompt.Fact{
			{Label: "Company Name", Value: c.CompanyName},
			{Label: "Business Description", Value: c.BusinessDescription},
			{Label: "Industry", Value: c.Industry},
			{Label: "Company Size", Value: c.CompanySize},
			{Label: "Location", Value: c.Location},
			{Label: "Website", Value: c.Website},
			{Label: "Contact Email", Value: c.ContactEmail},
			{Label: "Phone", Value: models.OptionalAnswer(c.Phone())},
			{Label: "Customer Type", Value: c.CustomerType},
		},
	}
}

// specified returns the trimmed value as a one-item list, or nil when it is
// blank or the sentinel.
func specified(s string) []string {
	if !models.IsSpecified(s) {
		return nil
	}
	return []string{strings.TrimSpace(s)}
}

func splitSemicolons(s string) []string {
	return postprocess.SplitList(s, ";")
}

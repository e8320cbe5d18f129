// Package postprocess repairs generated documents into their final form.
//
// Repair is pure and idempotent: running it on its own output changes
// nothing. It never consults the model or the corpus.
package postprocess

import (
	"reflect"
	"sort"
	"strings"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
)

// DefaultBanned are licensing and attribution fragments that leak in from
// retrieved legislation and must never reach a document.
var DefaultBanned = []string{
	"Creative Commons",
	"Commonwealth of Australia",
	"Source: Licensed from",
}

// DefaultPlaceholders mark template residue. A sentence containing one is
// dropped.
var DefaultPlaceholders = []string{
	"[insert",
	"[number",
	"TBD",
	"to be confirmed",
}

// Rule mutates one document field. Rules must be idempotent.
type Rule[D models.StructuredDocument] func(doc D)

// Clause is text that must appear verbatim exactly once, in its home field.
type Clause[D models.StructuredDocument] struct {
	Text string
	Home func(doc D) *string
}

// Plan is the per-request repair recipe a strategy hands to Repair.
type Plan[D models.StructuredDocument] struct {
	Header models.Header

	// Normalise rules run unconditionally, Backfill rules only fill what the
	// model left empty. Both run after the first leaf pass.
	Normalise []Rule[D]
	Backfill  []Rule[D]

	// DropSentences lists phrases whose sentences are removed for this
	// request, e.g. "18+" when no age gating applies.
	DropSentences []string

	Clause      *Clause[D]
	MinSections int
}

// Config holds the phrases every document is scrubbed of.
type Config struct {
	Banned       []string
	Placeholders []string
}

// Processor applies plans. It is safe for concurrent use.
type Processor struct {
	banned       []string
	placeholders []string
}

func New(cfg Config) *Processor {
	if cfg.Banned == nil {
		cfg.Banned = DefaultBanned
	}
	if cfg.Placeholders == nil {
		cfg.Placeholders = DefaultPlaceholders
	}
	return &Processor{
		banned:       append([]string(nil), cfg.Banned...),
		placeholders: append([]string(nil), cfg.Placeholders...),
	}
}

// Repair rewrites doc in place according to plan and checks the document
// invariants. A violated invariant is returned as an InvariantViolation; doc
// must then be discarded.
func Repair[D models.StructuredDocument](p *Processor, doc D, plan Plan[D]) error {
	header := plan.Header
	if header.PhoneNumber != nil {
		phone := *header.PhoneNumber
		header.PhoneNumber = &phone
	}
	*doc.HeaderRef() = header
	p.scrubHeader(doc.HeaderRef())

	root := reflect.ValueOf(doc).Elem()
	drop := append(append([]string(nil), p.placeholders...), plan.DropSentences...)
	clean := func(s string) (string, bool) { return p.cleanLeaf(s, drop) }

	walk(root, nil, clean)
	for _, rule := range plan.Normalise {
		rule(doc)
	}
	for _, rule := range plan.Backfill {
		rule(doc)
	}
	walk(root, nil, clean)

	if plan.Clause != nil {
		enforceOnce(doc, plan.Clause)
	}

	repairSections(doc.SectionsRef())

	return check(p, doc, plan)
}

// cleanLeaf runs the leaf rewrites until nothing changes.
func (p *Processor) cleanLeaf(s string, drop []string) (string, bool) {
	for {
		prev := s
		s = removeAll(s, p.banned)
		s = sanitize(s)
		s = dropSentences(s, drop)
		s = sanitize(s)
		if s == prev {
			break
		}
	}
	if isBlank(s) {
		return "", false
	}
	return s, true
}

// scrubHeader removes banned phrases from the caller-supplied header. Header
// values are not prose, so placeholders and sentence rules do not apply.
func (p *Processor) scrubHeader(h *models.Header) {
	walk(reflect.ValueOf(h).Elem(), nil, func(s string) (string, bool) {
		if removeAll(s, p.banned) == s {
			return s, true
		}
		s = strings.Join(strings.Fields(removeAll(s, p.banned)), " ")
		return s, !isBlank(s)
	})
}

func enforceOnce[D models.StructuredDocument](doc D, clause *Clause[D]) {
	home := clause.Home(doc)
	walk(reflect.ValueOf(doc).Elem(), map[*string]bool{home: true}, func(s string) (string, bool) {
		if !strings.Contains(s, clause.Text) {
			return s, true
		}
		s = sanitize(strings.ReplaceAll(s, clause.Text, ""))
		return s, !isBlank(s)
	})
	*home = clause.Text
}

// repairSections drops sections without content, orders them stably by
// section number, and renumbers them densely from 1.
func repairSections(sections *[]models.Section) {
	kept := make([]models.Section, 0, len(*sections))
	for _, s := range *sections {
		if len(s.Content) > 0 {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].SectionNumber < kept[j].SectionNumber
	})
	for i := range kept {
		kept[i].SectionNumber = i + 1
	}
	*sections = kept
}

func check[D models.StructuredDocument](p *Processor, doc D, plan Plan[D]) error {
	fail := func(format string, args ...any) error {
		return types.WithDocType(types.Errorf(types.KindInvariantViolation, "repair", format, args...), doc.Type())
	}

	sections := *doc.SectionsRef()
	if len(sections) < plan.MinSections {
		return fail("%d sections, need at least %d", len(sections), plan.MinSections)
	}
	for i, s := range sections {
		if s.SectionNumber != i+1 {
			return fail("section %d is numbered %d", i+1, s.SectionNumber)
		}
	}

	all := leaves(doc)
	if plan.Clause != nil {
		n := 0
		for _, s := range all {
			n += strings.Count(s, plan.Clause.Text)
		}
		if n != 1 {
			return fail("clause %q appears %d times", plan.Clause.Text, n)
		}
	}
	for _, s := range append(leaves(doc.HeaderRef()), all...) {
		for _, b := range p.banned {
			if strings.Contains(s, b) {
				return fail("banned phrase %q present", b)
			}
		}
	}
	for _, s := range all {
		for _, ph := range p.placeholders {
			if containsFold(s, ph) {
				return fail("placeholder %q present", ph)
			}
		}
	}
	return nil
}

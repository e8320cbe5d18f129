package postprocess

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/internal/types"
)

const aclClause = "Nothing in these Terms excludes, restricts or modifies rights under the Australian Consumer Law."

func strp(s string) *string { return &s }

func testHeader() models.Header {
	return Header(models.Company{
		CompanyName:  "Acme Pty Ltd",
		Website:      "https://acme.example",
		ContactEmail: "a@acme.com",
		PhoneNumber:  strp("Not specified"),
	}, "2025-03-01")
}

func sections(n int) []models.Section {
	out := make([]models.Section, n)
	for i := range out {
		out[i] = models.Section{
			SectionNumber: n - i,
			Heading:       fmt.Sprintf("Heading %d", n-i),
			Content:       []string{fmt.Sprintf("Body %d.", n-i)},
		}
	}
	return out
}

func tosPlan() Plan[*models.TermsOfService] {
	return Plan[*models.TermsOfService]{
		Header: testHeader(),
		Normalise: []Rule[*models.TermsOfService]{
			ClearList(func(d *models.TermsOfService) *[]string { return &d.FreeTrialTerms }),
		},
		Backfill: []Rule[*models.TermsOfService]{
			FillList(func(d *models.TermsOfService) *[]string { return &d.PaymentTerms },
				"Accepted payment methods are displayed at checkout."),
			FillString(func(d *models.TermsOfService) *string { return &d.GoverningLaw }, "Victoria, Australia"),
		},
		DropSentences: []string{"18+"},
		Clause: &Clause[*models.TermsOfService]{
			Text: aclClause,
			Home: func(d *models.TermsOfService) *string { return &d.ACLStatement },
		},
		MinSections: 3,
	}
}

func messyToS() *models.TermsOfService {
	doc := &models.TermsOfService{
		Header: models.Header{CompanyName: "Hallucinated Corp", LastUpdated: "1999-01-01", PhoneNumber: strp("555")},
		ServiceDescription: []string{
			"- Acme provides\nbookkeeping software.",
			"  ",
			"Not specified",
		},
		FreeTrialTerms:          []string{"Enjoy a 30 day free trial."},
		EligibilityRequirements: []string{"You must be 18+ to use the service. You must accept these Terms."},
		ConsumerGuarantees:      []string{"Our services come with guarantees. " + aclClause},
		GoverningLaw:            "Not specified",
		IntellectualProperty:    []string{"Content © Commonwealth of Australia is reused under Creative Commons licensing."},
		SupportTerms:            []string{"Support hours are [insert hours]. Email us any time."},
		Sections: append(sections(3),
			models.Section{SectionNumber: 2, Heading: "Empty", Content: []string{"  ", "Not specified"}},
			models.Section{SectionNumber: 9, Heading: "# Consumer Law", Content: []string{"* " + aclClause}},
		),
	}
	return doc
}

func TestRepairCanonicalisesHeader(t *testing.T) {
	doc := messyToS()
	require.NoError(t, Repair(New(Config{}), doc, tosPlan()))

	assert.Equal(t, "Acme Pty Ltd", doc.CompanyName)
	assert.Equal(t, "2025-03-01", doc.LastUpdated)
	assert.Equal(t, "https://acme.example", doc.WebsiteURL)
	assert.Equal(t, "a@acme.com", doc.ContactEmail)
	assert.Nil(t, doc.PhoneNumber)
}

func TestRepairScrubsHeader(t *testing.T) {
	plan := tosPlan()
	plan.Header.CompanyName = "Acme Creative Commons Pty Ltd"
	plan.Header.WebsiteURL = "https://acme.example"
	plan.Header.PhoneNumber = strp("Commonwealth of Australia")

	doc := messyToS()
	require.NoError(t, Repair(New(Config{}), doc, plan))

	assert.Equal(t, "Acme Pty Ltd", doc.CompanyName)
	assert.Equal(t, "https://acme.example", doc.WebsiteURL)
	assert.Nil(t, doc.PhoneNumber)
	assert.Equal(t, "Commonwealth of Australia", *plan.Header.PhoneNumber, "plan header is not mutated")
}

func TestRepairNormalisesLeaves(t *testing.T) {
	doc := messyToS()
	require.NoError(t, Repair(New(Config{}), doc, tosPlan()))

	assert.Equal(t, []string{"Acme provides bookkeeping software."}, doc.ServiceDescription)
	assert.Equal(t, []string{"You must accept these Terms."}, doc.EligibilityRequirements)
	assert.Equal(t, []string{"Content © is reused under licensing."}, doc.IntellectualProperty)
	assert.Equal(t, []string{"Email us any time."}, doc.SupportTerms)
	assert.Empty(t, doc.FreeTrialTerms)
	assert.Equal(t, "Victoria, Australia", doc.GoverningLaw)
	assert.Equal(t, []string{"Accepted payment methods are displayed at checkout."}, doc.PaymentTerms)
}

func TestRepairEnforcesClauseOnce(t *testing.T) {
	doc := messyToS()
	require.NoError(t, Repair(New(Config{}), doc, tosPlan()))

	assert.Equal(t, aclClause, doc.ACLStatement)
	assert.Equal(t, []string{"Our services come with guarantees."}, doc.ConsumerGuarantees)

	n := 0
	for _, s := range leaves(doc) {
		n += strings.Count(s, aclClause)
	}
	assert.Equal(t, 1, n)
}

func TestRepairRenumbersSections(t *testing.T) {
	doc := messyToS()
	require.NoError(t, Repair(New(Config{}), doc, tosPlan()))

	// "Empty" and the clause-only section are gone; the rest are sorted.
	require.Len(t, doc.Sections, 3)
	for i, s := range doc.Sections {
		assert.Equal(t, i+1, s.SectionNumber)
		assert.Equal(t, fmt.Sprintf("Heading %d", i+1), s.Heading)
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	p := New(Config{})
	doc := messyToS()
	require.NoError(t, Repair(p, doc, tosPlan()))
	first, err := json.Marshal(doc)
	require.NoError(t, err)

	require.NoError(t, Repair(p, doc, tosPlan()))
	second, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
}

func TestRepairNeverFabricates(t *testing.T) {
	plan := tosPlan()
	plan.Backfill = []Rule[*models.TermsOfService]{
		FillString(func(d *models.TermsOfService) *string { return &d.GoverningLaw }, "Not specified"),
		FillList(func(d *models.TermsOfService) *[]string { return &d.RefundPolicy }, "", "  "),
	}
	doc := messyToS()
	require.NoError(t, Repair(New(Config{}), doc, plan))

	assert.Empty(t, doc.GoverningLaw)
	assert.Empty(t, doc.RefundPolicy)
}

func TestRepairTooFewSections(t *testing.T) {
	plan := tosPlan()
	plan.MinSections = 18

	err := Repair(New(Config{}), messyToS(), plan)
	require.Error(t, err)
	assert.Equal(t, types.KindInvariantViolation, types.KindOf(err))
	assert.Contains(t, err.Error(), "terms_of_service")
}

func TestRepairWithoutClause(t *testing.T) {
	doc := &models.AcceptableUsePolicy{
		ProhibitedActivities: []string{"Spam. Users must be 18+ to post."},
		Sections:             sections(2),
	}
	plan := Plan[*models.AcceptableUsePolicy]{Header: testHeader(), MinSections: 2}
	require.NoError(t, Repair(New(Config{}), doc, plan))

	// Age wording is kept when the plan does not ask for it to go.
	assert.Equal(t, []string{"Spam. Users must be 18+ to post."}, doc.ProhibitedActivities)
}

func TestCustomBannedPhrases(t *testing.T) {
	doc := &models.CookiePolicy{
		Introduction: []string{"We use cookies. Licensed by ExampleCorp."},
		Sections:     sections(1),
		ThirdPartyServices: []models.ThirdPartyService{
			{ServiceName: "Google Analytics", OptOutLink: strp("Not specified")},
		},
	}
	p := New(Config{Banned: []string{"Licensed by ExampleCorp."}})
	require.NoError(t, Repair(p, doc, Plan[*models.CookiePolicy]{Header: testHeader(), MinSections: 1}))

	assert.Equal(t, []string{"We use cookies."}, doc.Introduction)
	assert.Nil(t, doc.ThirdPartyServices[0].OptOutLink)
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"- item":             "item",
		"- - nested":         "nested",
		"## Heading":         "Heading",
		"• bullet\n\ttext":   "bullet text",
		"+ plus":             "plus",
		"#hashtag":           "#hashtag",
		"a\n\nb   c":         "a b c",
		"  * star  ":         "star",
		"-not a bullet":      "-not a bullet",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitize(in), in)
	}
}

func TestDropSentences(t *testing.T) {
	assert.Equal(t, "Keep this. And this!", dropSentences("Keep this. Users 18+ only. And this!", []string{"18+"}))
	assert.Equal(t, "", dropSentences("Hours TBD.", []string{"tbd"}))
	assert.Equal(t, "Untouched", dropSentences("Untouched", nil))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Spam", "Malware", "Fraud"}, SplitList(" Spam; Malware,Fraud ;; Not specified", ",;"))
	assert.Empty(t, SplitList("", ";"))
}

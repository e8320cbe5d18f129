package policy

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/pkg/postprocess"
)

// messySections returns n+1 sections out of order, one of them empty and one
// carrying markdown and template residue.
func messySections(n int) []models.Section {
	out := numbered(n)
	slices.Reverse(out)
	out[0].Content = append(out[0].Content, "- Further detail\n  follows. Contact us at [insert email].")
	return append(out, models.Section{SectionNumber: 2, Heading: "Empty", Content: []string{" ", models.NotSpecified}})
}

// repairTwice repairs doc with the plan of st and checks that a second pass
// changes nothing.
func repairTwice[R models.Request, D models.StructuredDocument](t *testing.T, st strategy[R, D], req R, doc D) {
	t.Helper()
	p := postprocess.New(postprocess.Config{})

	require.NoError(t, postprocess.Repair(p, doc, st.repairPlan(req, "2025-03-01")))
	once, err := json.Marshal(doc)
	require.NoError(t, err)

	require.NoError(t, postprocess.Repair(p, doc, st.repairPlan(req, "2025-03-01")))
	twice, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.JSONEq(t, string(once), string(twice))
	assert.NotContains(t, string(once), "[insert")
}

func TestRepairIsIdempotentForEveryType(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{"privacy", func(t *testing.T) {
			doc := &models.PrivacyPolicy{
				Header:        hallucinated(),
				Introduction:  []string{"Source: Licensed from the Commonwealth. We respect your privacy."},
				Sections:      messySections(privacyStrategy.minSections),
				APPsAddressed: []int{1, 5},
			}
			repairTwice(t, privacyStrategy, models.PrivacyPolicyRequest{Company: acme(), MarketingPurpose: true}, doc)
			assert.Equal(t, oaicContact, doc.OAICContact)
		}},
		{"terms", func(t *testing.T) {
			d := termsDocWithClause(3)
			d.FreeTrialTerms = []string{"Enjoy a free 14 day trial."}
			d.EligibilityRequirements = []string{"You must be 18+ to subscribe. You must provide accurate details."}
			d.Sections = append(d.Sections, models.Section{SectionNumber: 4, Heading: "Blank", Content: []string{"TBD"}})
			repairTwice(t, termsStrategy, termsRequest(), &d)
			assert.Equal(t, ACLClause, d.ACLStatement)
			assert.Empty(t, d.FreeTrialTerms)
		}},
		{"dpa annexes", func(t *testing.T) {
			doc := &models.DataProcessingAgreement{
				Header:   hallucinated(),
				Sections: messySections(dpaStrategy.minSections),
			}
			repairTwice(t, dpaStrategy, dpaRequest(), doc)
			assert.Len(t, doc.Definitions.Terms, 10)
			assert.Len(t, doc.AnnexA.SubProcessors, 2)
			assert.NotEmpty(t, doc.AnnexA.Duration)
		}},
		{"aup", func(t *testing.T) {
			d := aupDocWith18Plus()
			req := models.AcceptableUsePolicyRequest{
				Company:               acme(),
				ChildrenUnder18Served: "Yes",
				PermittedUsageTypes:   "Commercial analytics; internal reporting",
			}
			repairTwice(t, aupStrategy, req, &d)
			assert.Equal(t, []string{"Commercial analytics", "internal reporting"}, d.PermittedUsageTypes)
		}},
		{"cookie tables", func(t *testing.T) {
			doc := &models.CookiePolicy{
				Header:   hallucinated(),
				Sections: messySections(cookieStrategy.minSections),
			}
			req := models.CookiePolicyRequest{
				Company:            acme(),
				EssentialCookies:   true,
				AnalyticsCookies:   true,
				ThirdPartyServices: "Google Analytics; Hotjar",
			}
			repairTwice(t, cookieStrategy, req, doc)
			assert.Len(t, doc.BrowserInstructions, 4)
			require.Len(t, doc.ThirdPartyServices, 2)
			assert.NotNil(t, doc.ThirdPartyServices[0].OptOutLink)
			assert.Nil(t, doc.ThirdPartyServices[1].OptOutLink)
		}},
		{"cookie model services", func(t *testing.T) {
			doc := &models.CookiePolicy{
				Header: hallucinated(),
				ThirdPartyServices: []models.ThirdPartyService{
					{ServiceName: "Hotjar", Purpose: []string{"- Heatmaps."}, OptOutLink: strp("https://hotjar.example/optout")},
				},
				Sections: messySections(cookieStrategy.minSections),
			}
			repairTwice(t, cookieStrategy, models.CookiePolicyRequest{Company: acme(), ThirdPartyServices: "Hotjar"}, doc)
			assert.Nil(t, doc.ThirdPartyServices[0].OptOutLink)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.run)
	}
}

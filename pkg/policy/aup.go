package policy

import (
	"fmt"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/pkg/postprocess"
	"github.com/xhad/compligen/pkg/prompt"
	"github.com/xhad/compligen/pkg/retriever"
)

type aupDoc = *models.AcceptableUsePolicy

var aupStrategy = strategy[models.AcceptableUsePolicyRequest, aupDoc]{
	docType:     models.AcceptableUsePolicyType,
	role:        "You are a compliance and cybersecurity expert drafting Acceptable Use Policies for SaaS platforms operated by Australian businesses.",
	minSections: 13,
	sections: []string{
		"Last Updated",
		"Purpose of This Policy",
		"Who This Policy Applies To",
		"Permitted Use",
		"Prohibited Activities",
		"Industry-Specific Restrictions",
		"User Content and User Responsibilities",
		"Security and Account Protection Expectations",
		"Monitoring, Logging and Enforcement",
		"Reporting Illegal or Prohibited Activity",
		"Consequences of Breach",
		"Changes to This Policy",
		"Contact Information",
	},
	newDoc: func() aupDoc { return &models.AcceptableUsePolicy{} },

	retrieval: func(req models.AcceptableUsePolicyRequest) retriever.Plan {
		return retriever.Plan{
			Legal: retriever.Query{
				Text:   "acceptable use policy Australia platform misuse monitoring enforcement illegal activity reporting",
				K:      8,
				Filter: lawFilter(),
			},
			Example: retriever.Query{
				Text:   fmt.Sprintf("acceptable use policy %s SaaS prohibited activities monitoring enforcement", req.Industry),
				K:      8,
				Filter: exampleFilter(models.AcceptableUsePolicyType.Title()),
			},
		}
	},

	facts: func(req models.AcceptableUsePolicyRequest) []prompt.FactGroup {
		company := companyFacts(req.Company)
		company.Facts = append(company.Facts,
			prompt.Fact{Label: "International Customers", Value: req.InternationalCustomers},
			prompt.Fact{Label: "Children Under 18 Served", Value: req.ChildrenUnder18Served},
		)
		return []prompt.FactGroup{company, {
			Title: "Platform Conduct",
			Facts: []prompt.Fact{
				{Label: "Permitted Usage Types", Value: req.PermittedUsageTypes},
				{Label: "Prohibited Activities", Value: req.ProhibitedActivities},
				{Label: "Industry-Specific Restrictions", Value: req.IndustrySpecificRestrictions},
				{Label: "User Monitoring Practices", Value: req.UserMonitoringPractices},
				{Label: "Reporting of Illegal Activities", Value: req.ReportingIllegalActivities},
			},
		}}
	},

	instructions: func(req models.AcceptableUsePolicyRequest) []string {
		out := []string{
			"Keep the policy clear and non-technical and be transparent about monitoring and enforcement.",
			"User Content and User Responsibilities stays general; do not create Terms of Service terms.",
		}
		if !models.IsNoAnswer(req.ChildrenUnder18Served) {
			out = append(out, `The platform may be used by people under 18. Do not write "18+" or restrict use to adults.`)
		}
		return out
	},

	repair: func(req models.AcceptableUsePolicyRequest, plan *postprocess.Plan[aupDoc]) {
		if !models.IsNoAnswer(req.ChildrenUnder18Served) {
			plan.DropSentences = []string{"18+"}
		}
		plan.Backfill = []postprocess.Rule[aupDoc]{
			postprocess.FillList(func(d aupDoc) *[]string { return &d.PermittedUsageTypes }, splitSemicolons(req.PermittedUsageTypes)...),
			postprocess.FillList(func(d aupDoc) *[]string { return &d.ProhibitedActivities }, splitSemicolons(req.ProhibitedActivities)...),
			postprocess.FillList(func(d aupDoc) *[]string { return &d.IndustrySpecificRestrictions }, splitSemicolons(req.IndustrySpecificRestrictions)...),
			postprocess.FillList(func(d aupDoc) *[]string { return &d.UserMonitoringPractices }, splitSemicolons(req.UserMonitoringPractices)...),
			postprocess.FillList(func(d aupDoc) *[]string { return &d.ReportingIllegalActivities }, splitSemicolons(req.ReportingIllegalActivities)...),
		}
	},
}

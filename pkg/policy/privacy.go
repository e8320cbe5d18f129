package policy

import (
	"fmt"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/pkg/postprocess"
	"github.com/xhad/compligen/pkg/prompt"
	"github.com/xhad/compligen/pkg/retriever"
)

// oaicContact is the regulator's published contact information.
var oaicContact = []string{
	"Office of the Australian Information Commissioner (OAIC)",
	"Website: https://www.oaic.gov.au",
	"Phone: 1300 363 992",
	"Post: GPO Box 5288, Sydney NSW 2001",
}

type privacyDoc = *models.PrivacyPolicy

var privacyStrategy = strategy[models.PrivacyPolicyRequest, privacyDoc]{
	docType:     models.PrivacyPolicyType,
	role:        "You are an expert Australian privacy law consultant drafting privacy policies that comply with the Privacy Act 1988 (Cth) and all 13 Australian Privacy Principles (APPs).",
	minSections: 6,
	sections: []string{
		"Collection of Personal Information",
		"Use and Disclosure of Personal Information",
		"Data Security and Retention",
		"Access and Correction",
		"Complaints and OAIC Contact",
		"How to Contact Us",
	},
	newDoc: func() privacyDoc { return &models.PrivacyPolicy{} },

	retrieval: func(req models.PrivacyPolicyRequest) retriever.Plan {
		return retriever.Plan{
			Legal: retriever.Query{
				Text: withFlags("privacy policy Australian Privacy Principles collection use disclosure security access correction",
					flag{req.InternationalOperations, "APP 8 cross-border international overseas"},
					flag{req.ServesChildren, "children minors parental consent APP 3"},
					flag{models.IsSpecified(req.ThirdParties), "APP 6 disclosure third party sharing"},
					flag{req.CookiesUsed, "cookies tracking technologies consent"},
					flag{req.PaymentDataCollected, "payment sensitive information APP 11 security"},
					flag{req.MarketingPurpose, "APP 7 direct marketing consent opt-out"},
				),
				K:      12,
				Filter: lawFilter(),
			},
			Example: retriever.Query{
				Text:   fmt.Sprintf("privacy policy %s %s", req.Industry, req.CustomerType),
				K:      6,
				Filter: exampleFilter(models.PrivacyPolicyType.Title()),
			},
		}
	},

	facts: func(req models.PrivacyPolicyRequest) []prompt.FactGroup {
		company := companyFacts(req.Company)
		company.Facts = append(company.Facts,
			prompt.Fact{Label: "International Operations", Value: models.YesNo(req.InternationalOperations)},
			prompt.Fact{Label: "Serves Children Under 18", Value: models.YesNo(req.ServesChildren)},
		)
		return []prompt.FactGroup{company, {
			Title: "Data Collection Information",
			Facts: []prompt.Fact{
				{Label: "Types of Personal Information Collected", Value: req.DataTypes},
				{Label: "Payment Data Collected", Value: models.YesNo(req.PaymentDataCollected)},
				{Label: "Cookies Used", Value: models.YesNo(req.CookiesUsed)},
				{Label: "Collection Methods", Value: req.CollectionMethods},
				{Label: "Direct Marketing", Value: models.YesNo(req.MarketingPurpose)},
				{Label: "Purposes of Collection", Value: req.CollectionPurposes},
				{Label: "Third-Party Sharing", Value: req.ThirdParties},
				{Label: "Data Storage Location", Value: req.StorageLocation},
				{Label: "Security Measures", Value: req.SecurityMeasures},
				{Label: "Data Retention Period", Value: req.RetentionPeriod},
			},
		}}
	},

	instructions: func(req models.PrivacyPolicyRequest) []string {
		out := []string{
			"Address all 13 Australian Privacy Principles, each only to the extent the company information makes it relevant, and list the APP numbers addressed in apps_addressed.",
			`Never write that an APP "does not apply". Where an activity is not undertaken, say so in practical terms (for example "We do not currently disclose personal information overseas") and describe what will happen if this changes.`,
			"Only describe de-identification for analytics, research or statistical purposes.",
			"For APP 5, state the main consequence if personal information is not provided.",
			"If no postal address is provided, give email contact only.",
		}
		if req.CookiesUsed {
			out = append(out, "Include a Cookies and Tracking section explaining the choices and controls available.")
		} else {
			out = append(out, "Do not mention cookies or tracking technologies.")
		}
		if !req.MarketingPurpose {
			out = append(out, "Do not claim that any direct marketing takes place.")
		}
		if !req.InternationalOperations {
			out = append(out, "Do not claim that personal information is disclosed overseas.")
		}
		return out
	},

	repair: func(req models.PrivacyPolicyRequest, plan *postprocess.Plan[privacyDoc]) {
		plan.Backfill = []postprocess.Rule[privacyDoc]{
			postprocess.FillList(func(d privacyDoc) *[]string { return &d.ComplaintsProcess },
				fmt.Sprintf("If you wish to make a complaint about how we have handled your personal information, please contact us at %s.", req.ContactEmail),
				"We will acknowledge your complaint and respond within a reasonable period.",
				"If you are not satisfied with our response, you may contact the Office of the Australian Information Commissioner.",
			),
			postprocess.FillList(func(d privacyDoc) *[]string { return &d.OAICContact }, oaicContact...),
		}
	},
}

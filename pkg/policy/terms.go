package policy

import (
	"fmt"
	"strings"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/pkg/postprocess"
	"github.com/xhad/compligen/pkg/prompt"
	"github.com/xhad/compligen/pkg/retriever"
)

const defaultPaymentTerms = "Accepted payment methods are displayed at checkout."

type termsDoc = *models.TermsOfService

var termsStrategy = strategy[models.TermsOfServiceRequest, termsDoc]{
	docType:     models.TermsOfServiceType,
	role:        "You are an expert Australian commercial law consultant drafting Terms of Service for an Australian SaaS business that comply with the Australian Consumer Law (ACL).",
	minSections: 18,
	clauses:     []string{ACLClause},
	sections: []string{
		"Acceptance of Terms",
		"Description of Services",
		"Accounts and Eligibility",
		"Subscription, Trials and Billing",
		"Refunds and Cancellations",
		"Consumer Guarantees",
		"Acceptable Use and Prohibited Activities",
		"User Content and Data",
		"Intellectual Property",
		"Confidentiality",
		"Availability, Support and Maintenance",
		"Disclaimers",
		"Limitation of Liability",
		"Indemnity",
		"Suspension and Termination",
		"Dispute Resolution",
		"Governing Law and Jurisdiction",
		"Changes to Terms",
		"Contact Information",
	},
	newDoc: func() termsDoc { return &models.TermsOfService{} },

	retrieval: func(req models.TermsOfServiceRequest) retriever.Plan {
		return retriever.Plan{
			Legal: retriever.Query{
				Text: withFlags("Australian Consumer Law consumer guarantees services major failure remedies "+
					"unfair contract terms small business standard form contract "+
					"SaaS terms liability limitation dispute resolution ACCC Fair Trading "+
					"subscription billing cancellation free trial",
					flag{req.UserContentUploads, "user content licence confidentiality data security acceptable use"},
					flag{req.InternationalOperations, "cross border jurisdiction governing law Australia"},
				),
				K:      10,
				Filter: lawFilter(),
			},
			Example: retriever.Query{
				Text:   fmt.Sprintf("terms of service %s %s subscription SaaS Australia", req.Industry, req.CustomerType),
				K:      8,
				Filter: exampleFilter(models.TermsOfServiceType.Title(), "Terms of use"),
			},
		}
	},

	facts: func(req models.TermsOfServiceRequest) []prompt.FactGroup {
		return []prompt.FactGroup{companyFacts(req.Company), {
			Title: "Service Information",
			Facts: []prompt.Fact{
				{Label: "Service Type", Value: req.ServiceType},
				{Label: "Pricing Model", Value: req.PricingModel},
				{Label: "Free Trial", Value: models.YesNo(req.FreeTrial)},
				{Label: "Refund Policy", Value: req.RefundPolicy},
				{Label: "Minor Restrictions", Value: models.YesNo(req.MinorRestrictions)},
				{Label: "User Content Allowed", Value: models.YesNo(req.UserContentUploads)},
				{Label: "Prohibited Activities", Value: req.ProhibitedActivities},
				{Label: "International Operations", Value: models.YesNo(req.InternationalOperations)},
				{Label: "Subscription Features", Value: req.SubscriptionFeatures},
				{Label: "Payment Terms", Value: req.PaymentTerms},
			},
		}}
	},

	instructions: func(req models.TermsOfServiceRequest) []string {
		out := []string{
			"Do not invent an ABN, a physical address, refund processing times or payment methods. Where a detail is missing, use compliant generic wording such as \"within a reasonable time\".",
			fmt.Sprintf("Mention no website other than %s.", models.Answer(req.Website)),
			fmt.Sprintf("If accepted payment methods are not given, write %q", defaultPaymentTerms),
			"Place the Australian Consumer Law sentence in acl_statement only.",
			"Liability: no absolute exclusions, qualify limits with \"to the maximum extent permitted by law\", and state a single liability cap.",
			"Dispute Resolution must refer to the ACCC and the relevant state or territory Fair Trading office.",
			fmt.Sprintf("Governing law is the law of %s, stated in a single section.", models.Answer(req.Location)),
			"Do not add closing commentary such as advice to have a lawyer review the terms.",
		}
		if req.MinorRestrictions {
			out = append(out, "State a clear minimum age and the rule for use by minors with a parent or guardian's consent.")
		} else {
			out = append(out, `Do not state "18+". Require the legal capacity to enter a binding contract and authority to bind any organisation the user represents.`)
		}
		if !req.FreeTrial {
			out = append(out, "Do not offer a free trial. Leave free_trial_terms empty.")
		}
		if !req.InternationalOperations {
			out = append(out, "Leave international_terms empty.")
		}
		if !req.UserContentUploads {
			out = append(out, "Users cannot upload content. Keep user content terms to data the user provides in normal use.")
		}
		return out
	},

	repair: func(req models.TermsOfServiceRequest, plan *postprocess.Plan[termsDoc]) {
		plan.Clause = &postprocess.Clause[termsDoc]{
			Text: ACLClause,
			Home: func(d termsDoc) *string { return &d.ACLStatement },
		}
		if !req.MinorRestrictions {
			plan.DropSentences = []string{"18+"}
		}

		plan.Normalise = []postprocess.Rule[termsDoc]{
			postprocess.When(!req.FreeTrial,
				postprocess.ClearList(func(d termsDoc) *[]string { return &d.FreeTrialTerms })),
			postprocess.When(!req.InternationalOperations,
				postprocess.ClearList(func(d termsDoc) *[]string { return &d.InternationalTerms })),
		}

		paymentTerms := req.PaymentTerms
		if !models.IsSpecified(paymentTerms) {
			paymentTerms = defaultPaymentTerms
		}
		plan.Backfill = []postprocess.Rule[termsDoc]{
			postprocess.FillList(func(d termsDoc) *[]string { return &d.ServiceDescription }, specified(req.BusinessDescription)...),
			postprocess.FillList(func(d termsDoc) *[]string { return &d.ServiceType }, specified(req.ServiceType)...),
			postprocess.FillList(func(d termsDoc) *[]string { return &d.PricingModel }, specified(req.PricingModel)...),
			postprocess.FillList(func(d termsDoc) *[]string { return &d.RefundPolicy }, specified(req.RefundPolicy)...),
			postprocess.FillList(func(d termsDoc) *[]string { return &d.PaymentTerms }, paymentTerms),
			postprocess.FillList(func(d termsDoc) *[]string { return &d.ProhibitedActivities }, postprocess.SplitList(req.ProhibitedActivities, ",;")...),
			postprocess.FillList(func(d termsDoc) *[]string { return &d.EligibilityRequirements }, eligibility(req.MinorRestrictions)...),
			postprocess.FillString(func(d termsDoc) *string { return &d.GoverningLaw }, governingLaw(req.Location)),
		}
	},
}

func eligibility(minorRestrictions bool) []string {
	if minorRestrictions {
		return []string{
			"A person under 18 may use the Services only with the consent and supervision of a parent or guardian who accepts these Terms.",
		}
	}
	return []string{
		"You must have the legal capacity to enter into a binding contract.",
		"If you use the Services on behalf of an organisation, you must be authorised to bind that organisation to these Terms.",
	}
}

func governingLaw(location string) string {
	if !models.IsSpecified(location) {
		return ""
	}
	return fmt.Sprintf("These Terms are governed by the laws of %s, Australia.", strings.TrimSuffix(strings.TrimSpace(location), ", Australia"))
}

package policy

import (
	"fmt"
	"strings"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/pkg/postprocess"
	"github.com/xhad/compligen/pkg/prompt"
	"github.com/xhad/compligen/pkg/retriever"
)

// dpaDefinitions are the statutory terms every agreement defines.
var dpaDefinitions = []string{
	"Agreement: The main service agreement between the parties to which this DPA is appended.",
	"Controller: The entity that determines the purposes and means of processing Personal Information.",
	"Customer: The entity that has entered into the Agreement with the Processor.",
	"Data Protection Laws: All applicable laws relating to Personal Information, including the Privacy Act 1988 (Cth) and the APPs.",
	"Personal Data: Information relating to an identified or identifiable natural person, equivalent to Personal Information and used in international contracts.",
	"Personal Information: Information or an opinion about an identified individual, or an individual who is reasonably identifiable, as defined in the Privacy Act 1988 (Cth).",
	"Processor: The entity that processes Personal Information on behalf of the Controller.",
	"Processing: Any operation performed on Personal Information, such as collection, recording, organisation, storage, use, disclosure or destruction.",
	"Sub-processor: Any third party engaged by the Processor to process Personal Information on behalf of the Customer.",
	"Eligible Data Breach: A breach likely to result in serious harm to individuals, as defined under the Notifiable Data Breaches scheme of the Privacy Act 1988 (Cth).",
}

type dpaDoc = *models.DataProcessingAgreement

var dpaStrategy = strategy[models.DataProcessingAgreementRequest, dpaDoc]{
	docType:     models.DataProcessingAgreementType,
	role:        "You are a compliance and cybersecurity expert drafting Data Processing Agreements for Australian SaaS providers with international customers, under the Privacy Act 1988 (Cth) and the Notifiable Data Breaches scheme.",
	minSections: 19,
	sections: []string{
		"Last Updated",
		"Parties and Purpose",
		"Definitions",
		"Roles and Scope",
		"Details of Processing",
		"Processor Obligations",
		"Controller Obligations",
		"Confidentiality",
		"Security Measures",
		"Sub-processors",
		"Overseas Disclosures (APP 8)",
		"Assistance with Individual Rights",
		"Eligible Data Breaches (NDB scheme)",
		"Deletion or Return of Data",
		"Audits and Compliance",
		"Liability",
		"Term and Termination",
		"Changes to This DPA",
		"Contact Information",
		"Annex A: Processing Details",
		"Annex B: Technical and Organisational Measures",
	},
	newDoc: func() dpaDoc { return &models.DataProcessingAgreement{} },

	retrieval: func(req models.DataProcessingAgreementRequest) retriever.Plan {
		return retriever.Plan{
			Legal: retriever.Query{
				Text:   "Australia Privacy Act 1988 APP 8 overseas disclosure Notifiable Data Breaches scheme processor obligations",
				K:      8,
				Filter: lawFilter(),
			},
			Example: retriever.Query{
				Text:   fmt.Sprintf("Australian SaaS data processing agreement annex security measures sub-processors %s", req.Industry),
				K:      8,
				Filter: exampleFilter(models.DataProcessingAgreementType.Title()),
			},
		}
	},

	facts: func(req models.DataProcessingAgreementRequest) []prompt.FactGroup {
		company := companyFacts(req.Company)
		company.Facts = append(company.Facts,
			prompt.Fact{Label: "International Customers", Value: req.InternationalCustomers},
			prompt.Fact{Label: "Children Under 18 Served", Value: req.ChildrenUnder18Served},
		)
		return []prompt.FactGroup{company, {
			Title: "Processing Details",
			Facts: []prompt.Fact{
				{Label: "Role", Value: req.RoleControllerOrProcessor},
				{Label: "Sub-processors", Value: req.SubProcessorsUsed},
				{Label: "Processing Locations", Value: req.DataProcessingLocations},
				{Label: "Security Certifications", Value: req.SecurityCertifications},
				{Label: "Security Measures", Value: req.SecurityMeasures},
				{Label: "Breach Notification", Value: req.BreachNotificationTimeframe},
				{Label: "Deletion Timeline", Value: req.DataDeletionTimelines},
				{Label: "Audit Rights", Value: req.AuditRights},
				{Label: "Processing Summary", Value: models.OptionalAnswer(req.ProcessingSummary)},
			},
		}}
	},

	instructions: func(models.DataProcessingAgreementRequest) []string {
		return []string{
			"The primary law is the Privacy Act 1988 (Cth) and the Australian Privacy Principles. Do not cite GDPR articles or write \"pursuant to GDPR\"; describe equivalent obligations under \"the Privacy Act 1988 (Cth) and applicable Data Protection Laws\".",
			"Use \"Personal Information\" as the primary term and explain \"Personal Data\" as the equivalent international contract term.",
			"Controller and Processor are acceptable contract roles; relate them to Australian privacy concepts.",
			"Do not quote long passages of legislation.",
			"Define exactly ten terms in definitions: Agreement, Controller, Customer, Data Protection Laws, Personal Data, Personal Information, Processor, Processing, Sub-processor, Eligible Data Breach.",
			"Put the processing details in annex_a and the security measures in annex_b. The two Annex sections carry no content of their own.",
		}
	},

	repair: func(req models.DataProcessingAgreementRequest, plan *postprocess.Plan[dpaDoc]) {
		locations := splitSemicolons(req.DataProcessingLocations)

		subject := req.BusinessDescription
		if req.ProcessingSummary != nil && models.IsSpecified(*req.ProcessingSummary) {
			subject = *req.ProcessingSummary
		}

		duration := []string{"For the term of the Agreement."}
		if models.IsSpecified(req.DataDeletionTimelines) {
			duration = append(duration, "Personal Information is deleted or returned "+lowerFirst(strings.TrimSpace(req.DataDeletionTimelines))+".")
		}

		nature := []string{fmt.Sprintf("To provide the %s services to the Customer.", req.CompanyName)}
		if req.ProcessingSummary != nil {
			nature = append(nature, specified(*req.ProcessingSummary)...)
		}

		certifications := []string(nil)
		if !strings.EqualFold(strings.TrimSpace(req.SecurityCertifications), models.NotSpecified) {
			certifications = specified(req.SecurityCertifications)
		}

		plan.Backfill = []postprocess.Rule[dpaDoc]{
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.BreachNotificationTimeframe }, specified(req.BreachNotificationTimeframe)...),
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.DataDeletionTimelines }, specified(req.DataDeletionTimelines)...),
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.AuditRights }, specified(req.AuditRights)...),
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.RoleControllerOrProcessor }, specified(req.RoleControllerOrProcessor)...),
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.DataProcessingLocations }, locations...),
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.Definitions.Terms }, dpaDefinitions...),
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.AnnexA.SubjectMatter }, specified(subject)...),
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.AnnexA.Duration }, duration...),
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.AnnexA.NatureAndPurpose }, nature...),
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.AnnexA.DataSubjectCategories }, dataSubjects(req.CustomerType)...),
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.AnnexA.DataProcessingLocations }, locations...),
			fillSubProcessors(splitSemicolons(req.SubProcessorsUsed)),
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.AnnexB.SecurityCertifications }, certifications...),
			postprocess.FillList(func(d dpaDoc) *[]string { return &d.AnnexB.TechnicalMeasures }, splitSemicolons(req.SecurityMeasures)...),
		}
	},
}

// dataSubjects derives the data subject categories from the customer type.
func dataSubjects(customerType string) []string {
	if !models.IsSpecified(customerType) {
		return nil
	}
	if strings.Contains(strings.ToLower(customerType), "business") {
		return []string{
			"Business customers' employees",
			"End customers of business customers",
			"Sales contacts",
			"Individuals making support enquiries",
		}
	}
	return []string{
		"Individual customers",
		"Website visitors",
		"Service users",
	}
}

func fillSubProcessors(categories []string) postprocess.Rule[dpaDoc] {
	return func(d dpaDoc) {
		if len(d.AnnexA.SubProcessors) > 0 || len(categories) == 0 {
			return
		}
		d.AnnexA.SubProcessors = make([]models.DPASubProcessor, 0, len(categories))
		for _, c := range categories {
			d.AnnexA.SubProcessors = append(d.AnnexA.SubProcessors, models.DPASubProcessor{
				CategoryName:  c,
				ProviderNames: []string{},
			})
		}
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if len(r) > 1 && r[1] >= 'A' && r[1] <= 'Z' {
		// acronym
		return s
	}
	return strings.ToLower(string(r[0])) + string(r[1:])
}

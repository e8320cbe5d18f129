package models

// Section is one numbered section of a generated document.
type Section struct {
	SectionNumber int      `json:"section_number" description:"1-based section number" validate:"gte=0"`
	Heading       string   `json:"heading" description:"Section heading, plain text" validate:"required"`
	Content       []string `json:"content" description:"Section body as plain-text paragraphs, one item per paragraph"`
}

// Header carries the fields every generated document starts with. Its values
// are always taken from the request, never from the model.
type Header struct {
	CompanyName  string  `json:"company_name" description:"Full legal name of the company"`
	LastUpdated  string  `json:"last_updated" description:"Date in YYYY-MM-DD format"`
	WebsiteURL   string  `json:"website_url" description:"Company website URL"`
	ContactEmail string  `json:"contact_email" description:"Contact email for inquiries"`
	PhoneNumber  *string `json:"phone_number" description:"Contact phone number, null if not provided"`
}

// StructuredDocument is the closed set of generated documents.
type StructuredDocument interface {
	Type() DocumentType
	HeaderRef() *Header
	SectionsRef() *[]Section
	structured()
}

type PrivacyPolicy struct {
	Header
	Introduction      []string  `json:"introduction" description:"Opening paragraphs introducing the policy"`
	Sections          []Section `json:"sections" description:"Main policy sections, numbered from 1" validate:"required,min=1,dive"`
	ComplaintsProcess []string  `json:"complaints_process" description:"How to lodge a privacy complaint"`
	OAICContact       []string  `json:"oaic_contact" description:"Office of the Australian Information Commissioner contact details"`
	APPsAddressed     []int     `json:"apps_addressed" description:"Australian Privacy Principle numbers addressed (1-13)" validate:"dive,min=1,max=13"`
}

type TermsOfService struct {
	Header
	ServiceDescription          []string  `json:"service_description" description:"What the service is and what it provides"`
	ServiceType                 []string  `json:"service_type" description:"Service types offered"`
	PricingModel                []string  `json:"pricing_model" description:"Pricing structure"`
	FreeTrialTerms              []string  `json:"free_trial_terms" description:"Free trial terms, empty if no trial is offered"`
	PaymentTerms                []string  `json:"payment_terms" description:"Payment terms"`
	RefundPolicy                []string  `json:"refund_policy" description:"Refund policy"`
	CancellationTerms           []string  `json:"cancellation_terms" description:"How to cancel"`
	EligibilityRequirements     []string  `json:"eligibility_requirements" description:"Eligibility requirements"`
	ProhibitedActivities        []string  `json:"prohibited_activities" description:"Prohibited activities"`
	UserContentLicense          []string  `json:"user_content_license" description:"Licence granted for user content"`
	UserContentResponsibilities []string  `json:"user_content_responsibilities" description:"User responsibilities for content"`
	IntellectualProperty        []string  `json:"intellectual_property_ownership" description:"Intellectual property ownership"`
	ConfidentialityObligations  []string  `json:"confidentiality_obligations" description:"Confidentiality terms"`
	ConsumerGuarantees          []string  `json:"consumer_guarantees" description:"Australian Consumer Law consumer guarantees"`
	ACLStatement                string    `json:"acl_statement" description:"The Australian Consumer Law statement, verbatim"`
	LiabilityLimitations        []string  `json:"liability_limitations" description:"Liability limitations"`
	Disclaimers                 []string  `json:"disclaimers" description:"Disclaimers within Australian Consumer Law limits"`
	TerminationRights           []string  `json:"termination_rights" description:"Termination rights"`
	DisputeResolution           []string  `json:"dispute_resolution_process" description:"Dispute resolution process"`
	GoverningLaw                string    `json:"governing_law" description:"Governing law and jurisdiction"`
	SupportTerms                []string  `json:"support_terms" description:"Support provided"`
	AvailabilityTerms           []string  `json:"availability_terms" description:"Service availability"`
	InternationalTerms          []string  `json:"international_terms" description:"International operation terms, empty if Australia-only"`
	Sections                    []Section `json:"sections" description:"Full contract text as numbered sections" validate:"required,min=1,dive"`
}

type DPADefinitions struct {
	Terms []string `json:"terms" description:"Defined terms, one 'Term: meaning' item each"`
}

type DPASubProcessor struct {
	CategoryName  string   `json:"category_name" validate:"required"`
	ProviderNames []string `json:"provider_names"`
}

type DPAAnnexA struct {
	SubjectMatter            []string          `json:"subject_matter_of_processing"`
	Duration                 []string          `json:"duration_of_processing"`
	NatureAndPurpose         []string          `json:"nature_and_purpose_of_processing"`
	DataSubjectCategories    []string          `json:"categories_of_data_subjects"`
	PersonalInformationTypes []string          `json:"types_of_personal_information"`
	DataProcessingLocations  []string          `json:"data_processing_locations"`
	SubProcessors            []DPASubProcessor `json:"sub_processors" validate:"dive"`
}

type DPAAnnexB struct {
	TechnicalMeasures        []string `json:"technical_measures"`
	OrganisationalMeasures   []string `json:"organisational_measures"`
	PhysicalSecurityMeasures []string `json:"physical_security_measures"`
	SecurityCertifications   []string `json:"security_certifications"`
}

type DataProcessingAgreement struct {
	Header
	RoleControllerOrProcessor   []string       `json:"role_controller_or_processor"`
	BreachNotificationTimeframe []string       `json:"breach_notification_timeframe"`
	DataDeletionTimelines       []string       `json:"data_deletion_timelines"`
	AuditRights                 []string       `json:"audit_rights"`
	DataProcessingLocations     []string       `json:"data_processing_locations"`
	Definitions                 DPADefinitions `json:"definitions"`
	AnnexA                      DPAAnnexA      `json:"annex_a"`
	AnnexB                      DPAAnnexB      `json:"annex_b"`
	Sections                    []Section      `json:"sections" validate:"required,min=1,dive"`
}

type AcceptableUsePolicy struct {
	Header
	PermittedUsageTypes          []string  `json:"permitted_usage_types" description:"Permitted use cases for the platform"`
	ProhibitedActivities         []string  `json:"prohibited_activities" description:"Prohibited activities"`
	IndustrySpecificRestrictions []string  `json:"industry_specific_restrictions" description:"Industry-specific restrictions"`
	UserMonitoringPractices      []string  `json:"user_monitoring_practices" description:"Monitoring practices"`
	ReportingIllegalActivities   []string  `json:"reporting_illegal_activities" description:"How illegal activities are reported"`
	Sections                     []Section `json:"sections" description:"Policy sections with section_number, heading and content" validate:"required,min=1,dive"`
}

type ThirdPartyService struct {
	ServiceName string   `json:"service_name" validate:"required"`
	Purpose     []string `json:"purpose"`
	OptOutLink  *string  `json:"opt_out_link"`
}

type BrowserInstruction struct {
	BrowserName  string   `json:"browser_name" validate:"required"`
	Instructions []string `json:"instructions"`
	HelpLink     string   `json:"help_link"`
}

type CookiePolicy struct {
	Header
	Introduction        []string             `json:"introduction" description:"Introductory paragraphs"`
	CookieTypes         []string             `json:"cookie_types" description:"Types of cookies used"`
	Sections            []Section            `json:"sections" description:"Policy sections" validate:"required,min=1,dive"`
	ThirdPartyServices  []ThirdPartyService  `json:"third_party_services" validate:"dive"`
	CookieDuration      []string             `json:"cookie_duration" description:"Cookie duration statements"`
	BrowserInstructions []BrowserInstruction `json:"browser_instructions" validate:"dive"`
}

func (*PrivacyPolicy) Type() DocumentType           { return PrivacyPolicyType }
func (*TermsOfService) Type() DocumentType          { return TermsOfServiceType }
func (*DataProcessingAgreement) Type() DocumentType { return DataProcessingAgreementType }
func (*AcceptableUsePolicy) Type() DocumentType     { return AcceptableUsePolicyType }
func (*CookiePolicy) Type() DocumentType            { return CookiePolicyType }

func (d *PrivacyPolicy) HeaderRef() *Header           { return &d.Header }
func (d *TermsOfService) HeaderRef() *Header          { return &d.Header }
func (d *DataProcessingAgreement) HeaderRef() *Header { return &d.Header }
func (d *AcceptableUsePolicy) HeaderRef() *Header     { return &d.Header }
func (d *CookiePolicy) HeaderRef() *Header            { return &d.Header }

func (d *PrivacyPolicy) SectionsRef() *[]Section           { return &d.Sections }
func (d *TermsOfService) SectionsRef() *[]Section          { return &d.Sections }
func (d *DataProcessingAgreement) SectionsRef() *[]Section { return &d.Sections }
func (d *AcceptableUsePolicy) SectionsRef() *[]Section     { return &d.Sections }
func (d *CookiePolicy) SectionsRef() *[]Section            { return &d.Sections }

func (*PrivacyPolicy) structured()           {}
func (*TermsOfService) structured()          {}
func (*DataProcessingAgreement) structured() {}
func (*AcceptableUsePolicy) structured()     {}
func (*CookiePolicy) structured()            {}

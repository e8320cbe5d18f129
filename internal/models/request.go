package models

import (
	"fmt"
	"strings"
)

// NotSpecified is the sentinel rendered for any absent fact or empty context.
const NotSpecified = "Not specified"

// DocumentType names one of the five generated compliance documents.
type DocumentType string

const (
	PrivacyPolicyType           DocumentType = "privacy_policy"
	TermsOfServiceType          DocumentType = "terms_of_service"
	DataProcessingAgreementType DocumentType = "data_processing_agreement"
	AcceptableUsePolicyType     DocumentType = "acceptable_use_policy"
	CookiePolicyType            DocumentType = "cookie_policy"
)

// DocumentTypes lists every supported document type in a stable order.
var DocumentTypes = []DocumentType{
	PrivacyPolicyType,
	TermsOfServiceType,
	DataProcessingAgreementType,
	AcceptableUsePolicyType,
	CookiePolicyType,
}

var documentTitles = map[DocumentType]string{
	PrivacyPolicyType:           "Privacy Policy",
	TermsOfServiceType:          "Terms of Service",
	DataProcessingAgreementType: "Data Processing Agreement",
	AcceptableUsePolicyType:     "Acceptable Use Policy",
	CookiePolicyType:            "Cookie Policy",
}

// Title is the human-readable name, also used as the corpus policy_type tag.
func (t DocumentType) Title() string {
	return documentTitles[t]
}

// ParseDocumentType accepts the canonical name or a short alias (privacy, tos,
// dpa, aup, cookie).
func ParseDocumentType(s string) (DocumentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "privacy", "privacy_policy", "privacy-policy":
		return PrivacyPolicyType, nil
	case "tos", "terms", "terms_of_service", "terms-of-service":
		return TermsOfServiceType, nil
	case "dpa", "data_processing_agreement", "data-processing-agreement":
		return DataProcessingAgreementType, nil
	case "aup", "acceptable_use_policy", "acceptable-use-policy":
		return AcceptableUsePolicyType, nil
	case "cookie", "cookies", "cookie_policy", "cookie-policy":
		return CookiePolicyType, nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// Answer returns the trimmed value, or NotSpecified when it is empty.
func Answer(s string) string {
	if v := strings.TrimSpace(s); v != "" {
		return v
	}
	return NotSpecified
}

// OptionalAnswer is Answer for optional fields.
func OptionalAnswer(s *string) string {
	if s == nil {
		return NotSpecified
	}
	return Answer(*s)
}

// YesNo renders a boolean fact.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// IsSpecified reports whether a free-text answer carries a real value.
func IsSpecified(s string) bool {
	v := strings.TrimSpace(s)
	return v != "" && !strings.EqualFold(v, NotSpecified)
}

// IsNoAnswer reports whether a free-text Yes/No answer is a "no"
// ("No", "no - adults only", "No, never").
func IsNoAnswer(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(v, "no") {
		return false
	}
	rest := strings.TrimPrefix(v, "no")
	return rest == "" || strings.ContainsRune(" ,.;-–", []rune(rest)[0])
}

// Company holds the business facts shared by every request.
type Company struct {
	CompanyName         string  `json:"company_name" yaml:"company_name" validate:"required"`
	BusinessDescription string  `json:"business_description" yaml:"business_description"`
	Industry            string  `json:"industry" yaml:"industry"`
	CompanySize         string  `json:"company_size" yaml:"company_size"`
	Location            string  `json:"location" yaml:"location"`
	Website             string  `json:"website" yaml:"website" validate:"required"`
	ContactEmail        string  `json:"contact_email" yaml:"contact_email" validate:"required,email"`
	PhoneNumber         *string `json:"phone_number,omitempty" yaml:"phone_number"`
	CustomerType        string  `json:"customer_type" yaml:"customer_type"`
}

// Phone returns the caller's phone number, or nil when it is absent, blank
// or the sentinel.
func (c Company) Phone() *string {
	if c.PhoneNumber == nil {
		return nil
	}
	v := strings.TrimSpace(*c.PhoneNumber)
	if v == "" || strings.EqualFold(v, NotSpecified) {
		return nil
	}
	return &v
}

// Request is implemented by the five generation requests.
type Request interface {
	Type() DocumentType
	CompanyInfo() Company
}

type PrivacyPolicyRequest struct {
	Company                 `yaml:",inline"`
	InternationalOperations bool   `json:"international_operations" yaml:"international_operations"`
	ServesChildren          bool   `json:"serves_children" yaml:"serves_children"`
	DataTypes               string `json:"data_types" yaml:"data_types"`
	PaymentDataCollected    bool   `json:"payment_data_collected" yaml:"payment_data_collected"`
	CookiesUsed             bool   `json:"cookies_used" yaml:"cookies_used"`
	CollectionMethods       string `json:"collection_methods" yaml:"collection_methods"`
	MarketingPurpose        bool   `json:"marketing_purpose" yaml:"marketing_purpose"`
	CollectionPurposes      string `json:"collection_purposes" yaml:"collection_purposes"`
	ThirdParties            string `json:"third_parties" yaml:"third_parties"`
	StorageLocation         string `json:"storage_location" yaml:"storage_location"`
	SecurityMeasures        string `json:"security_measures" yaml:"security_measures"`
	RetentionPeriod         string `json:"retention_period" yaml:"retention_period"`
}

func (PrivacyPolicyRequest) Type() DocumentType     { return PrivacyPolicyType }
func (r PrivacyPolicyRequest) CompanyInfo() Company { return r.Company }

type TermsOfServiceRequest struct {
	Company                 `yaml:",inline"`
	InternationalOperations bool   `json:"international_operations" yaml:"international_operations"`
	ServiceType             string `json:"service_type" yaml:"service_type"`
	PricingModel            string `json:"pricing_model" yaml:"pricing_model"`
	FreeTrial               bool   `json:"free_trial" yaml:"free_trial"`
	RefundPolicy            string `json:"refund_policy" yaml:"refund_policy"`
	MinorRestrictions       bool   `json:"minor_restrictions" yaml:"minor_restrictions"`
	UserContentUploads      bool   `json:"user_content_uploads" yaml:"user_content_uploads"`
	ProhibitedActivities    string `json:"prohibited_activities" yaml:"prohibited_activities"`
	SubscriptionFeatures    string `json:"subscription_features,omitempty" yaml:"subscription_features"`
	PaymentTerms            string `json:"payment_terms,omitempty" yaml:"payment_terms"`
}

func (TermsOfServiceRequest) Type() DocumentType     { return TermsOfServiceType }
func (r TermsOfServiceRequest) CompanyInfo() Company { return r.Company }

type DataProcessingAgreementRequest struct {
	Company                     `yaml:",inline"`
	InternationalCustomers      string  `json:"international_customers" yaml:"international_customers"`
	ChildrenUnder18Served       string  `json:"children_under_18_served" yaml:"children_under_18_served"`
	RoleControllerOrProcessor   string  `json:"role_controller_or_processor" yaml:"role_controller_or_processor"`
	SubProcessorsUsed           string  `json:"sub_processors_used" yaml:"sub_processors_used"`
	DataProcessingLocations     string  `json:"data_processing_locations" yaml:"data_processing_locations"`
	SecurityCertifications      string  `json:"security_certifications" yaml:"security_certifications"`
	SecurityMeasures            string  `json:"security_measures,omitempty" yaml:"security_measures"`
	BreachNotificationTimeframe string  `json:"breach_notification_timeframe" yaml:"breach_notification_timeframe"`
	DataDeletionTimelines       string  `json:"data_deletion_timelines" yaml:"data_deletion_timelines"`
	AuditRights                 string  `json:"audit_rights" yaml:"audit_rights"`
	ProcessingSummary           *string `json:"processing_summary,omitempty" yaml:"processing_summary"`
}

func (DataProcessingAgreementRequest) Type() DocumentType     { return DataProcessingAgreementType }
func (r DataProcessingAgreementRequest) CompanyInfo() Company { return r.Company }

type AcceptableUsePolicyRequest struct {
	Company                      `yaml:",inline"`
	InternationalCustomers       string `json:"international_customers" yaml:"international_customers"`
	ChildrenUnder18Served        string `json:"children_under_18_served" yaml:"children_under_18_served"`
	PermittedUsageTypes          string `json:"permitted_usage_types" yaml:"permitted_usage_types"`
	ProhibitedActivities         string `json:"prohibited_activities" yaml:"prohibited_activities"`
	IndustrySpecificRestrictions string `json:"industry_specific_restrictions" yaml:"industry_specific_restrictions"`
	UserMonitoringPractices      string `json:"user_monitoring_practices" yaml:"user_monitoring_practices"`
	ReportingIllegalActivities   string `json:"reporting_illegal_activities" yaml:"reporting_illegal_activities"`
}

func (AcceptableUsePolicyRequest) Type() DocumentType     { return AcceptableUsePolicyType }
func (r AcceptableUsePolicyRequest) CompanyInfo() Company { return r.Company }

type CookiePolicyRequest struct {
	Company            `yaml:",inline"`
	EssentialCookies   bool   `json:"essential_cookies" yaml:"essential_cookies"`
	AnalyticsCookies   bool   `json:"analytics_cookies" yaml:"analytics_cookies"`
	MarketingCookies   bool   `json:"marketing_cookies" yaml:"marketing_cookies"`
	AdvertisingCookies bool   `json:"advertising_cookies" yaml:"advertising_cookies"`
	FunctionalCookies  bool   `json:"functional_cookies" yaml:"functional_cookies"`
	ThirdPartyServices string `json:"third_party_services" yaml:"third_party_services"`
	CookieDuration     string `json:"cookie_duration" yaml:"cookie_duration"`
}

func (CookiePolicyRequest) Type() DocumentType     { return CookiePolicyType }
func (r CookiePolicyRequest) CompanyInfo() Company { return r.Company }

// EnabledCategories lists the enabled cookie categories in a fixed order.
func (r CookiePolicyRequest) EnabledCategories() []string {
	var out []string
	for _, c := range []struct {
		on   bool
		name string
	}{
		{r.EssentialCookies, "Essential cookies"},
		{r.AnalyticsCookies, "Analytics cookies"},
		{r.MarketingCookies, "Marketing cookies"},
		{r.AdvertisingCookies, "Advertising cookies"},
		{r.FunctionalCookies, "Functional cookies"},
	} {
		if c.on {
			out = append(out, c.name)
		}
	}
	return out
}

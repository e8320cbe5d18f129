package policy

import (
	"fmt"
	"strings"

	"github.com/xhad/compligen/internal/models"
	"github.com/xhad/compligen/pkg/postprocess"
	"github.com/xhad/compligen/pkg/prompt"
	"github.com/xhad/compligen/pkg/retriever"
)

// optOutLinks maps lower-cased service names to their opt-out pages.
var optOutLinks = map[string]string{
	"google analytics": "https://tools.google.com/dlpage/gaoptout/",
	"google ads":       "https://adssettings.google.com/",
	"facebook":         "https://www.facebook.com/settings?tab=ads",
	"facebook pixel":   "https://www.facebook.com/settings?tab=ads",
	"meta pixel":       "https://www.facebook.com/settings?tab=ads",
}

var browserHelp = []models.BrowserInstruction{
	{
		BrowserName:  "Google Chrome",
		Instructions: []string{"Open Settings, select Privacy and security, then Third-party cookies or Delete browsing data."},
		HelpLink:     "https://support.google.com/chrome/answer/95647",
	},
	{
		BrowserName:  "Mozilla Firefox",
		Instructions: []string{"Open Settings, select Privacy & Security, then manage cookies and site data."},
		HelpLink:     "https://support.mozilla.org/kb/clear-cookies-and-site-data-firefox",
	},
	{
		BrowserName:  "Apple Safari",
		Instructions: []string{"Open Settings, select Privacy, then Manage Website Data or Block all cookies."},
		HelpLink:     "https://support.apple.com/en-au/guide/safari/sfri11471/mac",
	},
	{
		BrowserName:  "Microsoft Edge",
		Instructions: []string{"Open Settings, select Cookies and site permissions, then Manage and delete cookies and site data."},
		HelpLink:     "https://support.microsoft.com/microsoft-edge/delete-cookies-in-microsoft-edge-63947406-40ac-c3b8-57b9-2a946a29ae09",
	},
}

type cookieDoc = *models.CookiePolicy

var cookieStrategy = strategy[models.CookiePolicyRequest, cookieDoc]{
	docType:     models.CookiePolicyType,
	role:        "You are an expert in privacy law and online tracking technologies drafting clear cookie policies that meet the notification requirements of the Privacy Act 1988 (Cth).",
	minSections: 8,
	sections: []string{
		"What Are Cookies?",
		"Types of Cookies We Use",
		"Why We Use Cookies",
		"Third-Party Cookies",
		"Cookie Duration and Expiry",
		"How to Manage Cookies",
		"Changes to This Policy",
		"Contact Us",
	},
	newDoc: func() cookieDoc { return &models.CookiePolicy{} },

	retrieval: func(req models.CookiePolicyRequest) retriever.Plan {
		return retriever.Plan{
			Legal: retriever.Query{
				Text: withFlags("cookies tracking technologies Privacy Act notification collection APP 5 consent",
					flag{req.AnalyticsCookies, "analytics usage statistics"},
					flag{req.MarketingCookies || req.AdvertisingCookies, "APP 7 direct marketing advertising opt-out"},
					flag{req.FunctionalCookies, "preferences functionality"},
					flag{models.IsSpecified(req.ThirdPartyServices), "APP 6 third party disclosure"},
				),
				K:      8,
				Filter: lawFilter(),
			},
			Example: retriever.Query{
				Text:   fmt.Sprintf("cookie policy %s", req.Industry),
				K:      6,
				Filter: exampleFilter(models.CookiePolicyType.Title()),
			},
		}
	},

	facts: func(req models.CookiePolicyRequest) []prompt.FactGroup {
		return []prompt.FactGroup{companyFacts(req.Company), {
			Title: "Cookie Information",
			Facts: []prompt.Fact{
				{Label: "Essential Cookies", Value: models.YesNo(req.EssentialCookies)},
				{Label: "Analytics Cookies", Value: models.YesNo(req.AnalyticsCookies)},
				{Label: "Marketing Cookies", Value: models.YesNo(req.MarketingCookies)},
				{Label: "Advertising Cookies", Value: models.YesNo(req.AdvertisingCookies)},
				{Label: "Functional Cookies", Value: models.YesNo(req.FunctionalCookies)},
				{Label: "Third-Party Services", Value: req.ThirdPartyServices},
				{Label: "Cookie Duration", Value: req.CookieDuration},
			},
		}}
	},

	instructions: func(req models.CookiePolicyRequest) []string {
		out := []string{
			"List only the cookie types actually used.",
			"Name only the third-party services given above and give their opt-out links where known.",
			"Include cookie management instructions for Google Chrome, Mozilla Firefox, Apple Safari and Microsoft Edge.",
		}
		if !models.IsSpecified(req.ThirdPartyServices) {
			out = append(out, "No third-party services are used. Leave third_party_services empty and say so in Third-Party Cookies.")
		}
		return out
	},

	repair: func(req models.CookiePolicyRequest, plan *postprocess.Plan[cookieDoc]) {
		plan.Normalise = []postprocess.Rule[cookieDoc]{normaliseOptOutLinks}
		plan.Backfill = []postprocess.Rule[cookieDoc]{
			postprocess.FillList(func(d cookieDoc) *[]string { return &d.CookieTypes }, req.EnabledCategories()...),
			fillThirdParties(postprocess.SplitList(req.ThirdPartyServices, ",;")),
			postprocess.FillList(func(d cookieDoc) *[]string { return &d.CookieDuration }, specified(req.CookieDuration)...),
			fillBrowsers,
		}
	},
}

// OptOutLink returns the opt-out page of a known third-party service.
func OptOutLink(service string) (string, bool) {
	link, ok := optOutLinks[strings.ToLower(strings.TrimSpace(service))]
	return link, ok
}

func fillThirdParties(services []string) postprocess.Rule[cookieDoc] {
	return func(d cookieDoc) {
		if len(d.ThirdPartyServices) > 0 || len(services) == 0 {
			return
		}
		d.ThirdPartyServices = make([]models.ThirdPartyService, 0, len(services))
		for _, name := range services {
			svc := models.ThirdPartyService{ServiceName: name, Purpose: []string{}}
			if link, ok := OptOutLink(name); ok {
				svc.OptOutLink = &link
			}
			d.ThirdPartyServices = append(d.ThirdPartyServices, svc)
		}
	}
}

// normaliseOptOutLinks replaces whatever link the model wrote with the known
// one, or nil.
func normaliseOptOutLinks(d cookieDoc) {
	for i := range d.ThirdPartyServices {
		svc := &d.ThirdPartyServices[i]
		svc.OptOutLink = nil
		if link, ok := OptOutLink(svc.ServiceName); ok {
			svc.OptOutLink = &link
		}
	}
}

func fillBrowsers(d cookieDoc) {
	if len(d.BrowserInstructions) > 0 {
		return
	}
	d.BrowserInstructions = make([]models.BrowserInstruction, len(browserHelp))
	for i, b := range browserHelp {
		b.Instructions = append([]string(nil), b.Instructions...)
		d.BrowserInstructions[i] = b
	}
}

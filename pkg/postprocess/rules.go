package postprocess

import "github.com/xhad/compligen/internal/models"

// FillList sets the list field to values when the model left it empty.
// Blank and sentinel values are never written.
func FillList[D models.StructuredDocument](field func(D) *[]string, values ...string) Rule[D] {
	return func(doc D) {
		p := field(doc)
		if len(*p) > 0 {
			return
		}
		out := make([]string, 0, len(values))
		for _, v := range values {
			if !isBlank(v) {
				out = append(out, v)
			}
		}
		if len(out) > 0 {
			*p = out
		}
	}
}

// FillString sets the string field to value when the model left it empty.
func FillString[D models.StructuredDocument](field func(D) *string, value string) Rule[D] {
	return func(doc D) {
		if p := field(doc); isBlank(*p) && !isBlank(value) {
			*p = value
		}
	}
}

// ClearList empties the list field regardless of what the model wrote.
func ClearList[D models.StructuredDocument](field func(D) *[]string) Rule[D] {
	return func(doc D) {
		*field(doc) = []string{}
	}
}

// When returns rule if cond holds and a no-op otherwise.
func When[D models.StructuredDocument](cond bool, rule Rule[D]) Rule[D] {
	if cond {
		return rule
	}
	return func(D) {}
}

// Header builds the canonical document header from the request. The date is
// an ISO YYYY-MM-DD string.
func Header(c models.Company, date string) models.Header {
	return models.Header{
		CompanyName:  c.CompanyName,
		LastUpdated:  date,
		WebsiteURL:   c.Website,
		ContactEmail: c.ContactEmail,
		PhoneNumber:  c.Phone(),
	}
}

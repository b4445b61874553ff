package validation

import "fmt"

var fieldLabels = map[string]string{
	"fullName":     "Full name",
	"email":        "Email",
	"phone":        "Phone number",
	"jobTitle":     "Job title",
	"company":      "Company",
	"institution":  "Institution",
	"title":        "Title",
	"organization": "Organization",
	"issuer":       "Issuer",
	"date":         "Date",
	"startDate":    "Start date",
	"endDate":      "End date",
}

func message(field, tag string) string {
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}
	switch tag {
	case "nonblank":
		return fmt.Sprintf("%s is required", label)
	case "emailshape":
		return fmt.Sprintf("%s is not a valid email address", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

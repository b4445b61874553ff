// Package resumeapi talks to the résumé REST service and maps between the
// wizard's draft shape and the service's wire records.
package resumeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/cv-builder/internal/types"
)

// FlexString decodes from a JSON string, number or null. Some deployments
// of the service send ids and years as numbers.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", b)
		}
		*f = FlexString(n.String())
	}
	return nil
}

// Resume is the wire record exchanged with the service.
type Resume struct {
	ID            FlexString           `json:"id,omitempty"`
	Name          string               `json:"name,omitempty"`
	Template      string               `json:"template,omitempty"`
	Customization *types.Customization `json:"customization,omitempty"`
	CreatedAt     *time.Time           `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time           `json:"updatedAt,omitempty"`

	FullName       string       `json:"fullName"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone"`
	ProfilePicture string       `json:"profilePicture,omitempty"`
	Summary        string       `json:"summary"`
	JobTitle       string       `json:"jobTitle"`
	Educations     []Education  `json:"educations"`
	Experiences    []Experience `json:"experiences"`
	Activities     []Activity   `json:"activities"`
	Awards         []Award      `json:"awards"`
	SkillsResumes  []string     `json:"skillsResumes"`
}

// Education is a wire education entry.
type Education struct {
	SchoolName string     `json:"schoolName"`
	Degree     string     `json:"degree"`
	Major      string     `json:"major"`
	StartYear  FlexString `json:"startYear"`
	EndYear    FlexString `json:"endYear"`
	GPA        FlexString `json:"GPA,omitempty"`
}

// Experience is a wire work history entry.
type Experience struct {
	CompanyName string     `json:"companyName"`
	Position    string     `json:"position"`
	StartYear   FlexString `json:"startYear"`
	EndYear     FlexString `json:"endYear"`
	Description string     `json:"description"`
}

// Activity is a wire activity entry.
type Activity struct {
	ActivityName string     `json:"activityName"`
	Organization string     `json:"organization"`
	StartYear    FlexString `json:"startYear"`
	EndYear      FlexString `json:"endYear"`
	Description  string     `json:"description"`
}

// Award is a wire award entry. DonViTrao is the issuing organization.
type Award struct {
	AwardName   string     `json:"awardName"`
	AwardYear   FlexString `json:"awardYear"`
	DonViTrao   string     `json:"donViTrao"`
	Description string     `json:"description"`
}

// envelope is the {success, data, error, message} wrapper some service
// versions put around payloads.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// decodePayload unmarshals body into out, unwrapping an envelope when present.
func decodePayload(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.Success != nil && len(env.Data) > 0 {
			trimmed = env.Data
		}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

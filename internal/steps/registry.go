// Package steps provides the static wizard step definitions and the draft
// subtree each step owns.
package steps

import "fmt"

// Step ids in wizard order.
const (
	Personal   = "personal"
	Experience = "experience"
	Education  = "education"
	Skills     = "skills"
	Activities = "activities"
	Awards     = "awards"
)

// Draft subtrees (JSON field names of types.ResumeDraft).
const (
	FieldPersonalInfo = "personalInfo"
	FieldExperience   = "experience"
	FieldEducation    = "education"
	FieldSkills       = "skills"
	FieldActivities   = "activities"
	FieldAwards       = "awards"
)

// StepDefinition defines metadata for a wizard step
type StepDefinition struct {
	ID    string
	Title string
	// Fields lists the draft subtrees owned by the step. Ownership is disjoint.
	Fields []string
	// Collection is true when the step edits an ordered list.
	Collection bool
}

// Registry holds all step definitions in navigation order
var Registry = []StepDefinition{
	{ID: Personal, Title: "Personal information", Fields: []string{FieldPersonalInfo}},
	{ID: Experience, Title: "Work experience", Fields: []string{FieldExperience}, Collection: true},
	{ID: Education, Title: "Education", Fields: []string{FieldEducation}, Collection: true},
	{ID: Skills, Title: "Skills", Fields: []string{FieldSkills}, Collection: true},
	{ID: Activities, Title: "Activities", Fields: []string{FieldActivities}, Collection: true},
	{ID: Awards, Title: "Awards", Fields: []string{FieldAwards}, Collection: true},
}

// Count returns the number of wizard steps.
func Count() int {
	return len(Registry)
}

// UnknownStepError is returned for ids or indices outside the registry
type UnknownStepError struct {
	Step string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown step: %s", e.Step)
}

// Lookup returns the definition for a step id.
func Lookup(id string) (StepDefinition, error) {
	for _, def := range Registry {
		if def.ID == id {
			return def, nil
		}
	}
	return StepDefinition{}, &UnknownStepError{Step: id}
}

// At returns the definition at a wizard position.
func At(index int) (StepDefinition, error) {
	if index < 0 || index >= len(Registry) {
		return StepDefinition{}, &UnknownStepError{Step: fmt.Sprintf("#%d", index)}
	}
	return Registry[index], nil
}

// IndexOf returns the wizard position of a step id, or -1.
func IndexOf(id string) int {
	for i, def := range Registry {
		if def.ID == id {
			return i
		}
	}
	return -1
}

// OwnerOf returns the step id owning a draft subtree, or "".
func OwnerOf(field string) string {
	for _, def := range Registry {
		for _, f := range def.Fields {
			if f == field {
				return def.ID
			}
		}
	}
	return ""
}

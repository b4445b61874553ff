package wizard

import (
	"fmt"
	"sort"

	"github.com/jonathan/cv-builder/internal/listedit"
	"github.com/jonathan/cv-builder/internal/steps"
	"github.com/jonathan/cv-builder/internal/types"
)

// Action is one edit to the draft. Actions are applied by Reduce.
type Action interface {
	apply(d types.ResumeDraft, gen listedit.IDFunc) (types.ResumeDraft, error)
}

// SetPersonalField sets a personalInfo field by its JSON name.
type SetPersonalField struct {
	Field string
	Value string
}

// SetEntryField sets a field of the entry at Index in a collection section.
type SetEntryField struct {
	Section string
	Index   int
	Field   string
	Value   string
}

// AppendEntry adds an empty entry with a fresh id to a section.
type AppendEntry struct {
	Section string
}

// RemoveEntry deletes the entry at Index. Works for skills too.
type RemoveEntry struct {
	Section string
	Index   int
}

// MoveEntry relocates an entry. Works for skills too.
type MoveEntry struct {
	Section string
	From    int
	To      int
}

// DropEntry is a drag or keyboard drop of ActiveID over OverID.
type DropEntry struct {
	Section  string
	ActiveID string
	OverID   string
}

// AppendSkill adds a skill at the end.
type AppendSkill struct {
	Value string
}

// SetSkill replaces the skill at Index.
type SetSkill struct {
	Index int
	Value string
}

// SetTemplate selects a template id.
type SetTemplate struct {
	ID string
}

// SetCustomization sets one customization option by its JSON key.
type SetCustomization struct {
	Key   string
	Value string
}

// Reduce applies a to d and returns the new draft. d is never modified.
func Reduce(d types.ResumeDraft, a Action, gen listedit.IDFunc) (types.ResumeDraft, error) {
	if gen == nil {
		gen = listedit.NewID
	}
	return a.apply(d.Clone(), gen)
}

func (a SetPersonalField) apply(d types.ResumeDraft, _ listedit.IDFunc) (types.ResumeDraft, error) {
	p := &d.PersonalInfo
	fields := map[string]*string{
		"fullName":     &p.FullName,
		"email":        &p.Email,
		"phone":        &p.Phone,
		"jobTitle":     &p.JobTitle,
		"summary":      &p.Summary,
		"profileImage": &p.ProfileImage,
	}
	dst, ok := fields[a.Field]
	if !ok {
		return d, &UnknownFieldError{Section: steps.FieldPersonalInfo, Field: a.Field}
	}
	*dst = a.Value
	return d, nil
}

func (a SetEntryField) apply(d types.ResumeDraft, _ listedit.IDFunc) (types.ResumeDraft, error) {
	var fields map[string]*string
	switch a.Section {
	case steps.FieldExperience:
		if err := checkIndex(a.Index, len(d.Experience)); err != nil {
			return d, err
		}
		e := &d.Experience[a.Index]
		fields = map[string]*string{
			"company": &e.Company, "position": &e.Position,
			"startDate": &e.StartDate, "endDate": &e.EndDate, "description": &e.Description,
		}
	case steps.FieldEducation:
		if err := checkIndex(a.Index, len(d.Education)); err != nil {
			return d, err
		}
		e := &d.Education[a.Index]
		fields = map[string]*string{
			"institution": &e.Institution, "degree": &e.Degree, "field": &e.Field,
			"startDate": &e.StartDate, "endDate": &e.EndDate, "gpa": &e.GPA,
		}
	case steps.FieldActivities:
		if err := checkIndex(a.Index, len(d.Activities)); err != nil {
			return d, err
		}
		e := &d.Activities[a.Index]
		fields = map[string]*string{
			"title": &e.Title, "organization": &e.Organization,
			"startDate": &e.StartDate, "endDate": &e.EndDate, "description": &e.Description,
		}
	case steps.FieldAwards:
		if err := checkIndex(a.Index, len(d.Awards)); err != nil {
			return d, err
		}
		e := &d.Awards[a.Index]
		fields = map[string]*string{
			"title": &e.Title, "issuer": &e.Issuer, "date": &e.Date, "description": &e.Description,
		}
	default:
		return d, &UnknownFieldError{Section: a.Section}
	}

	dst, ok := fields[a.Field]
	if !ok {
		return d, &UnknownFieldError{Section: a.Section, Field: a.Field}
	}
	*dst = a.Value
	return d, nil
}

func (a AppendEntry) apply(d types.ResumeDraft, gen listedit.IDFunc) (types.ResumeDraft, error) {
	switch a.Section {
	case steps.FieldExperience:
		d.Experience = listedit.Append(d.Experience, gen, func(id string) types.ExperienceEntry {
			return types.ExperienceEntry{ID: id}
		})
	case steps.FieldEducation:
		d.Education = listedit.Append(d.Education, gen, func(id string) types.EducationEntry {
			return types.EducationEntry{ID: id}
		})
	case steps.FieldActivities:
		d.Activities = listedit.Append(d.Activities, gen, func(id string) types.ActivityEntry {
			return types.ActivityEntry{ID: id}
		})
	case steps.FieldAwards:
		d.Awards = listedit.Append(d.Awards, gen, func(id string) types.AwardEntry {
			return types.AwardEntry{ID: id}
		})
	case steps.FieldSkills:
		d.Skills = append(d.Skills, "")
	default:
		return d, &UnknownFieldError{Section: a.Section}
	}
	return d, nil
}

func (a RemoveEntry) apply(d types.ResumeDraft, _ listedit.IDFunc) (types.ResumeDraft, error) {
	var err error
	switch a.Section {
	case steps.FieldExperience:
		d.Experience, err = keepOnError(d.Experience)(listedit.Remove(d.Experience, a.Index))
	case steps.FieldEducation:
		d.Education, err = keepOnError(d.Education)(listedit.Remove(d.Education, a.Index))
	case steps.FieldSkills:
		d.Skills, err = keepOnError(d.Skills)(listedit.Remove(d.Skills, a.Index))
	case steps.FieldActivities:
		d.Activities, err = keepOnError(d.Activities)(listedit.Remove(d.Activities, a.Index))
	case steps.FieldAwards:
		d.Awards, err = keepOnError(d.Awards)(listedit.Remove(d.Awards, a.Index))
	default:
		err = &UnknownFieldError{Section: a.Section}
	}
	return d, err
}

func (a MoveEntry) apply(d types.ResumeDraft, _ listedit.IDFunc) (types.ResumeDraft, error) {
	var err error
	switch a.Section {
	case steps.FieldExperience:
		d.Experience, err = keepOnError(d.Experience)(listedit.Move(d.Experience, a.From, a.To))
	case steps.FieldEducation:
		d.Education, err = keepOnError(d.Education)(listedit.Move(d.Education, a.From, a.To))
	case steps.FieldSkills:
		d.Skills, err = keepOnError(d.Skills)(listedit.Move(d.Skills, a.From, a.To))
	case steps.FieldActivities:
		d.Activities, err = keepOnError(d.Activities)(listedit.Move(d.Activities, a.From, a.To))
	case steps.FieldAwards:
		d.Awards, err = keepOnError(d.Awards)(listedit.Move(d.Awards, a.From, a.To))
	default:
		err = &UnknownFieldError{Section: a.Section}
	}
	return d, err
}

func (a DropEntry) apply(d types.ResumeDraft, _ listedit.IDFunc) (types.ResumeDraft, error) {
	var err error
	switch a.Section {
	case steps.FieldExperience:
		d.Experience, err = dropped(d.Experience, a.ActiveID, a.OverID)
	case steps.FieldEducation:
		d.Education, err = dropped(d.Education, a.ActiveID, a.OverID)
	case steps.FieldActivities:
		d.Activities, err = dropped(d.Activities, a.ActiveID, a.OverID)
	case steps.FieldAwards:
		d.Awards, err = dropped(d.Awards, a.ActiveID, a.OverID)
	default:
		err = &UnknownFieldError{Section: a.Section}
	}
	return d, err
}

func (a AppendSkill) apply(d types.ResumeDraft, _ listedit.IDFunc) (types.ResumeDraft, error) {
	d.Skills = append(d.Skills, a.Value)
	return d, nil
}

func (a SetSkill) apply(d types.ResumeDraft, _ listedit.IDFunc) (types.ResumeDraft, error) {
	if err := checkIndex(a.Index, len(d.Skills)); err != nil {
		return d, err
	}
	d.Skills[a.Index] = a.Value
	return d, nil
}

func (a SetTemplate) apply(d types.ResumeDraft, _ listedit.IDFunc) (types.ResumeDraft, error) {
	if !types.IsTemplate(a.ID) {
		return d, fmt.Errorf("unknown template %q (have %v)", a.ID, types.Templates)
	}
	d.Template = a.ID
	return d, nil
}

func (a SetCustomization) apply(d types.ResumeDraft, _ listedit.IDFunc) (types.ResumeDraft, error) {
	c, err := d.Customization.WithDefaults().Set(a.Key, a.Value)
	if err != nil {
		return d, err
	}
	d.Customization = c
	return d, nil
}

// Sections lists the collection sections in wizard order.
func Sections() []string {
	out := []string{}
	for _, def := range steps.Registry {
		if def.Collection {
			out = append(out, def.Fields...)
		}
	}
	return out
}

// EntryFields lists the editable field names of a collection section.
func EntryFields(section string) []string {
	var fields []string
	switch section {
	case steps.FieldExperience:
		fields = []string{"company", "position", "startDate", "endDate", "description"}
	case steps.FieldEducation:
		fields = []string{"institution", "degree", "field", "startDate", "endDate", "gpa"}
	case steps.FieldActivities:
		fields = []string{"title", "organization", "startDate", "endDate", "description"}
	case steps.FieldAwards:
		fields = []string{"title", "issuer", "date", "description"}
	}
	return fields
}

// PersonalFields lists the personalInfo field names, sorted.
func PersonalFields() []string {
	fields := []string{"fullName", "email", "phone", "jobTitle", "summary", "profileImage"}
	sort.Strings(fields)
	return fields
}

func checkIndex(index, length int) error {
	if index < 0 || index >= length {
		return &listedit.IndexError{Op: "set", Index: index, Len: length}
	}
	return nil
}

// keepOnError adapts a listedit result so a failed edit leaves the
// original slice in place.
func keepOnError[T any](orig []T) func([]T, error) ([]T, error) {
	return func(out []T, err error) ([]T, error) {
		if err != nil {
			return orig, err
		}
		return out, nil
	}
}

func dropped[T listedit.Entry](items []T, activeID, overID string) ([]T, error) {
	out, _, err := listedit.ResolveDrop(items, activeID, overID)
	if err != nil {
		return items, err
	}
	return out, nil
}

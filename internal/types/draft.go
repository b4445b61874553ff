// Package types provides type definitions for structured data used throughout the cv-builder system.
package types

// ResumeDraft is the in-progress résumé document held by the wizard.
// Collections are ordered; slice order is display order.
type ResumeDraft struct {
	ID            string            `json:"id,omitempty"`
	PersonalInfo  PersonalInfo      `json:"personalInfo"`
	Experience    []ExperienceEntry `json:"experience"`
	Education     []EducationEntry  `json:"education"`
	Skills        []string          `json:"skills"`
	Activities    []ActivityEntry   `json:"activities"`
	Awards        []AwardEntry      `json:"awards"`
	Template      string            `json:"template,omitempty"`
	Customization Customization     `json:"customization"`
}

// PersonalInfo holds the fields owned by the "personal" step.
type PersonalInfo struct {
	FullName     string `json:"fullName" validate:"nonblank"`
	Email        string `json:"email" validate:"nonblank,emailshape"`
	Phone        string `json:"phone" validate:"nonblank"`
	JobTitle     string `json:"jobTitle" validate:"nonblank"`
	Summary      string `json:"summary"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// ExperienceEntry is one work history item.
type ExperienceEntry struct {
	ID          string `json:"id"`
	Company     string `json:"company" validate:"nonblank"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate" validate:"nonblank"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// EducationEntry is one school or degree.
type EducationEntry struct {
	ID          string `json:"id"`
	Institution string `json:"institution" validate:"nonblank"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate" validate:"nonblank"`
	EndDate     string `json:"endDate" validate:"nonblank"`
	GPA         string `json:"gpa,omitempty"`
}

// ActivityEntry is one extracurricular or volunteer activity.
type ActivityEntry struct {
	ID           string `json:"id"`
	Title        string `json:"title" validate:"nonblank"`
	Organization string `json:"organization" validate:"nonblank"`
	StartDate    string `json:"startDate" validate:"nonblank"`
	EndDate      string `json:"endDate"`
	Description  string `json:"description"`
}

// AwardEntry is one prize or recognition.
type AwardEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"nonblank"`
	Issuer      string `json:"issuer" validate:"nonblank"`
	Date        string `json:"date" validate:"nonblank"`
	Description string `json:"description"`
}

// EntryID implements listedit.Entry.
func (e ExperienceEntry) EntryID() string { return e.ID }

// EntryID implements listedit.Entry.
func (e EducationEntry) EntryID() string { return e.ID }

// EntryID implements listedit.Entry.
func (e ActivityEntry) EntryID() string { return e.ID }

// EntryID implements listedit.Entry.
func (e AwardEntry) EntryID() string { return e.ID }

// NewDraft returns an empty draft with non-nil collections and default look.
func NewDraft() ResumeDraft {
	return ResumeDraft{
		Experience:    []ExperienceEntry{},
		Education:     []EducationEntry{},
		Skills:        []string{},
		Activities:    []ActivityEntry{},
		Awards:        []AwardEntry{},
		Template:      DefaultTemplate,
		Customization: DefaultCustomization(),
	}
}

// Clone returns a deep copy so callers can treat drafts as immutable values.
func (d ResumeDraft) Clone() ResumeDraft {
	out := d
	out.Experience = append([]ExperienceEntry{}, d.Experience...)
	out.Education = append([]EducationEntry{}, d.Education...)
	out.Skills = append([]string{}, d.Skills...)
	out.Activities = append([]ActivityEntry{}, d.Activities...)
	out.Awards = append([]AwardEntry{}, d.Awards...)
	return out
}

// Normalize fills nil collections and unset look fields with defaults.
// Decoded drafts may omit empty arrays.
func (d ResumeDraft) Normalize() ResumeDraft {
	if d.Experience == nil {
		d.Experience = []ExperienceEntry{}
	}
	if d.Education == nil {
		d.Education = []EducationEntry{}
	}
	if d.Skills == nil {
		d.Skills = []string{}
	}
	if d.Activities == nil {
		d.Activities = []ActivityEntry{}
	}
	if d.Awards == nil {
		d.Awards = []AwardEntry{}
	}
	if d.Template == "" {
		d.Template = DefaultTemplate
	}
	d.Customization = d.Customization.WithDefaults()
	return d
}

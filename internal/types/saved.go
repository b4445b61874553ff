package types

import "time"

// SavedResume is the repository-side projection of a persisted résumé.
type SavedResume struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Data          ResumeDraft   `json:"data"`
	Template      string        `json:"template"`
	Customization Customization `json:"customization"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// ResumeMeta carries the non-content attributes sent alongside a draft on save.
type ResumeMeta struct {
	Name          string
	Template      string
	Customization Customization
}

// MetaFromDraft derives save metadata from the draft itself.
// The name falls back to the candidate's full name.
func MetaFromDraft(d ResumeDraft) ResumeMeta {
	name := d.PersonalInfo.FullName
	if d.PersonalInfo.JobTitle != "" {
		if name != "" {
			name += " - "
		}
		name += d.PersonalInfo.JobTitle
	}
	return ResumeMeta{
		Name:          name,
		Template:      d.Template,
		Customization: d.Customization,
	}
}

package resumeapi

import (
	"github.com/jonathan/cv-builder/internal/listedit"
	"github.com/jonathan/cv-builder/internal/types"
)

// ToWire maps a draft and its save metadata onto a wire record.
// Collections are always non-nil so the service sees arrays, never null.
func ToWire(d types.ResumeDraft, meta types.ResumeMeta) Resume {
	d = d.Normalize()
	r := Resume{
		ID:             FlexString(d.ID),
		Name:           meta.Name,
		Template:       meta.Template,
		FullName:       d.PersonalInfo.FullName,
		Email:          d.PersonalInfo.Email,
		Phone:          d.PersonalInfo.Phone,
		ProfilePicture: d.PersonalInfo.ProfileImage,
		Summary:        d.PersonalInfo.Summary,
		JobTitle:       d.PersonalInfo.JobTitle,
		Educations:     make([]Education, 0, len(d.Education)),
		Experiences:    make([]Experience, 0, len(d.Experience)),
		Activities:     make([]Activity, 0, len(d.Activities)),
		Awards:         make([]Award, 0, len(d.Awards)),
		SkillsResumes:  append([]string{}, d.Skills...),
	}
	if meta.Template == "" {
		r.Template = d.Template
	}
	c := meta.Customization
	if c == (types.Customization{}) {
		c = d.Customization
	}
	c = c.WithDefaults()
	r.Customization = &c

	for _, e := range d.Education {
		r.Educations = append(r.Educations, Education{
			SchoolName: e.Institution,
			Degree:     e.Degree,
			Major:      e.Field,
			StartYear:  FlexString(e.StartDate),
			EndYear:    FlexString(e.EndDate),
			GPA:        FlexString(e.GPA),
		})
	}
	for _, e := range d.Experience {
		r.Experiences = append(r.Experiences, Experience{
			CompanyName: e.Company,
			Position:    e.Position,
			StartYear:   FlexString(e.StartDate),
			EndYear:     FlexString(e.EndDate),
			Description: e.Description,
		})
	}
	for _, a := range d.Activities {
		r.Activities = append(r.Activities, Activity{
			ActivityName: a.Title,
			Organization: a.Organization,
			StartYear:    FlexString(a.StartDate),
			EndYear:      FlexString(a.EndDate),
			Description:  a.Description,
		})
	}
	for _, a := range d.Awards {
		r.Awards = append(r.Awards, Award{
			AwardName:   a.Title,
			AwardYear:   FlexString(a.Date),
			DonViTrao:   a.Issuer,
			Description: a.Description,
		})
	}
	return r
}

// FromWire maps a wire record back into a saved résumé. Entry ids are
// local and are generated fresh with gen; nil gen uses listedit.NewID.
func FromWire(r Resume, gen listedit.IDFunc) types.SavedResume {
	if gen == nil {
		gen = listedit.NewID
	}

	d := types.NewDraft()
	d.ID = string(r.ID)
	d.PersonalInfo = types.PersonalInfo{
		FullName:     r.FullName,
		Email:        r.Email,
		Phone:        r.Phone,
		JobTitle:     r.JobTitle,
		Summary:      r.Summary,
		ProfileImage: r.ProfilePicture,
	}
	for _, e := range r.Educations {
		d.Education = append(d.Education, types.EducationEntry{
			ID:          gen(),
			Institution: e.SchoolName,
			Degree:      e.Degree,
			Field:       e.Major,
			StartDate:   string(e.StartYear),
			EndDate:     string(e.EndYear),
			GPA:         string(e.GPA),
		})
	}
	for _, e := range r.Experiences {
		d.Experience = append(d.Experience, types.ExperienceEntry{
			ID:          gen(),
			Company:     e.CompanyName,
			Position:    e.Position,
			StartDate:   string(e.StartYear),
			EndDate:     string(e.EndYear),
			Description: e.Description,
		})
	}
	for _, a := range r.Activities {
		d.Activities = append(d.Activities, types.ActivityEntry{
			ID:           gen(),
			Title:        a.ActivityName,
			Organization: a.Organization,
			StartDate:    string(a.StartYear),
			EndDate:      string(a.EndYear),
			Description:  a.Description,
		})
	}
	for _, a := range r.Awards {
		d.Awards = append(d.Awards, types.AwardEntry{
			ID:          gen(),
			Title:       a.AwardName,
			Issuer:      a.DonViTrao,
			Date:        string(a.AwardYear),
			Description: a.Description,
		})
	}
	d.Skills = append(d.Skills, r.SkillsResumes...)

	if r.Template != "" {
		d.Template = r.Template
	}
	if r.Customization != nil {
		d.Customization = r.Customization.WithDefaults()
	}

	saved := types.SavedResume{
		ID:            string(r.ID),
		Name:          r.Name,
		Data:          d,
		Template:      d.Template,
		Customization: d.Customization,
	}
	if saved.Name == "" {
		saved.Name = types.MetaFromDraft(d).Name
	}
	if r.CreatedAt != nil {
		saved.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		saved.UpdatedAt = *r.UpdatedAt
	}
	return saved
}

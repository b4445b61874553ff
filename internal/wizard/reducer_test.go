package wizard

import (
	"testing"

	"github.com/jonathan/cv-builder/internal/listedit"
	"github.com/jonathan/cv-builder/internal/steps"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter() listedit.IDFunc {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	i := 0
	return func() string {
		id := ids[i]
		i++
		return id
	}
}

func reduceAll(t *testing.T, d types.ResumeDraft, actions ...Action) types.ResumeDraft {
	t.Helper()
	gen := counter()
	for _, a := range actions {
		var err error
		d, err = Reduce(d, a, gen)
		require.NoError(t, err, "%T", a)
	}
	return d
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	d := reduceAll(t, types.NewDraft(),
		AppendEntry{Section: steps.FieldAwards},
		AppendSkill{Value: "Go"},
	)
	before := d.Clone()

	_, err := Reduce(d, SetEntryField{Section: steps.FieldAwards, Index: 0, Field: "title", Value: "Gold"}, nil)
	require.NoError(t, err)
	_, err = Reduce(d, SetSkill{Index: 0, Value: "Rust"}, nil)
	require.NoError(t, err)

	assert.Equal(t, before, d)
}

func TestReduce_EntryFields(t *testing.T) {
	d := reduceAll(t, types.NewDraft(),
		AppendEntry{Section: steps.FieldExperience},
		SetEntryField{Section: steps.FieldExperience, Index: 0, Field: "company", Value: "Acme"},
		AppendEntry{Section: steps.FieldEducation},
		SetEntryField{Section: steps.FieldEducation, Index: 0, Field: "gpa", Value: "3.9"},
		AppendEntry{Section: steps.FieldActivities},
		SetEntryField{Section: steps.FieldActivities, Index: 0, Field: "organization", Value: "Club"},
		AppendEntry{Section: steps.FieldAwards},
		SetEntryField{Section: steps.FieldAwards, Index: 0, Field: "issuer", Value: "IEEE"},
	)

	assert.Equal(t, types.ExperienceEntry{ID: "a", Company: "Acme"}, d.Experience[0])
	assert.Equal(t, types.EducationEntry{ID: "b", GPA: "3.9"}, d.Education[0])
	assert.Equal(t, "Club", d.Activities[0].Organization)
	assert.Equal(t, "IEEE", d.Awards[0].Issuer)
}

func TestReduce_Errors(t *testing.T) {
	d := types.NewDraft()

	tests := []struct {
		name   string
		action Action
	}{
		{"unknown personal field", SetPersonalField{Field: "age"}},
		{"unknown section", AppendEntry{Section: "hobbies"}},
		{"unknown entry field", SetEntryField{Section: steps.FieldExperience, Index: 0, Field: "salary"}},
		{"entry index out of range", SetEntryField{Section: steps.FieldAwards, Index: 0, Field: "title"}},
		{"remove out of range", RemoveEntry{Section: steps.FieldSkills, Index: 0}},
		{"move out of range", MoveEntry{Section: steps.FieldEducation, From: 0, To: 1}},
		{"skill out of range", SetSkill{Index: 3}},
		{"bad template", SetTemplate{ID: "fancy"}},
		{"bad customization", SetCustomization{Key: "font", Value: "comic"}},
		{"drop on skills", DropEntry{Section: steps.FieldSkills}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "unknown entry field" {
				d = reduceAll(t, d, AppendEntry{Section: steps.FieldExperience})
			}
			_, err := Reduce(d, tt.action, nil)
			assert.Error(t, err)
		})
	}
}

func TestReduce_MoveAndDrop(t *testing.T) {
	d := reduceAll(t, types.NewDraft(),
		AppendEntry{Section: steps.FieldExperience},
		AppendEntry{Section: steps.FieldExperience},
		AppendEntry{Section: steps.FieldExperience},
	)

	moved := reduceAll(t, d, MoveEntry{Section: steps.FieldExperience, From: 0, To: 2})
	assert.Equal(t, []string{"b", "c", "a"}, experienceIDs(moved))

	dropped := reduceAll(t, d, DropEntry{Section: steps.FieldExperience, ActiveID: "c", OverID: "a"})
	assert.Equal(t, []string{"c", "a", "b"}, experienceIDs(dropped))

	same := reduceAll(t, d, DropEntry{Section: steps.FieldExperience, ActiveID: "b", OverID: "b"})
	assert.Equal(t, experienceIDs(d), experienceIDs(same))
}

func TestReduce_Skills(t *testing.T) {
	d := reduceAll(t, types.NewDraft(),
		AppendSkill{Value: "Go"},
		AppendSkill{Value: "SQL"},
		AppendEntry{Section: steps.FieldSkills},
		SetSkill{Index: 2, Value: "Docker"},
		MoveEntry{Section: steps.FieldSkills, From: 2, To: 0},
		RemoveEntry{Section: steps.FieldSkills, Index: 1},
	)
	assert.Equal(t, []string{"Docker", "SQL"}, d.Skills)
}

func TestReduce_Look(t *testing.T) {
	d := reduceAll(t, types.NewDraft(),
		SetTemplate{ID: types.TemplateMinimal},
		SetCustomization{Key: "colorScheme", Value: "orange"},
	)
	assert.Equal(t, types.TemplateMinimal, d.Template)
	assert.Equal(t, "orange", d.Customization.ColorScheme)
	assert.Equal(t, "inter", d.Customization.Font)
}

func TestSectionsAndFields(t *testing.T) {
	assert.Equal(t, []string{
		steps.FieldExperience, steps.FieldEducation, steps.FieldSkills, steps.FieldActivities, steps.FieldAwards,
	}, Sections())
	assert.Contains(t, EntryFields(steps.FieldEducation), "institution")
	assert.Empty(t, EntryFields(steps.FieldSkills))
	assert.Contains(t, PersonalFields(), "jobTitle")
}

func experienceIDs(d types.ResumeDraft) []string {
	ids := make([]string, len(d.Experience))
	for i, e := range d.Experience {
		ids[i] = e.ID
	}
	return ids
}

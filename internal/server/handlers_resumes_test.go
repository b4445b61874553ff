package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/resumeapi"
	"github.com/jonathan/cv-builder/internal/types"
)

func sampleRecord() map[string]any {
	return map[string]any{
		"name":     "Ada - Analyst",
		"template": "classic",
		"fullName": "Ada Lovelace",
		"email":    "ada@example.com",
		"phone":    "1",
		"summary":  "First programmer",
		"jobTitle": "Analyst",
		"experiences": []map[string]any{
			{"companyName": "Engines", "position": "Lead", "startYear": 1842, "endYear": "1843", "description": "Notes"},
		},
		"educations":    []map[string]any{},
		"activities":    []map[string]any{},
		"awards":        []map[string]any{{"awardName": "Medal", "awardYear": "1850", "donViTrao": "Society"}},
		"skillsResumes": []string{"Math"},
	}
}

func decodeData[T any](t *testing.T, env envelopeResponse) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestCreateAndGetResume(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "user-1")

	status, env := s.call(t, http.MethodPost, "/api/resumes", tok, sampleRecord())
	require.Equal(t, http.StatusCreated, status, env.Error)
	assert.True(t, env.Success)

	created := decodeData[resumeapi.Resume](t, env)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Ada - Analyst", created.Name)
	assert.Equal(t, "classic", created.Template)
	assert.Equal(t, resumeapi.FlexString("1842"), created.Experiences[0].StartYear)
	require.NotNil(t, created.CreatedAt)
	require.NotNil(t, created.Customization)
	assert.Equal(t, types.DefaultCustomization(), *created.Customization)

	status, env = s.call(t, http.MethodGet, "/api/resumes/"+string(created.ID), tok, nil)
	require.Equal(t, http.StatusOK, status)
	got := decodeData[resumeapi.Resume](t, env)
	assert.Equal(t, "Ada Lovelace", got.FullName)
	assert.Equal(t, "Society", got.Awards[0].DonViTrao)
	assert.Equal(t, []string{"Math"}, got.SkillsResumes)
	assert.Empty(t, got.Educations)
	assert.NotNil(t, got.Educations)
}

func TestCreateResume_Validation(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "user-1")

	noExperiences := sampleRecord()
	delete(noExperiences, "experiences")

	noName := sampleRecord()
	delete(noName, "name")
	delete(noName, "fullName")
	delete(noName, "jobTitle")

	badTemplate := sampleRecord()
	badTemplate["template"] = "fancy"

	tests := []struct {
		name    string
		body    any
		wantErr string
	}{
		{"missing experiences", noExperiences, "experiences"},
		{"missing name", noName, "name"},
		{"unknown template", badTemplate, "template"},
		{"not JSON", []byte("{"), "invalid JSON"},
		{"not an object", []byte("null"), "expected a JSON object"},
		{"wrong type", []byte(`{"experiences": "x"}`), "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.call(t, http.MethodPost, "/api/resumes", tok, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.Contains(t, env.Error, tt.wantErr)
		})
	}
}

func TestCreateResume_NameFallsBackToCandidate(t *testing.T) {
	s := newTestServer(t)
	rec := sampleRecord()
	delete(rec, "name")

	status, env := s.call(t, http.MethodPost, "/api/resumes", s.token(t, "u"), rec)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Ada Lovelace - Analyst", decodeData[resumeapi.Resume](t, env).Name)
}

func TestCreateResume_IgnoresClientID(t *testing.T) {
	s := newTestServer(t)
	rec := sampleRecord()
	rec["id"] = "client-chosen"

	status, env := s.call(t, http.MethodPost, "/api/resumes", s.token(t, "u"), rec)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEqual(t, resumeapi.FlexString("client-chosen"), decodeData[resumeapi.Resume](t, env).ID)
}

func TestPatchResume_AppliesOnlyPresentKeys(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "user-1")

	_, env := s.call(t, http.MethodPost, "/api/resumes", tok, sampleRecord())
	created := decodeData[resumeapi.Resume](t, env)

	time.Sleep(5 * time.Millisecond)
	status, env := s.call(t, http.MethodPatch, "/api/resumes/"+string(created.ID), tok, map[string]any{
		"summary":       "Updated",
		"skillsResumes": []string{"Math", "Poetry"},
		"createdAt":     "2000-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	patched := decodeData[resumeapi.Resume](t, env)

	assert.Equal(t, created.ID, patched.ID)
	assert.Equal(t, "Updated", patched.Summary)
	assert.Equal(t, []string{"Math", "Poetry"}, patched.SkillsResumes)
	assert.Equal(t, "Ada Lovelace", patched.FullName)
	assert.Equal(t, "classic", patched.Template)
	assert.Equal(t, "Engines", patched.Experiences[0].CompanyName)
	assert.True(t, created.CreatedAt.Equal(*patched.CreatedAt))
	assert.True(t, patched.UpdatedAt.After(*created.UpdatedAt))
}

func TestPatchResume_Errors(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "user-1")

	status, _ := s.call(t, http.MethodPatch, "/api/resumes/missing", tok, map[string]any{"summary": "x"})
	assert.Equal(t, http.StatusNotFound, status)

	_, env := s.call(t, http.MethodPost, "/api/resumes", tok, sampleRecord())
	id := string(decodeData[resumeapi.Resume](t, env).ID)

	status, env = s.call(t, http.MethodPatch, "/api/resumes/"+id, tok, map[string]any{"template": "fancy"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "template")
}

func TestDeleteResume(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "user-1")

	_, env := s.call(t, http.MethodPost, "/api/resumes", tok, sampleRecord())
	id := string(decodeData[resumeapi.Resume](t, env).ID)

	status, env := s.call(t, http.MethodDelete, "/api/resumes/"+id, tok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "Resume deleted successfully", env.Message)

	status, env = s.call(t, http.MethodDelete, "/api/resumes/"+id, tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, env.Error, "not found")

	status, _ = s.call(t, http.MethodGet, "/api/resumes/"+id, tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestResumes_ScopedPerOwner(t *testing.T) {
	s := newTestServer(t)
	alice, bob := s.token(t, "alice"), s.token(t, "bob")

	_, env := s.call(t, http.MethodPost, "/api/resumes", alice, sampleRecord())
	id := string(decodeData[resumeapi.Resume](t, env).ID)

	status, env := s.call(t, http.MethodGet, "/api/resumes", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeData[[]resumeapi.Resume](t, env))
	assert.JSONEq(t, "[]", string(env.Data))

	status, _ = s.call(t, http.MethodGet, "/api/resumes/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.call(t, http.MethodDelete, "/api/resumes/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = s.call(t, http.MethodGet, "/api/resumes", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[[]resumeapi.Resume](t, env), 1)
}

// The repository client and the service agree on the contract end to end.
func TestClientRoundTrip(t *testing.T) {
	s := newTestServer(t)
	client, err := resumeapi.New(resumeapi.Options{
		BaseURL: s.ts.URL,
		Prefix:  "/api",
		Token:   s.token(t, "user-1"),
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	ctx := context.Background()

	d := types.NewDraft()
	d.PersonalInfo = types.PersonalInfo{FullName: "Ada", Email: "ada@example.com", Phone: "1", JobTitle: "Analyst"}
	d.Experience = []types.ExperienceEntry{{ID: "local", Company: "Engines", StartDate: "1842"}}
	d.Skills = []string{"Math"}
	d.Template = types.TemplateMinimal

	created, err := client.Create(ctx, d, types.MetaFromDraft(d))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, created.ID, created.Data.ID)
	assert.Equal(t, types.TemplateMinimal, created.Template)
	assert.Equal(t, "Engines", created.Data.Experience[0].Company)

	d.ID = created.ID
	d.Skills = append(d.Skills, "Go")
	updated, err := client.Update(ctx, created.ID, d, types.MetaFromDraft(d))
	require.NoError(t, err)
	assert.Equal(t, []string{"Math", "Go"}, updated.Data.Skills)

	list, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	require.NoError(t, client.Delete(ctx, created.ID))

	_, err = client.Get(ctx, created.ID)
	var apiErr *resumeapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
}

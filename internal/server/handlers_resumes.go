package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/cv-builder/internal/resumeapi"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/types"
)

// maxBodyBytes caps request bodies; profile pictures travel inline.
const maxBodyBytes = 8 << 20

// readOnlyKeys are server-owned and ignored in request bodies.
var readOnlyKeys = []string{"id", "createdAt", "updatedAt"}

// toRecord renders a stored résumé as a wire record.
func toRecord(s types.SavedResume) resumeapi.Resume {
	rec := resumeapi.ToWire(s.Data, types.ResumeMeta{
		Name:          s.Name,
		Template:      s.Template,
		Customization: s.Customization,
	})
	rec.ID = resumeapi.FlexString(s.ID)
	created, updated := s.CreatedAt, s.UpdatedAt
	rec.CreatedAt, rec.UpdatedAt = &created, &updated
	return rec
}

// fromRecord validates a wire record and turns it into a résumé to store.
func fromRecord(rec resumeapi.Resume) (types.SavedResume, error) {
	if rec.Template != "" && !types.IsTemplate(rec.Template) {
		return types.SavedResume{}, &ErrValidation{Field: "template", Message: fmt.Sprintf("unknown template %q", rec.Template)}
	}
	saved := resumeapi.FromWire(rec, uuid.NewString)
	if saved.Name == "" {
		return types.SavedResume{}, &ErrValidation{Field: "name", Message: "name or fullName is required"}
	}
	return saved, nil
}

// decodeFields reads a JSON object body, keeping raw values per key.
func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&fields); err != nil {
		return nil, &ErrValidation{Field: "body", Message: "invalid JSON object: " + err.Error()}
	}
	if fields == nil {
		return nil, &ErrValidation{Field: "body", Message: "expected a JSON object"}
	}
	for _, k := range readOnlyKeys {
		delete(fields, k)
	}
	return fields, nil
}

func decodeRecord(fields map[string]json.RawMessage) (resumeapi.Resume, error) {
	var rec resumeapi.Resume
	raw, err := json.Marshal(fields)
	if err != nil {
		return rec, fmt.Errorf("failed to re-encode body: %w", err)
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, &ErrValidation{Field: "body", Message: err.Error()}
	}
	return rec, nil
}

// handleListResumes returns the caller's résumés, newest first.
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	owner, err := middleware.GetOwner(r)
	if err != nil {
		s.unauthorized(w, r, err.Error())
		return
	}

	list, err := s.store.ListResumes(r.Context(), owner)
	if err != nil {
		s.failure(w, r, fmt.Errorf("failed to list resumes: %w", err))
		return
	}

	out := make([]resumeapi.Resume, 0, len(list))
	for _, saved := range list {
		out = append(out, toRecord(saved))
	}
	s.dataResponse(w, http.StatusOK, out)
}

// handleGetResume returns one résumé.
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	owner, err := middleware.GetOwner(r)
	if err != nil {
		s.unauthorized(w, r, err.Error())
		return
	}
	id := r.PathValue("id")

	saved, err := s.store.GetResume(r.Context(), owner, id)
	if err != nil {
		s.failure(w, r, fmt.Errorf("failed to get resume: %w", err))
		return
	}
	if saved == nil {
		s.failure(w, r, &ErrNotFound{ID: id})
		return
	}
	s.dataResponse(w, http.StatusOK, toRecord(*saved))
}

// handleCreateResume stores a new résumé. The experiences collection must be
// present, even if empty.
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	owner, err := middleware.GetOwner(r)
	if err != nil {
		s.unauthorized(w, r, err.Error())
		return
	}

	fields, err := decodeFields(w, r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if _, ok := fields["experiences"]; !ok {
		s.failure(w, r, &ErrValidation{Field: "experiences", Message: "is required"})
		return
	}
	rec, err := decodeRecord(fields)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	saved, err := fromRecord(rec)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	created, err := s.store.CreateResume(r.Context(), owner, saved)
	if err != nil {
		s.failure(w, r, fmt.Errorf("failed to create resume: %w", err))
		return
	}
	s.logger.Info().Str("owner", owner).Str("id", created.ID).Msg("resume created")
	s.dataResponse(w, http.StatusCreated, toRecord(*created))
}

// handlePatchResume applies the top-level keys present in the body over
// the stored record. Absent keys keep their stored values.
func (s *Server) handlePatchResume(w http.ResponseWriter, r *http.Request) {
	owner, err := middleware.GetOwner(r)
	if err != nil {
		s.unauthorized(w, r, err.Error())
		return
	}
	id := r.PathValue("id")

	fields, err := decodeFields(w, r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	existing, err := s.store.GetResume(r.Context(), owner, id)
	if err != nil {
		s.failure(w, r, fmt.Errorf("failed to get resume: %w", err))
		return
	}
	if existing == nil {
		s.failure(w, r, &ErrNotFound{ID: id})
		return
	}

	merged, err := mergeFields(toRecord(*existing), fields)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	rec, err := decodeRecord(merged)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	saved, err := fromRecord(rec)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	saved.ID = id

	updated, err := s.store.UpdateResume(r.Context(), owner, saved)
	if err != nil {
		s.failure(w, r, fmt.Errorf("failed to update resume: %w", err))
		return
	}
	if updated == nil {
		s.failure(w, r, &ErrNotFound{ID: id})
		return
	}
	s.dataResponse(w, http.StatusOK, toRecord(*updated))
}

// mergeFields overlays patch onto the JSON form of base.
func mergeFields(base resumeapi.Resume, patch map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stored resume: %w", err)
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, fmt.Errorf("failed to decode stored resume: %w", err)
	}
	for k, v := range patch {
		merged[k] = v
	}
	for _, k := range readOnlyKeys {
		delete(merged, k)
	}
	return merged, nil
}

// handleDeleteResume removes a résumé permanently.
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	owner, err := middleware.GetOwner(r)
	if err != nil {
		s.unauthorized(w, r, err.Error())
		return
	}
	id := r.PathValue("id")

	deleted, err := s.store.DeleteResume(r.Context(), owner, id)
	if err != nil {
		s.failure(w, r, fmt.Errorf("failed to delete resume: %w", err))
		return
	}
	if !deleted {
		s.failure(w, r, &ErrNotFound{ID: id})
		return
	}
	s.logger.Info().Str("owner", owner).Str("id", id).Msg("resume deleted")
	s.jsonResponse(w, http.StatusOK, envelope{Success: true, Message: "Resume deleted successfully"})
}

package resumeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "tester",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func newTestClient(t *testing.T, ts *httptest.Server, token string) *Client {
	t.Helper()
	c, err := New(Options{
		BaseURL:    ts.URL,
		Prefix:     "/api",
		Token:      token,
		HTTPClient: ts.Client(),
		IDs:        sequentialIDs(),
	})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "localhost"})
	assert.Error(t, err)
}

func TestClient_List(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/resumes", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": 1, "name": "First", "fullName": "An", "experiences": []any{}},
				{"id": "b", "fullName": "Binh", "jobTitle": "QA"},
			},
		})
	}))
	defer ts.Close()

	list, err := newTestClient(t, ts, "").List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "First", list[0].Name)
	assert.Equal(t, "Binh - QA", list[1].Name)
}

func TestClient_Get(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resumes/7", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"fullName":    "An",
			"experiences": []map[string]any{{"companyName": "Acme", "startYear": 2020}},
		})
	}))
	defer ts.Close()

	saved, err := newTestClient(t, ts, "").Get(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "7", saved.ID)
	assert.Equal(t, "7", saved.Data.ID)
	require.Len(t, saved.Data.Experience, 1)
	assert.Equal(t, "Acme", saved.Data.Experience[0].Company)
	assert.Equal(t, "2020", saved.Data.Experience[0].StartDate)
	assert.Equal(t, "id-1", saved.Data.Experience[0].ID)
}

func TestClient_CreateSendsWireRecord(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/resumes", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		got["id"] = 99
		got["createdAt"] = "2024-01-02T03:04:05Z"
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": got})
	}))
	defer ts.Close()

	d := fullDraft()
	d.ID = ""
	saved, err := newTestClient(t, ts, "").Create(context.Background(), d, types.MetaFromDraft(d))
	require.NoError(t, err)

	assert.Equal(t, "99", saved.ID)
	assert.Equal(t, "An Nguyen - Backend Developer", saved.Name)
	assert.Equal(t, 2024, saved.CreatedAt.Year())
	assert.Contains(t, got, "experiences")
	assert.Contains(t, got, "skillsResumes")
}

func TestClient_CreateWithoutIDFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"fullName": "An"})
	}))
	defer ts.Close()

	_, err := newTestClient(t, ts, "").Create(context.Background(), fullDraft(), types.ResumeMeta{})
	assert.Error(t, err)
}

func TestClient_UpdateUsesPatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/resumes/42", r.URL.Path)
		var body Resume
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, FlexString("42"), body.ID)
		writeJSON(w, http.StatusOK, body)
	}))
	defer ts.Close()

	saved, err := newTestClient(t, ts, "").Update(context.Background(), "42", fullDraft(), types.ResumeMeta{Name: "CV"})
	require.NoError(t, err)
	assert.Equal(t, "42", saved.ID)
	assert.Equal(t, "CV", saved.Name)
}

func TestClient_Delete(t *testing.T) {
	var called atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/resumes/a%2Fb", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	require.NoError(t, newTestClient(t, ts, "").Delete(context.Background(), "a/b"))
	assert.True(t, called.Load())
}

func TestClient_APIErrorMessage(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantUser    string
	}{
		{"error field", http.StatusBadRequest, `{"success":false,"error":"Name and data are required"}`, "Name and data are required", "Name and data are required"},
		{"message field", http.StatusConflict, `{"message":"Already exists"}`, "Already exists", "Already exists"},
		{"no detail", http.StatusInternalServerError, `oops`, "", GenericMessage},
		{"not found", http.StatusNotFound, ``, "", "The résumé could not be found."},
		{"unauthorized", http.StatusUnauthorized, `{}`, "", "You are not authorized to perform this action."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := newTestClient(t, ts, "").Get(context.Background(), "1")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantUser, UserMessage(err))
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := newTestClient(t, ts, "")
	ts.Close()

	_, err := c.List(context.Background())
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, UserMessage(err), "Could not reach")
}

func TestClient_BearerHeader(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []any{})
	}))
	defer ts.Close()

	_, err := newTestClient(t, ts, token).List(context.Background())
	require.NoError(t, err)
}

func TestClient_ExpiredCredentialFailsFast(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, []any{})
	}))
	defer ts.Close()

	token := signedToken(t, time.Now().Add(-time.Hour))
	_, err := newTestClient(t, ts, token).List(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCredentialExpired))
	assert.Equal(t, int32(0), hits.Load())
	assert.Contains(t, UserMessage(err), "expired")
}

func TestCredentialExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	assert.True(t, CredentialExpiry(signedToken(t, exp)).Equal(exp))
	assert.True(t, CredentialExpiry("opaque-token").IsZero())
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, GenericMessage, UserMessage(errors.New("boom")))
	assert.Contains(t, UserMessage(context.DeadlineExceeded), "did not respond")
}

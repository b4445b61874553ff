package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/config"
)

type testServer struct {
	*Server
	store *MemoryStore
	ts    *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := NewMemoryStore()
	s, err := New(Config{
		Prefix: "/api",
		Store:  store,
		JWT:    &config.JWTConfig{Secret: testSecret, ExpirationHours: 1},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testServer{Server: s, store: store, ts: ts}
}

func (s *testServer) token(t *testing.T, owner string) string {
	t.Helper()
	tok, err := s.Tokens().GenerateToken(owner)
	require.NoError(t, err)
	return tok
}

// call sends body (marshalled unless already []byte) and decodes the envelope.
func (s *testServer) call(t *testing.T, method, path, token string, body any) (int, envelopeResponse) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.ts.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelopeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

type envelopeResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Status  string          `json:"status"`
}

func TestNew_RequiresStoreAndJWT(t *testing.T) {
	_, err := New(Config{JWT: &config.JWTConfig{Secret: "s", ExpirationHours: 1}})
	assert.Error(t, err)

	_, err = New(Config{Store: NewMemoryStore()})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	status, env := s.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", env.Status)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/resumes", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestResumes_RequireToken(t *testing.T) {
	s := newTestServer(t)

	status, env := s.call(t, http.MethodGet, "/api/resumes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "unauthorized")

	status, _ = s.call(t, http.MethodGet, "/api/resumes", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPrefixIsConfigurable(t *testing.T) {
	s, err := New(Config{
		Store: NewMemoryStore(),
		JWT:   &config.JWTConfig{Secret: testSecret, ExpirationHours: 1},
	})
	require.NoError(t, err)
	tok, err := s.Tokens().GenerateToken("u")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/resumes", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServe_StopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

package resumeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/cv-builder/internal/listedit"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/rs/zerolog"
)

// DefaultTimeout is the per-request timeout when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

const maxErrorBody = 64 << 10

// Options configures a Client.
type Options struct {
	BaseURL string
	// Prefix is inserted between BaseURL and /resumes, e.g. "/api".
	Prefix     string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
	// IDs generates local entry ids for decoded records.
	IDs listedit.IDFunc
	Now func() time.Time
}

// Client performs one round trip per call and keeps no state between calls.
type Client struct {
	endpoint string
	http     *http.Client
	ids      listedit.IDFunc
	log      zerolog.Logger
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid résumé service URL %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ids := opts.IDs
	if ids == nil {
		ids = listedit.NewID
	}

	prefix := strings.Trim(opts.Prefix, "/")
	endpoint := strings.TrimRight(base.String(), "/")
	if prefix != "" {
		endpoint += "/" + prefix
	}
	endpoint += "/resumes"

	return &Client{
		endpoint: endpoint,
		http:     authorizedClient(httpClient, opts.Token, now),
		ids:      ids,
		log:      opts.Logger,
	}, nil
}

// List returns the current user's saved résumés.
func (c *Client) List(ctx context.Context) ([]types.SavedResume, error) {
	var records []Resume
	if err := c.do(ctx, http.MethodGet, c.endpoint, nil, &records); err != nil {
		return nil, err
	}
	out := make([]types.SavedResume, 0, len(records))
	for _, r := range records {
		out = append(out, FromWire(r, c.ids))
	}
	return out, nil
}

// Get fetches one résumé.
func (c *Client) Get(ctx context.Context, id string) (types.SavedResume, error) {
	var r Resume
	if err := c.do(ctx, http.MethodGet, c.resourceURL(id), nil, &r); err != nil {
		return types.SavedResume{}, err
	}
	if r.ID == "" {
		r.ID = FlexString(id)
	}
	return FromWire(r, c.ids), nil
}

// Create stores a new résumé and returns the server's record.
func (c *Client) Create(ctx context.Context, d types.ResumeDraft, meta types.ResumeMeta) (types.SavedResume, error) {
	body := ToWire(d, meta)
	body.ID = ""

	var r Resume
	if err := c.do(ctx, http.MethodPost, c.endpoint, body, &r); err != nil {
		return types.SavedResume{}, err
	}
	if r.ID == "" {
		return types.SavedResume{}, fmt.Errorf("create response carried no résumé id")
	}
	return FromWire(r, c.ids), nil
}

// Update sends the whole record as a PATCH and returns the server's record.
func (c *Client) Update(ctx context.Context, id string, d types.ResumeDraft, meta types.ResumeMeta) (types.SavedResume, error) {
	if id == "" {
		return types.SavedResume{}, fmt.Errorf("update requires a résumé id")
	}
	body := ToWire(d, meta)
	body.ID = FlexString(id)

	var r Resume
	if err := c.do(ctx, http.MethodPatch, c.resourceURL(id), body, &r); err != nil {
		return types.SavedResume{}, err
	}
	if r.ID == "" {
		r.ID = FlexString(id)
	}
	return FromWire(r, c.ids), nil
}

// Delete removes a résumé.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete requires a résumé id")
	}
	return c.do(ctx, http.MethodDelete, c.resourceURL(id), nil, nil)
}

func (c *Client) resourceURL(id string) string {
	return c.endpoint + "/" + url.PathEscape(id)
}

// do performs one request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, target string, in, out any) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("url", target).Msg("résumé service request failed")
		if errors.Is(err, ErrCredentialExpired) {
			return ErrCredentialExpired
		}
		return &TransportError{Method: method, URL: target, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("résumé service request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method:  method,
			URL:     target,
			Status:  resp.StatusCode,
			Message: errorMessage(data),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, URL: target, Cause: err}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		if out != nil {
			return fmt.Errorf("%s %s: empty response body", method, target)
		}
		return nil
	}
	return decodePayload(data, out)
}

// errorMessage extracts the human-readable detail from an error body.
func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

// Package api is the HTTP client for the InsureTM backend. It handles
// bearer authentication, JSON and multipart encoding, and transparent
// one-shot retry after an access-token refresh on 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TokenSource supplies the bearer token for authenticated requests.
// Only the session store implements it; the client never writes tokens.
type TokenSource interface {
	// AccessToken returns the current access token, or "" when logged out.
	AccessToken() string

	// RefreshAccess exchanges the refresh token for a new access token.
	// stale is the token that just failed, so concurrent callers whose
	// refresh already happened can be handed the fresh token without a
	// second round trip. A failure tears the session down and returns
	// an AuthError.
	RefreshAccess(ctx context.Context, stale string) (string, error)
}

// File is an attachment for multipart endpoints.
type File struct {
	Field string
	Name  string
	Data  []byte
}

// Client is the InsureTM REST client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *zap.Logger
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// SetTokenSource attaches the session's token source. Requests made
// before this is set are unauthenticated.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs an authenticated GET and unmarshals the JSON response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// post performs an authenticated POST with a JSON body.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// patch performs an authenticated PATCH with a JSON body.
func (c *Client) patch(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

// del performs an authenticated DELETE.
func (c *Client) del(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do builds and executes an authenticated JSON request. On a 401 it
// asks the token source for a refreshed access token exactly once and
// retries the original request with it.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	build := func() (*http.Request, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	return c.execute(ctx, build, method, path, result)
}

// doMultipart builds and executes an authenticated multipart/form-data
// request, used by endpoints that accept file attachments.
func (c *Client) doMultipart(
	ctx context.Context,
	method string,
	path string,
	fields map[string]string,
	files []File,
	result interface{},
) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("writing form field %q: %w", k, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return fmt.Errorf("creating form file %q: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("writing form file %q: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing multipart writer: %w", err)
	}

	payload := buf.Bytes()
	contentType := w.FormDataContentType()

	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(
			ctx, method, c.baseURL+path, bytes.NewReader(payload),
		)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	return c.execute(ctx, build, method, path, result)
}

// execute runs a request built by build, handling auth and the single
// refresh-and-retry cycle on 401.
func (c *Client) execute(
	ctx context.Context,
	build func() (*http.Request, error),
	method string,
	path string,
	result interface{},
) error {
	token := ""
	if c.tokens != nil {
		token = c.tokens.AccessToken()
	}

	status, respBody, err := c.roundTrip(build, token)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	if status == http.StatusUnauthorized && c.tokens != nil {
		// One refresh attempt, then one retry. The token source
		// serializes concurrent refreshes.
		fresh, refreshErr := c.tokens.RefreshAccess(ctx, token)
		if refreshErr != nil {
			c.log.Warn("token refresh failed",
				zap.String("path", path),
				zap.Error(refreshErr),
			)
			return refreshErr
		}
		status, respBody, err = c.roundTrip(build, fresh)
		if err != nil {
			return fmt.Errorf("retrying request %s %s: %w", method, path, err)
		}
	}

	if status == http.StatusUnauthorized {
		return &AuthError{Message: fmt.Sprintf("unauthorized on %s %s", method, path)}
	}

	if status < 200 || status >= 300 {
		return &APIError{StatusCode: status, Detail: errorDetail(respBody)}
	}

	if result == nil || status == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}

// roundTrip sends one request with the given bearer token and returns
// the status code and body.
func (c *Client) roundTrip(
	build func() (*http.Request, error),
	token string,
) (int, []byte, error) {
	req, err := build()
	if err != nil {
		return 0, nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}

	return resp.StatusCode, body, nil
}

// errorDetail extracts the "detail" message Django REST Framework puts
// in error bodies, falling back to the raw body.
func errorDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

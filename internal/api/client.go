// Package api is the HTTP client for the personal-finance REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/tally/internal/logging"
)

const (
	// DefaultBaseURL is used when neither config nor TALLY_API_URL set one.
	DefaultBaseURL = "http://localhost:8000"

	defaultTimeout = 15 * time.Second
	maxBodySize    = 8 << 20 // 8 MB
	userAgent      = "github.com/theirongolddev/tally/1.0"
)

var (
	// ErrUnauthorized indicates a missing, expired or rejected token.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrForbidden indicates the token is valid but lacks access.
	ErrForbidden = errors.New("api: forbidden")
	// ErrNotFound indicates the resource does not exist.
	ErrNotFound = errors.New("api: not found")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("api: rate limited")
)

// Error is any other non-2xx response.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Detail)
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	tokens  *TokenStore
	http    *http.Client
	log     *logging.Logger
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.log = l.WithComponent(logging.ComponentAPI) }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a client for baseURL. A nil tokens gets an in-memory store.
func New(baseURL string, tokens *TokenStore, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if tokens == nil {
		tokens = NewTokenStore("")
	}
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{},
		log:     logging.Discard(),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Tokens returns the token holder.
func (c *Client) Tokens() *TokenStore { return c.tokens }

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, in, out)
}

func (c *Client) put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, in, out)
}

func (c *Client) del(ctx context.Context, path string, query url.Values) error {
	return c.do(ctx, http.MethodDelete, path, query, nil, nil)
}

// do performs a JSON request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.send(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("api: reading response: %w", err)
	}
	if err := c.checkStatus(resp.StatusCode, body); err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("api: parsing %s %s: %w", method, path, err)
	}
	return nil
}

// formBody is a pre-encoded request body, such as a multipart upload.
type formBody struct {
	body        io.Reader
	contentType string
}

// send builds and issues the request. The caller owns resp.Body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, in any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch v := in.(type) {
	case nil:
	case formBody:
		body, contentType = v.body, v.contentType
	default:
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("api: encoding request: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.tokens.Get(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "request failed",
			logging.FieldMethod, method,
			logging.FieldPath, path,
			logging.FieldRequestID, reqID,
			logging.FieldError, err)
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	c.log.DebugContext(ctx, "request",
		logging.FieldMethod, method,
		logging.FieldPath, path,
		logging.FieldStatusCode, resp.StatusCode,
		logging.FieldDuration, time.Since(start).Milliseconds(),
		logging.FieldRequestID, reqID)
	return resp, nil
}

// checkStatus maps non-2xx responses to errors. A 401 clears the token.
func (c *Client) checkStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		if err := c.tokens.Clear(); err != nil {
			c.log.Warn("clearing token", logging.FieldError, err)
		}
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return &Error{Status: status, Detail: parseDetail(body)}
}

// parseDetail extracts FastAPI's "detail", which is either a string or a
// list of validation errors.
func parseDetail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(env.Detail, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if len(it.Loc) > 0 {
				parts = append(parts, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
			} else {
				parts = append(parts, it.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}
	return string(env.Detail)
}

// Blob is a downloaded file.
type Blob struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Download fetches a binary resource. The body is not size limited, and
// the client timeout only covers the wait for response headers so large
// files are not cut off. The filename comes from Content-Disposition, else
// fallback.
func (c *Client) Download(ctx context.Context, path string, query url.Values, fallback string) (*Blob, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	timer := time.AfterFunc(c.timeout, cancel)

	resp, err := c.send(ctx, http.MethodGet, path, query, nil)
	if !timer.Stop() && err == nil {
		// Headers arrived as the timer fired; the body is already cancelled.
		_ = resp.Body.Close()
		return nil, fmt.Errorf("api: GET %s: %w", path, context.DeadlineExceeded)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		return nil, c.checkStatus(resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: reading download: %w", err)
	}
	return &Blob{
		Filename:    filenameFrom(resp.Header.Get("Content-Disposition"), fallback),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func filenameFrom(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := strings.TrimSpace(params["filename"]); name != "" {
			return name
		}
	}
	// Some servers send an unquoted filename that mime rejects.
	if _, after, ok := strings.Cut(disposition, "filename="); ok {
		if name := strings.Trim(strings.TrimSpace(after), `"`); name != "" {
			return name
		}
	}
	return fallback
}

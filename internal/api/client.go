// Package api is the HTTP client for the form-analysis service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayoisaiah/repcheck/internal/apperr"
	"github.com/ayoisaiah/repcheck/internal/failure"
)

const (
	headerRequestID      = "X-Request-ID"
	headerIdempotencyKey = "Idempotency-Key"

	// maxBodySize bounds how much of a response body is read.
	maxBodySize = 4 << 20
)

// ErrNoCredential is returned by calls that need a bearer token when none is set.
var ErrNoCredential = &apperr.Error{
	Message: "token activation requires a credential: set one with --token or REPCHECK_SERVER_TOKEN",
}

// Endpoints holds the request paths of the service. Cleanup contains a
// {session_id} placeholder.
type Endpoints struct {
	AnonymousLimit string
	Upload         string
	Analyze        string
	Cleanup        string
	Activate       string
}

// DefaultEndpoints returns the paths served by the reference deployment.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		AnonymousLimit: "/api/anonymous-limit",
		Upload:         "/api/upload",
		Analyze:        "/api/analyze",
		Cleanup:        "/api/cleanup/{session_id}",
		Activate:       "/api/tokens/activate",
	}
}

// Client talks to the analysis service. Requests carry no client-side
// timeout; they end when the transport or the context gives up.
type Client struct {
	http      *http.Client
	logger    *slog.Logger
	newID     func() string
	baseURL   string
	token     string
	endpoints Endpoints
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithToken sets the bearer credential sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithEndpoints overrides the request paths. Empty fields keep their
// defaults.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		d := &c.endpoints

		for _, f := range []struct {
			dst *string
			src string
		}{
			{&d.AnonymousLimit, e.AnonymousLimit},
			{&d.Upload, e.Upload},
			{&d.Analyze, e.Analyze},
			{&d.Cleanup, e.Cleanup},
			{&d.Activate, e.Activate},
		} {
			if f.src != "" {
				*f.dst = f.src
			}
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New returns a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      http.DefaultClient,
		logger:    slog.Default(),
		endpoints: DefaultEndpoints(),
		newID:     uuid.NewString,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// HasCredential reports whether requests carry a bearer token.
func (c *Client) HasCredential() bool {
	return c.token != ""
}

// ResponseError is returned for responses with a non-2xx status, and for
// 2xx responses that report failure in their body.
type ResponseError struct {
	Header http.Header
	Method string
	URL    string
	Body   []byte
	Status int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
}

func (e *ResponseError) StatusCode() int {
	return e.Status
}

func (e *ResponseError) ResponseBody() []byte {
	return e.Body
}

// RetryAfter returns the Retry-After header in seconds. Both the delay and
// the HTTP-date forms are understood.
func (e *ResponseError) RetryAfter() (int, bool) {
	v := strings.TrimSpace(e.Header.Get("Retry-After"))
	if v == "" {
		return 0, false
	}

	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return secs, true
	}

	if t, err := http.ParseTime(v); err == nil {
		return max(int(time.Until(t).Round(time.Second).Seconds()), 0), true
	}

	return 0, false
}

type request struct {
	body        io.Reader
	header      http.Header
	method      string
	path        string
	contentType string
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// do sends r and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.url(r.path), r.body)
	if err != nil {
		return err
	}

	id := c.newID()

	req.Header.Set(headerRequestID, id)
	req.Header.Set("Accept", "application/json")

	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	for k, v := range r.header {
		req.Header[k] = v
	}

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "request failed",
			slog.String("method", r.method),
			slog.String("path", r.path),
			slog.String("request_id", id),
			slog.Any("error", err),
		)

		return err
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return err
	}

	c.logger.DebugContext(ctx, "request completed",
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.String("request_id", id),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &ResponseError{
			Method: r.method,
			URL:    req.URL.String(),
			Status: resp.StatusCode,
			Header: resp.Header,
			Body:   data,
		}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", failure.ErrMalformedResponse, err)
	}

	if raw, ok := out.(interface{ setRaw(status int, body []byte) }); ok {
		raw.setRaw(resp.StatusCode, data)
	}

	return nil
}

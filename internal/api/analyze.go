package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// AnalyzeRequest names an uploaded video and the exercise it shows.
type AnalyzeRequest struct {
	SessionID string
	Exercise  string
	// Notes is sent only when non-empty.
	Notes string
}

// AnalyzeResult is the service's answer to an analysis request. Analysis
// holds the scoring payload as received.
type AnalyzeResult struct {
	Success         *bool           `json:"success,omitempty"`
	RemainingTokens *int            `json:"remaining_tokens,omitempty"`
	Status          string          `json:"status,omitempty"`
	Message         string          `json:"message,omitempty"`
	Analysis        json.RawMessage `json:"analysis,omitempty"`
	Warnings        []string        `json:"warnings,omitempty"`
	FrameCount      int             `json:"frame_count,omitempty"`
	FPS             float64         `json:"fps,omitempty"`

	status int
	raw    []byte
}

func (r *AnalyzeResult) setRaw(status int, body []byte) {
	r.status, r.raw = status, body
}

// Succeeded reports the success indicator. An explicit success field wins;
// otherwise a status other than "success" means failure.
func (r *AnalyzeResult) Succeeded() bool {
	if r.Success != nil {
		return *r.Success
	}

	return r.Status == "" || strings.EqualFold(r.Status, "success")
}

// Score returns the overall score from the analysis payload, if present.
func (r *AnalyzeResult) Score() (float64, bool) {
	if len(r.Analysis) == 0 {
		return 0, false
	}

	var a struct {
		OverallScore *float64 `json:"overall_score"`
		Score        *float64 `json:"score"`
	}

	if err := json.Unmarshal(r.Analysis, &a); err != nil {
		return 0, false
	}

	switch {
	case a.OverallScore != nil:
		return *a.OverallScore, true
	case a.Score != nil:
		return *a.Score, true
	}

	return 0, false
}

// Analyze asks the service to score an uploaded video. A 2xx response that
// reports failure is returned as a *ResponseError carrying its body.
func (c *Client) Analyze(ctx context.Context, ar AnalyzeRequest) (*AnalyzeResult, error) {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"session_id", ar.SessionID},
		{"exercise", ar.Exercise},
	}

	if ar.Notes != "" {
		fields = append(fields, [2]string{"notes", ar.Notes})
	}

	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	var res AnalyzeResult

	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        c.endpoints.Analyze,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &res)
	if err != nil {
		return nil, err
	}

	if !res.Succeeded() {
		return nil, &ResponseError{
			Method: http.MethodPost,
			URL:    c.url(c.endpoints.Analyze),
			Status: res.status,
			Header: http.Header{},
			Body:   res.raw,
		}
	}

	return &res, nil
}

// Cleanup deletes the server-side upload of a session. Callers on the
// teardown path ignore the result.
func (c *Client) Cleanup(ctx context.Context, sessionID string) error {
	path := strings.ReplaceAll(
		c.endpoints.Cleanup,
		"{session_id}",
		url.PathEscape(sessionID),
	)

	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   path,
	}, nil)
}

package failure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/ayoisaiah/repcheck/internal/apperr"
	"github.com/ayoisaiah/repcheck/internal/testutil"
)

type responseError struct {
	body       []byte
	status     int
	retryAfter int
}

func (e *responseError) Error() string {
	return fmt.Sprintf("status %d", e.status)
}

func (e *responseError) StatusCode() int {
	return e.status
}

func (e *responseError) ResponseBody() []byte {
	return e.body
}

func (e *responseError) RetryAfter() (int, bool) {
	return e.retryAfter, e.retryAfter > 0
}

func TestClassifyIsTotal(t *testing.T) {
	bodies := map[string][]byte{
		"structured":  []byte(`{"detail":{"error":"camera_angle_too_extreme","message":"Camera angle too steep","angle_estimate":62.5}}`),
		"string":      []byte(`{"detail":"Session not found"}`),
		"unparseable": []byte(`<html>Bad Gateway</html>`),
		"none":        nil,
	}

	statuses := []int{400, 401, 402, 403, 404, 413, 415, 422, 429, 500, 502, 999}

	for name, body := range bodies {
		for _, status := range statuses {
			o := Classify(&responseError{status: status, body: body})

			assert.NotEmpty(t, o.Message, "%s body, status %d", name, status)
			assert.NotEmpty(t, o.Kind, "%s body, status %d", name, status)
			assert.Equal(t, status, o.Status)
		}
	}

	for _, err := range []error{nil, context.Canceled, context.DeadlineExceeded, ErrMalformedResponse, &net.OpError{Op: "dial", Err: errors.New("refused")}} {
		o := Classify(err)

		assert.NotEmpty(t, o.Message)
		assert.NotEmpty(t, o.Kind)
	}
}

func TestInsufficientTokens(t *testing.T) {
	cases := []struct {
		Name           string
		Body           string
		WantActivation bool
	}{
		{
			Name:           "activation flag set",
			Body:           `{"detail":{"error":"insufficient_tokens","message":"Not enough tokens","needs_activation":true}}`,
			WantActivation: true,
		},
		{
			Name: "activation flag false",
			Body: `{"detail":{"error":"insufficient_tokens","message":"Not enough tokens","needs_activation":false}}`,
		},
		{
			Name: "activation flag absent",
			Body: `{"detail":{"error":"insufficient_tokens","message":"Not enough tokens"}}`,
		},
		{
			Name: "activation flag is not a boolean",
			Body: `{"error":"insufficient_tokens","message":"Not enough tokens","needs_activation":"yes"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			o := FromResponse(402, []byte(tc.Body))

			assert.Equal(t, ServerRejected(CodeInsufficientTokens), o.Kind)
			assert.Equal(t, "Not enough tokens", o.Message)
			assert.Equal(t, tc.WantActivation, o.NeedsActivation())
		})
	}
}

func TestDomainCodesPassFieldsThrough(t *testing.T) {
	body := `{"detail":{"error":"insufficient_pose_detections","message":"Only 41% of frames had a pose","valid_frame_percentage":41.2,"warnings":["low light","subject partially out of frame"]}}`

	o := FromResponse(422, []byte(body))

	pct := 41.2

	want := Outcome{
		Kind:    ServerRejected(CodeInsufficientPoseDetections),
		Message: "Only 41% of frames had a pose",
		Details: Details{
			ValidFramePercentage: &pct,
			Warnings:             []string{"low light", "subject partially out of frame"},
		},
		Status: 422,
	}

	if diff := cmp.Diff(want, o); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, CodeInsufficientPoseDetections, o.Kind.Code())
	assert.False(t, o.Recoverable)
}

func TestDomainCodeWithoutMessageUsesTable(t *testing.T) {
	o := FromResponse(415, []byte(`{"detail":{"error":"unsupported_video_format","detected_codec":"prores"}}`))

	assert.Equal(t, ServerRejected(CodeUnsupportedVideoFormat), o.Kind)
	assert.Equal(t, codeTable[CodeUnsupportedVideoFormat].message, o.Message)
	assert.Equal(t, "prores", o.Details.DetectedCodec)
}

func TestStringDetailIsVerbatim(t *testing.T) {
	o := FromResponse(404, []byte(`{"detail":"Session s1 not found or expired"}`))

	assert.Equal(t, KindServerGeneric, o.Kind)
	assert.Equal(t, "Session s1 not found or expired", o.Message)

	o = FromResponse(400, []byte(`"Exercise type is required"`))
	assert.Equal(t, "Exercise type is required", o.Message)
}

func TestValidationList(t *testing.T) {
	o := FromResponse(422, []byte(`{"detail":[{"loc":["body","exercise"],"msg":"field required","type":"value_error.missing"}]}`))

	assert.Equal(t, KindServerGeneric, o.Kind)
	assert.Equal(t, "field required", o.Message)
}

func TestUnparseableRateLimit(t *testing.T) {
	o := Classify(&responseError{status: 429, body: []byte("Too Many Requests")})

	assert.Equal(t, KindServerGeneric, o.Kind)
	assert.Equal(t, statusTable[429].message, o.Message)
	assert.False(t, o.NeedsActivation())
	assert.True(t, o.Recoverable)
	assert.Nil(t, o.Details.RetryAfter)

	o = Classify(&responseError{status: 429, retryAfter: 30})
	if assert.NotNil(t, o.Details.RetryAfter) {
		assert.Equal(t, 30, *o.Details.RetryAfter)
	}

	o = Classify(&responseError{
		status:     429,
		retryAfter: 30,
		body:       []byte(`{"error":"rate_limit_exceeded","message":"Slow down","retry_after":12}`),
	})
	if assert.NotNil(t, o.Details.RetryAfter) {
		assert.Equal(t, 12, *o.Details.RetryAfter)
	}

	o = FromResponse(429, []byte(`{"error":"rate_limit_exceeded","message":"Slow down","retry_after":1.5}`))
	if assert.NotNil(t, o.Details.RetryAfter) {
		assert.Equal(t, 2, *o.Details.RetryAfter)
	}
}

func TestStatusFallback(t *testing.T) {
	assert.Equal(t, serverErrorMessage, FromResponse(502, nil).Message)
	assert.Equal(t, serverErrorMessage, FromResponse(500, []byte("{}")).Message)
	assert.Equal(t, "An error occurred (status 999). Please try again.", FromResponse(999, nil).Message)
	assert.Equal(t, "An error occurred (status 402). Please try again.", FromResponse(402, []byte(`{"detail":null}`)).Message)
	assert.False(t, FromResponse(413, nil).Recoverable)
}

func TestTransportFailures(t *testing.T) {
	o := Classify(fmt.Errorf("upload: %w", context.Canceled))
	assert.Equal(t, KindCancelled, o.Kind)
	assert.False(t, o.Kind.Surfaced())

	o = Classify(&net.OpError{Op: "dial", Err: errors.New("connection refused")})
	assert.Equal(t, KindNetworkError, o.Kind)
	assert.True(t, o.Kind.Surfaced())

	o = Classify(fmt.Errorf("decode: %w", ErrMalformedResponse))
	assert.Equal(t, KindParseError, o.Kind)

	local := &apperr.Error{Message: "no token configured"}

	o = Classify(fmt.Errorf("activate: %w", local))
	assert.Equal(t, KindClientError, o.Kind)
	assert.Equal(t, "no token configured", o.Message)
	assert.False(t, o.Recoverable)
	assert.True(t, o.Kind.Surfaced())

	assert.False(t, KindValidationRejected.Surfaced())
	assert.Equal(t, Code(""), KindServerGeneric.Code())
}

type goldenCase struct {
	Name    string  `json:"name"`
	Outcome Outcome `json:"outcome"`
}

type goldenTest struct {
	snapshot []byte
	name     string
}

func (g goldenTest) Output() ([]byte, string) {
	return g.snapshot, g.name
}

func TestClassifyGolden(t *testing.T) {
	inputs := []struct {
		Name   string
		Body   string
		Status int
	}{
		{Name: "activation", Status: 402, Body: `{"detail":{"error":"insufficient_tokens","message":"Not enough tokens","needs_activation":true}}`},
		{Name: "camera angle", Status: 422, Body: `{"detail":{"error":"camera_angle_too_extreme","message":"Camera angle too steep","angle_estimate":62.5}}`},
		{Name: "string detail", Status: 404, Body: `{"detail":"Session not found"}`},
		{Name: "unparseable", Status: 502, Body: `Bad Gateway`},
	}

	cases := make([]goldenCase, 0, len(inputs))

	for _, in := range inputs {
		cases = append(cases, goldenCase{
			Name:    in.Name,
			Outcome: FromResponse(in.Status, []byte(in.Body)),
		})
	}

	b, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		t.Fatal(err)
	}

	testutil.CompareGoldenFile(t, goldenTest{snapshot: b, name: "outcomes"})
}

package failure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/ayoisaiah/repcheck/internal/apperr"
)

// ErrMalformedResponse marks a 2xx response whose body could not be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// HTTPError is implemented by errors that carry a non-2xx response.
type HTTPError interface {
	error
	StatusCode() int
	ResponseBody() []byte
}

// retryAfterer is implemented by HTTP errors that know the Retry-After
// header of the response.
type retryAfterer interface {
	RetryAfter() (int, bool)
}

const (
	networkMessage   = "Could not reach the analysis service. Check your connection and try again."
	timeoutMessage   = "The analysis service took too long to respond. Please try again."
	cancelledMessage = "The request was cancelled."
	parseMessage     = "The server sent a response that could not be read. Please try again."
	unknownMessage   = "An unknown error occurred. Please try again."
)

// Classify maps any failure from the network boundary to an outcome. It is
// total: every input, including nil, yields exactly one outcome.
func Classify(err error) Outcome {
	if err == nil {
		return Outcome{
			Kind:        KindServerGeneric,
			Message:     unknownMessage,
			Recoverable: true,
		}
	}

	if errors.Is(err, context.Canceled) {
		return Outcome{Kind: KindCancelled, Message: cancelledMessage, Recoverable: true}
	}

	var he HTTPError
	if errors.As(err, &he) {
		o := FromResponse(he.StatusCode(), he.ResponseBody())

		if ra, ok := he.(retryAfterer); ok && o.Details.RetryAfter == nil &&
			(o.Status == http.StatusTooManyRequests || o.Kind.Code() == CodeRateLimitExceeded) {
			if secs, ok := ra.RetryAfter(); ok {
				o.Details.RetryAfter = &secs
			}
		}

		return o
	}

	if errors.Is(err, ErrMalformedResponse) {
		return Outcome{Kind: KindParseError, Message: parseMessage, Recoverable: true}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Outcome{Kind: KindNetworkError, Message: timeoutMessage, Recoverable: true}
	}

	// Local errors never reached the service and carry their own message.
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return Outcome{Kind: KindClientError, Message: ae.Message}
	}

	return Outcome{Kind: KindNetworkError, Message: networkMessage, Recoverable: true}
}

// FromResponse classifies a non-2xx response from its status and raw body.
// A structured body is preferred; a plain string detail is used verbatim;
// anything else falls back to a message chosen by status code.
func FromResponse(status int, body []byte) Outcome {
	o, ok := fromBody(status, body)
	if !ok {
		e := statusFallback(status)

		o = Outcome{
			Kind:        KindServerGeneric,
			Message:     e.message,
			Recoverable: e.recoverable,
		}
	}

	o.Status = status

	return o
}

func fromBody(status int, body []byte) (Outcome, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Outcome{}, false
	}

	var v any

	if err := json.Unmarshal(body, &v); err != nil {
		return Outcome{}, false
	}

	return fromValue(status, v)
}

func fromValue(status int, v any) (Outcome, bool) {
	switch v := v.(type) {
	case string:
		return genericMessage(status, v, Details{})

	case map[string]any:
		if detail, ok := v["detail"]; ok {
			if o, ok := fromValue(status, detail); ok {
				return o, true
			}
		}

		return fromPayload(status, v)

	case []any:
		// validation errors arrive as a list of {"msg": ...} objects
		for _, item := range v {
			switch item := item.(type) {
			case string:
				return genericMessage(status, item, Details{})
			case map[string]any:
				if msg, ok := item["msg"].(string); ok {
					return genericMessage(status, msg, Details{})
				}
			}
		}
	}

	return Outcome{}, false
}

func fromPayload(status int, p map[string]any) (Outcome, bool) {
	code := stringField(p, "error")
	if code == "" {
		code = stringField(p, "code")
	}

	msg := stringField(p, "message")
	if msg == "" {
		msg = stringField(p, "detail")
	}

	entry, known := codeTable[Code(code)]
	if !known {
		return genericMessage(status, msg, detailsOf(p))
	}

	o := Outcome{
		Kind:        ServerRejected(Code(code)),
		Message:     msg,
		Recoverable: entry.recoverable,
		Details:     detailsOf(p),
	}

	if o.Message == "" {
		o.Message = entry.message
	}

	if entry.activatable && boolField(p, "needs_activation") {
		o.RecoveryAction = RecoveryActivationRequired
	}

	return o, true
}

func genericMessage(status int, msg string, d Details) (Outcome, bool) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return Outcome{}, false
	}

	return Outcome{
		Kind:        KindServerGeneric,
		Message:     msg,
		Recoverable: statusFallback(status).recoverable,
		Details:     d,
	}, true
}

func detailsOf(p map[string]any) Details {
	var d Details

	if f, ok := p["angle_estimate"].(float64); ok {
		d.AngleEstimate = &f
	}

	if f, ok := p["valid_frame_percentage"].(float64); ok {
		d.ValidFramePercentage = &f
	}

	if f, ok := p["retry_after"].(float64); ok {
		secs := int(math.Ceil(f))
		d.RetryAfter = &secs
	}

	d.DetectedCodec = stringField(p, "detected_codec")

	if list, ok := p["warnings"].([]any); ok {
		for _, w := range list {
			if s, ok := w.(string); ok {
				d.Warnings = append(d.Warnings, s)
			}
		}
	}

	return d
}

func stringField(p map[string]any, key string) string {
	s, _ := p[key].(string)

	return s
}

func boolField(p map[string]any, key string) bool {
	b, _ := p[key].(bool)

	return b
}

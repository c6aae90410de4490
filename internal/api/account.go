package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ayoisaiah/repcheck/internal/failure"
)

// AnonymousLimitReached asks whether this client has used its anonymous
// allowance.
func (c *Client) AnonymousLimitReached(ctx context.Context) (bool, error) {
	var res struct {
		LimitReached *bool `json:"limit_reached"`
	}

	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   c.endpoints.AnonymousLimit,
	}, &res)
	if err != nil {
		return false, err
	}

	if res.LimitReached == nil {
		return false, fmt.Errorf("%w: missing limit_reached", failure.ErrMalformedResponse)
	}

	return *res.LimitReached, nil
}

// Activation is the service's answer to a token activation.
type Activation struct {
	RemainingTokens *int   `json:"remaining_tokens,omitempty"`
	Message         string `json:"message,omitempty"`
}

// ActivateTokens activates the caller's pending tokens. The key makes
// repeated calls safe: the service applies a key at most once.
func (c *Client) ActivateTokens(ctx context.Context, idempotencyKey string) (*Activation, error) {
	if !c.HasCredential() {
		return nil, ErrNoCredential
	}

	header := http.Header{}
	if idempotencyKey != "" {
		header.Set(headerIdempotencyKey, idempotencyKey)
	}

	var res Activation

	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.Activate,
		header: header,
	}, &res)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// Package identity inspects the bearer credential repcheck sends to the
// analysis service.
package identity

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity describes the caller as far as the client can tell. Claims are
// read without verifying the signature; the service does that. They are
// used only for display and to treat expired tokens as anonymous.
type Identity struct {
	ExpiresAt time.Time
	Token     string
	Subject   string
	// Opaque is set when the token is not a JWT.
	Opaque  bool
	Expired bool
}

// Anonymous is the identity of a caller with no credential.
var Anonymous = Identity{}

// Parse inspects token at time now. An empty token yields Anonymous.
func Parse(token string, now time.Time) Identity {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Anonymous
	}

	id := Identity{Token: token}

	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		id.Opaque = true
		return id
	}

	if sub, err := claims.GetSubject(); err == nil {
		id.Subject = sub
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
		id.Expired = !now.Before(exp.Time)
	}

	return id
}

// Authenticated reports whether requests should carry the credential.
func (i Identity) Authenticated() bool {
	return i.Token != "" && !i.Expired
}

// String returns a short description for status output.
func (i Identity) String() string {
	switch {
	case i.Token == "":
		return "anonymous"
	case i.Expired:
		return "anonymous (token expired)"
	case i.Subject != "":
		return i.Subject
	default:
		return "authenticated"
	}
}

// Package gate tracks the one-time analysis allowance given to callers
// without a credential.
package gate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ayoisaiah/repcheck/internal/apperr"
)

// State is the state of the anonymous allowance.
type State int

const (
	Open State = iota
	Exhausted
)

func (s State) String() string {
	if s == Exhausted {
		return "exhausted"
	}

	return "open"
}

// ErrAllowanceExhausted is returned when an anonymous caller has used the
// free analysis.
var ErrAllowanceExhausted = &apperr.Error{
	Message: "the free analysis for anonymous users has been used: set a token with --token or REPCHECK_SERVER_TOKEN to continue",
}

// Store persists the exhausted flag.
type Store interface {
	AnonymousExhausted() (bool, error)
	SetAnonymousExhausted(exhausted bool) error
}

// Checker asks the service whether the anonymous limit has been reached.
type Checker interface {
	AnonymousLimitReached(ctx context.Context) (bool, error)
}

// Gate owns the anonymous allowance flag. Nothing else reads or writes it.
type Gate struct {
	store         Store
	checker       Checker
	logger        *slog.Logger
	state         State
	mu            sync.Mutex
	loaded        bool
	authenticated bool
}

// New returns a gate for an anonymous caller, or a pass-through gate when
// authenticated is true.
func New(store Store, checker Checker, authenticated bool, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}

	return &Gate{
		store:         store,
		checker:       checker,
		authenticated: authenticated,
		logger:        logger,
	}
}

// Authenticated reports whether the gate lets every request through.
func (g *Gate) Authenticated() bool {
	return g.authenticated
}

// Load resolves the gate state. A persisted flag settles it without a
// network call. Otherwise the service is asked once and an exhausted answer
// is persisted. When the service cannot be reached the gate stays open and
// is asked again on the next call; the error is returned for display.
func (g *Gate) Load(ctx context.Context) (State, error) {
	if g.authenticated {
		return Open, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.loaded {
		return g.state, nil
	}

	exhausted, err := g.store.AnonymousExhausted()
	if err != nil {
		return Open, err
	}

	if exhausted {
		g.state, g.loaded = Exhausted, true
		return g.state, nil
	}

	reached, err := g.checker.AnonymousLimitReached(ctx)
	if err != nil {
		return Open, err
	}

	g.loaded = true

	if !reached {
		g.state = Open
		return g.state, g.store.SetAnonymousExhausted(false)
	}

	g.state = Exhausted

	if err := g.store.SetAnonymousExhausted(true); err != nil {
		return g.state, err
	}

	return g.state, nil
}

// Allow refuses with ErrAllowanceExhausted when an anonymous caller has no
// allowance left. Failures to determine the state let the request through;
// the service enforces its own limit.
func (g *Gate) Allow(ctx context.Context) error {
	state, err := g.Load(ctx)
	if err != nil {
		g.logger.WarnContext(ctx, "anonymous limit check failed",
			slog.Any("error", err),
		)
	}

	if state == Exhausted {
		return ErrAllowanceExhausted
	}

	return nil
}

// MarkExhausted records that the anonymous allowance has been used. It does
// nothing for authenticated callers.
func (g *Gate) MarkExhausted() error {
	if g.authenticated {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.state, g.loaded = Exhausted, true

	return g.store.SetAnonymousExhausted(true)
}

// Package guard gates administrative commands on the session state.
package guard

import (
	"fmt"

	"github.com/codeanytime/blogctl/internal/cli/session"
)

// Decision is the outcome of evaluating the session state for a
// protected action. There are no other states.
type Decision int

const (
	// Pending means the session is still being resolved; no
	// authorization decision may be made yet.
	Pending Decision = iota
	// Denied means the visitor is unauthenticated or not an admin.
	Denied
	// Allowed means an authenticated admin.
	Allowed
)

// Evaluate maps a session state onto a decision. Loading always wins:
// an unresolved session is indistinguishable from a logged-out one.
func Evaluate(s session.State) Decision {
	if s.Loading {
		return Pending
	}
	if !s.Authenticated || !s.IsAdmin {
		return Denied
	}
	return Allowed
}

// RequireAdmin refuses a protected command unless the session resolves
// to an admin. The returned error names the attempted destination so a
// follow-up login can send the user straight back.
func RequireAdmin(p *session.Provider, destination string) error {
	switch Evaluate(p.State()) {
	case Pending:
		return fmt.Errorf("still checking your session, try %q again in a moment", destination)
	case Denied:
		return fmt.Errorf("%q requires an admin account: run 'blogctl login' and retry", destination)
	default:
		return nil
	}
}

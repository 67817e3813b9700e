// Package guard gates navigation to role-restricted views.
package guard

import (
	"github.com/edudash/edudash/internal/access"
)

// Decision is the outcome of evaluating a route.
type Decision int

const (
	// Pending means the session has not been rehydrated yet; render neither
	// the protected view nor a redirect.
	Pending Decision = iota
	// Render means the protected view may be shown.
	Render
	// Redirect means navigation must be bounced to home.
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// SessionView is the read side of a session store.
type SessionView interface {
	Resolved() bool
	Current() access.Principal
}

// Outcome carries a decision and, for redirects, why.
type Outcome struct {
	Decision Decision
	// Reason is access.ErrUnauthenticated or access.ErrForbidden on redirect.
	Reason error
}

// Guard evaluates routes against the live session. It never caches the
// principal; every call reads the current snapshot.
type Guard struct {
	Session SessionView
}

// Evaluate decides whether a route restricted to allowed may render.
func (g Guard) Evaluate(allowed ...access.Role) Outcome {
	if g.Session == nil || !g.Session.Resolved() {
		return Outcome{Decision: Pending}
	}
	principal := g.Session.Current()
	if !principal.Authenticated() {
		return Outcome{Decision: Redirect, Reason: access.ErrUnauthenticated}
	}
	for _, role := range allowed {
		if role == principal.Role {
			return Outcome{Decision: Render}
		}
	}
	return Outcome{Decision: Redirect, Reason: access.ErrForbidden}
}

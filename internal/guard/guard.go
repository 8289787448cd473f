// Package guard gates protected views on the presence of a session token.
//
// The check is purely local and synchronous: it never validates the token
// against the server. A stale token is discovered lazily when the guarded
// view's own API call fails with an authorization error, at which point the
// api client clears the session centrally.
package guard

import (
	"github.com/devtracker/devtracker-cli/internal/errors"
	"github.com/devtracker/devtracker-cli/internal/session"
)

// TokenSource is the slice of the session store the guard reads.
type TokenSource interface {
	Token() (string, bool)
}

// Guard wraps protected render paths.
type Guard struct {
	sessions TokenSource
	redirect func()
}

// New creates a guard. redirect is invoked instead of the protected render
// path when no token is present; it may be nil.
func New(sessions TokenSource, redirect func()) *Guard {
	return &Guard{sessions: sessions, redirect: redirect}
}

// Protect runs render only if a token is present.
//
// With no token it invokes the redirect and returns an authorization error
// without ever calling render. With a token it always calls render,
// independent of the token's validity against the server.
func (g *Guard) Protect(render func() error) error {
	if _, ok := g.sessions.Token(); !ok {
		if g.redirect != nil {
			g.redirect()
		}
		return errors.NewNoSessionError()
	}
	return render()
}

var _ TokenSource = (session.Store)(nil)

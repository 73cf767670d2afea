// Package identity supplies the authenticated-user handle consumed by
// the engine, plus a password/token implementation of the identity
// provider contract. The engine itself treats a Context as opaque: it
// reads UserID and DisplayName and nothing else.
package identity

import "context"

// Context identifies the already-authenticated caller of an engine
// operation.
type Context struct {
	UserID      string
	DisplayName string
}

// Valid reports whether the context carries an authenticated user.
func (c Context) Valid() bool { return c.UserID != "" }

// Directory resolves user lookups for membership invites.
type Directory interface {
	// ResolveUserByEmail returns the user id registered under email.
	// Returns an error matching engine.ErrNotFound if no such user
	// exists.
	ResolveUserByEmail(ctx context.Context, email string) (string, error)
}

package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/alex-morrisonn/trolly/internal/engine"
	"github.com/alex-morrisonn/trolly/internal/models"
)

// Ensure CollectionDirectory implements Directory
var _ Directory = (*CollectionDirectory)(nil)

// CollectionDirectory resolves email lookups by scanning the users
// collection. Email comparison is case-insensitive.
type CollectionDirectory struct {
	users *engine.Collection[models.User]
}

// NewCollectionDirectory returns a directory over the users collection.
func NewCollectionDirectory(users *engine.Collection[models.User]) *CollectionDirectory {
	return &CollectionDirectory{users: users}
}

// ResolveUserByEmail returns the id of the user registered under email.
func (d *CollectionDirectory) ResolveUserByEmail(ctx context.Context, email string) (string, error) {
	matches, err := d.users.Snapshot(ctx, func(u models.User) bool {
		return strings.EqualFold(u.Email, email)
	}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to scan users: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("user %s: %w", email, engine.ErrNotFound)
	}
	return matches[0].ID, nil
}

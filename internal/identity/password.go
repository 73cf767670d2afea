package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/alex-morrisonn/trolly/internal/engine"
	"github.com/alex-morrisonn/trolly/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// PasswordAuthenticator implements password-based sign-up and sign-in
// over the users collection, using bcrypt for credential storage.
type PasswordAuthenticator struct {
	users *engine.Collection[models.User]
}

// NewPasswordAuthenticator creates a password-based authenticator over
// the users collection.
func NewPasswordAuthenticator(users *engine.Collection[models.User]) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: users}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// SignUp creates a new user account with a hashed password and returns
// it alongside the account's identity context.
func (a *PasswordAuthenticator) SignUp(ctx context.Context, email, displayName, password string) (*models.User, error) {
	if err := a.ValidateCredential(password); err != nil {
		return nil, err
	}

	taken, err := a.users.Snapshot(ctx, func(u models.User) bool {
		return strings.EqualFold(u.Email, email)
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if len(taken) > 0 {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hashed),
	}
	id, err := a.users.Add(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return &user, nil
}

// SignIn verifies the email and password, returning the user if valid.
func (a *PasswordAuthenticator) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	matches, err := a.users.Snapshot(ctx, func(u models.User) bool {
		return strings.EqualFold(u.Email, email)
	}, nil)
	if err != nil || len(matches) == 0 {
		return nil, ErrInvalidCredentials
	}
	user := matches[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// ContextFor returns the identity context for a signed-in user.
func ContextFor(user *models.User) Context {
	return Context{UserID: user.ID, DisplayName: user.DisplayName}
}

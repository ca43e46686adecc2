package users

import (
	"context"
	"errors"

	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
)

var (
	ErrNotFound    = apperrors.Wrapf(apperrors.ErrNotFound, "user")
	ErrEmailExists = errors.New("email already exists")
)

// Repo is the credential store. Emails passed in are expected to be normalised.
type Repo interface {
	// FindByEmail loads a user by email. PasswordHash is only populated when includePasswordHash is set.
	FindByEmail(ctx context.Context, email string, includePasswordHash bool) (*User, error)
	// FindByID loads a user by ID without its password hash.
	FindByID(ctx context.Context, id string) (*User, error)
	// Create stores a new user, assigning its ID, and fails with ErrEmailExists on a duplicate email.
	Create(ctx context.Context, user *User) (*User, error)
	// Update overwrites the mutable fields of an existing user.
	Update(ctx context.Context, user *User) (*User, error)
}

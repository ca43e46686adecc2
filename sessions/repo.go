package sessions

import (
	"context"
	"errors"

	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
)

var (
	ErrNotFound = apperrors.Wrapf(apperrors.ErrNotFound, "session")
	// ErrStale is returned when a compare-and-swap finds a different token than expected
	ErrStale = errors.New("session changed concurrently")
)

// Repo stores refresh session records keyed by principal.
// Swap and Delete are compare-and-swap operations on the stored token hash.
type Repo interface {
	// Get returns the live record for a principal.
	Get(ctx context.Context, principalID string) (*Record, error)

	// Put stores a record, unconditionally replacing any previous one (login, registration).
	Put(ctx context.Context, record *Record) error

	// Swap replaces the record only while the stored hash still equals expectedHash.
	// Returns ErrStale if it changed and ErrNotFound if there is no record.
	Swap(ctx context.Context, principalID, expectedHash string, next *Record) error

	// Delete removes the record only while the stored hash still equals expectedHash.
	Delete(ctx context.Context, principalID, expectedHash string) error
}

package sessions

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
)

// Record is the single live refresh credential of a principal.
// Only the SHA-256 of the refresh token is kept; the raw token never reaches storage.
type Record struct {
	ID          string    // Unique record identifier (ULID), changes on every rotation
	PrincipalID string    // Owning principal, at most one record each
	TokenHash   string    // Hex SHA-256 of the refresh token
	ExpiresAt   time.Time // Server-side expiry, checked independently of the token's own exp
	CreatedAt   time.Time
}

// NewRecord builds a record for a freshly minted refresh token
func NewRecord(principalID, refreshToken string, now, expiresAt time.Time) *Record {
	return &Record{
		ID:          ulid.Make().String(),
		PrincipalID: principalID,
		TokenHash:   HashToken(refreshToken),
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
	}
}

// Matches reports whether token is the one this record was created for
func (r *Record) Matches(token string) bool {
	return r.TokenHash == HashToken(token)
}

// Expired reports whether the record is past its persisted expiry
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// HashToken returns the hex SHA-256 digest used as the stored form of a refresh token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

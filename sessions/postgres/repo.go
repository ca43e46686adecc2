// Package postgres stores refresh session records in PostgreSQL using pgx.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
	"github.com/jrsteele09/go-session-server/sessions"
)

const schema = `
CREATE TABLE IF NOT EXISTS refresh_sessions (
	principal_id TEXT PRIMARY KEY,
	id           TEXT NOT NULL,
	token_hash   TEXT NOT NULL,
	expires_at   TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
)`

// Repo implements sessions.Repo with one row per principal.
// Compare-and-swap is a conditional UPDATE/DELETE on token_hash.
type Repo struct {
	pool *pgxpool.Pool
}

var _ sessions.Repo = (*Repo)(nil)

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// EnsureSchema creates the refresh_sessions table when it does not exist
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return apperrors.Wrapf(err, "[sessions.postgres EnsureSchema]")
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, principalID string) (*sessions.Record, error) {
	var rec sessions.Record
	err := r.pool.QueryRow(ctx, `
		SELECT id, principal_id, token_hash, expires_at, created_at
		FROM refresh_sessions
		WHERE principal_id = $1
	`, principalID).Scan(&rec.ID, &rec.PrincipalID, &rec.TokenHash, &rec.ExpiresAt, &rec.CreatedAt)
	if apperrors.Is(err, pgx.ErrNoRows) {
		return nil, sessions.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "[sessions.postgres Get]")
	}
	return &rec, nil
}

func (r *Repo) Put(ctx context.Context, rec *sessions.Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refresh_sessions (principal_id, id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (principal_id) DO UPDATE
		SET id = EXCLUDED.id,
		    token_hash = EXCLUDED.token_hash,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at
	`, rec.PrincipalID, rec.ID, rec.TokenHash, rec.ExpiresAt, rec.CreatedAt)
	if err != nil {
		return apperrors.Wrapf(err, "[sessions.postgres Put]")
	}
	return nil
}

func (r *Repo) Swap(ctx context.Context, principalID, expectedHash string, next *sessions.Record) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE refresh_sessions
		SET id = $3, token_hash = $4, expires_at = $5, created_at = $6
		WHERE principal_id = $1 AND token_hash = $2
	`, principalID, expectedHash, next.ID, next.TokenHash, next.ExpiresAt, next.CreatedAt)
	if err != nil {
		return apperrors.Wrapf(err, "[sessions.postgres Swap]")
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return r.missOrStale(ctx, principalID)
}

func (r *Repo) Delete(ctx context.Context, principalID, expectedHash string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM refresh_sessions
		WHERE principal_id = $1 AND token_hash = $2
	`, principalID, expectedHash)
	if err != nil {
		return apperrors.Wrapf(err, "[sessions.postgres Delete]")
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return r.missOrStale(ctx, principalID)
}

// missOrStale tells apart a missing row from one whose hash moved on
func (r *Repo) missOrStale(ctx context.Context, principalID string) error {
	if _, err := r.Get(ctx, principalID); err != nil {
		return err
	}
	return sessions.ErrStale
}

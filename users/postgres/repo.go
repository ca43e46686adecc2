// Package postgres implements the credential store on PostgreSQL using pgx.
package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
	"github.com/jrsteele09/go-session-server/users"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name     TEXT NOT NULL,
	roles         TEXT[] NOT NULL DEFAULT ARRAY['user'],
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
)`

// Repo implements users.Repo against the users table
type Repo struct {
	pool    *pgxpool.Pool
	nowFunc func() time.Time
}

var _ users.Repo = (*Repo)(nil)

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, nowFunc: time.Now}
}

// EnsureSchema creates the users table when it does not exist
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return apperrors.Wrapf(err, "[users.postgres EnsureSchema]")
	}
	return nil
}

func (r *Repo) FindByEmail(ctx context.Context, email string, includePasswordHash bool) (*users.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, roles, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email))
	if err != nil {
		return nil, err
	}
	if !includePasswordHash {
		u.PasswordHash = ""
	}
	return u, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*users.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, users.ErrNotFound
	}
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, roles, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (r *Repo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	created := user.Clone()
	if created.ID == "" {
		created.ID = uuid.New().String()
	}
	now := r.nowFunc().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, created.ID, created.Email, created.PasswordHash, created.FullName, created.RoleStrings(), now)
	if err != nil {
		var pgErr *pgconn.PgError
		if apperrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, users.ErrEmailExists
		}
		return nil, apperrors.Wrapf(err, "[users.postgres Create]")
	}

	created.PasswordHash = ""
	return created, nil
}

// Update overwrites email, name and roles. The password hash column is never written here.
func (r *Repo) Update(ctx context.Context, user *users.User) (*users.User, error) {
	updated := user.Clone()
	updated.UpdatedAt = r.nowFunc().UTC()

	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $2, full_name = $3, roles = $4, updated_at = $5
		WHERE id = $1
	`, updated.ID, updated.Email, updated.FullName, updated.RoleStrings(), updated.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if apperrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, users.ErrEmailExists
		}
		return nil, apperrors.Wrapf(err, "[users.postgres Update]")
	}
	if tag.RowsAffected() == 0 {
		return nil, users.ErrNotFound
	}

	updated.PasswordHash = ""
	return updated, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var (
		u     users.User
		roles []string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &roles, &u.CreatedAt, &u.UpdatedAt)
	if apperrors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "[users.postgres scan]")
	}
	u.Roles = users.RolesFromStrings(roles)
	return &u, nil
}

// Package redisrepo stores refresh session records in Redis.
// Each principal owns one hash key that expires together with its record.
package redisrepo

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
	"github.com/jrsteele09/go-session-server/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "refresh_session:"
	maxRetries = 3
)

// Repo implements sessions.Repo. Compare-and-swap runs as an optimistic
// WATCH/MULTI transaction on the principal's key.
type Repo struct {
	client  redis.UniversalClient
	nowFunc func() time.Time
}

var _ sessions.Repo = (*Repo)(nil)

func NewRepo(client redis.UniversalClient) *Repo {
	return &Repo{client: client, nowFunc: time.Now}
}

func key(principalID string) string {
	return keyPrefix + principalID
}

func (r *Repo) Get(ctx context.Context, principalID string) (*sessions.Record, error) {
	return r.get(ctx, r.client, principalID)
}

// hashReader is satisfied by both the client and a WATCH transaction
type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func (r *Repo) get(ctx context.Context, c hashReader, principalID string) (*sessions.Record, error) {
	vals, err := c.HGetAll(ctx, key(principalID)).Result()
	if err != nil {
		return nil, apperrors.Wrapf(err, "[sessions.redis Get]")
	}
	if len(vals) == 0 {
		return nil, sessions.ErrNotFound
	}
	return decode(principalID, vals)
}

func (r *Repo) Put(ctx context.Context, rec *sessions.Record) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		r.write(ctx, pipe, rec)
		return nil
	})
	if err != nil {
		return apperrors.Wrapf(err, "[sessions.redis Put]")
	}
	return nil
}

func (r *Repo) Swap(ctx context.Context, principalID, expectedHash string, next *sessions.Record) error {
	return r.compareAndSet(ctx, principalID, expectedHash, func(pipe redis.Pipeliner) {
		r.write(ctx, pipe, next)
	})
}

func (r *Repo) Delete(ctx context.Context, principalID, expectedHash string) error {
	return r.compareAndSet(ctx, principalID, expectedHash, func(pipe redis.Pipeliner) {
		pipe.Del(ctx, key(principalID))
	})
}

func (r *Repo) compareAndSet(ctx context.Context, principalID, expectedHash string, apply func(redis.Pipeliner)) error {
	txf := func(tx *redis.Tx) error {
		current, err := r.get(ctx, tx, principalID)
		if err != nil {
			return err
		}
		if current.TokenHash != expectedHash {
			return sessions.ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			apply(pipe)
			return nil
		})
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := r.client.Watch(ctx, txf, key(principalID))
		if apperrors.Is(err, redis.TxFailedErr) {
			// the key moved between WATCH and EXEC; re-read and decide again
			continue
		}
		return err
	}
	return sessions.ErrStale
}

func (r *Repo) write(ctx context.Context, pipe redis.Pipeliner, rec *sessions.Record) {
	k := key(rec.PrincipalID)
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k,
		"id", rec.ID,
		"token_hash", rec.TokenHash,
		"expires_at", rec.ExpiresAt.UTC().Format(time.RFC3339Nano),
		"created_at", rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	ttl := rec.ExpiresAt.Sub(r.nowFunc())
	if ttl <= 0 {
		ttl = time.Second
	}
	pipe.Expire(ctx, k, ttl)
}

func decode(principalID string, vals map[string]string) (*sessions.Record, error) {
	expiresAt, err := time.Parse(time.RFC3339Nano, vals["expires_at"])
	if err != nil {
		return nil, apperrors.Wrapf(err, "[sessions.redis decode] expires_at")
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, apperrors.Wrapf(err, "[sessions.redis decode] created_at")
	}
	return &sessions.Record{
		ID:          vals["id"],
		PrincipalID: principalID,
		TokenHash:   vals["token_hash"],
		ExpiresAt:   expiresAt,
		CreatedAt:   createdAt,
	}, nil
}

// NewClient builds a Redis client and verifies it answers a ping
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrapf(err, "[sessions.redis NewClient] ping %s", addr)
	}
	return client, nil
}

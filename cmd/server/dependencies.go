package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-session-server/audit"
	"github.com/jrsteele09/go-session-server/auth"
	"github.com/jrsteele09/go-session-server/internal/config"
	sessionspostgres "github.com/jrsteele09/go-session-server/sessions/postgres"
	"github.com/jrsteele09/go-session-server/sessions/redisrepo"
	sessionrepofake "github.com/jrsteele09/go-session-server/sessions/repofake"
	userspostgres "github.com/jrsteele09/go-session-server/users/postgres"
	fakeuserrepo "github.com/jrsteele09/go-session-server/users/repofake"
	"github.com/rs/zerolog/log"
)

// dependencies are the external resources selected by configuration
type dependencies struct {
	repos   auth.Repos
	audit   audit.Publisher
	closers []func()
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func openDependencies(ctx context.Context, c config.Config) (_ *dependencies, err error) {
	deps := &dependencies{}
	defer func() {
		if err != nil {
			deps.Close()
		}
	}()

	var pool *pgxpool.Pool
	getPool := func() (*pgxpool.Pool, error) {
		if pool != nil {
			return pool, nil
		}
		p, err := pgxpool.New(ctx, c.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("[openDependencies] postgres: %w", err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return nil, fmt.Errorf("[openDependencies] postgres ping: %w", err)
		}
		deps.closers = append(deps.closers, p.Close)
		pool = p
		return pool, nil
	}

	switch c.GetStoreDriver() {
	case config.StorePostgres:
		p, err := getPool()
		if err != nil {
			return nil, err
		}
		repo := userspostgres.NewRepo(p)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		deps.repos.Users = repo
	default:
		deps.repos.Users = fakeuserrepo.NewFakeUserRepo()
	}

	switch c.GetSessionStore() {
	case config.StorePostgres:
		p, err := getPool()
		if err != nil {
			return nil, err
		}
		repo := sessionspostgres.NewRepo(p)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		deps.repos.Sessions = repo
	case config.StoreRedis:
		client, err := redisrepo.NewClient(ctx, c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDB())
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, func() { _ = client.Close() })
		deps.repos.Sessions = redisrepo.NewRepo(client)
	default:
		deps.repos.Sessions = sessionrepofake.NewFakeSessionRepo()
	}

	logPublisher := audit.NewLogPublisher(nil)
	deps.audit = logPublisher
	if c.GetAuditSink() == config.AuditSinkAMQP {
		publisher, err := audit.NewAMQPPublisher(c.GetAMQPURL(), c.GetAuditQueue())
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, func() { _ = publisher.Close() })
		deps.audit = audit.MultiPublisher{logPublisher, publisher}
	}

	log.Info().
		Str("users", c.GetStoreDriver()).
		Str("sessions", c.GetSessionStore()).
		Str("audit", c.GetAuditSink()).
		Msg("dependencies ready")
	return deps, nil
}

package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"ordinal-quest-service/internal/app"
	"ordinal-quest-service/internal/config"
	"ordinal-quest-service/internal/infra/memory"
	"ordinal-quest-service/internal/infra/postgres"
	rediscache "ordinal-quest-service/internal/infra/redis"
	"ordinal-quest-service/internal/infra/sqlite"
)

// backends holds the stores selected by config and how to release them.
type backends struct {
	sessions app.SessionRepository
	live     app.GameRegistry
	closers  []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends picks the durable session log (postgres, then sqlite, then memory) and puts
// the history cache and live registry in redis when it is configured.
func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}

	var durable app.SessionRepository
	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		durable = postgres.NewSessionRepository(pool)
		log.Info().Msg("session log: postgres")
	case cfg.SQLite.Path != "":
		repo, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = repo.Close() })
		durable = repo
		log.Info().Str("path", cfg.SQLite.Path).Msg("session log: sqlite")
	default:
		durable = memory.NewSessionRepository()
		log.Warn().Msg("session log: memory, records are lost on restart")
	}

	ttl := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	if cfg.Redis.Addr == "" {
		b.sessions = memory.NewHistoryCache(durable, ttl)
		b.live = memory.NewGameRegistry()
		return b, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	b.closers = append(b.closers, func() { _ = client.Close() })
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable, cache will fall back to the session log")
	}
	b.sessions = rediscache.NewHistoryCache(client, durable, ttl)
	b.live = rediscache.NewGameRegistry(client, ttl)
	return b, nil
}

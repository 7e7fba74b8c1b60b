package app

import (
	"context"

	"github.com/ilindan-dev/seq-chat-bridge/internal/config"
	repo "github.com/ilindan-dev/seq-chat-bridge/internal/domain/repository"
	"github.com/ilindan-dev/seq-chat-bridge/internal/storage/postgres"
	"github.com/ilindan-dev/seq-chat-bridge/internal/storage/redis"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// newDeliveryJournal builds the optional delivery journal: Postgres, with a
// Redis cache in front when redis.addr is set. It returns nil when postgres.dsn is empty.
func newDeliveryJournal(cfg *config.Config, logger *zerolog.Logger, lc fx.Lifecycle) (repo.DeliveryRepository, error) {
	log := logger.With().Str("component", "journal").Logger()
	if cfg.Postgres.DSN == "" {
		log.Info().Msg("delivery journal disabled")
		return nil, nil
	}

	pool, err := postgres.NewPool(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		pool.Close()
		return nil
	}})

	var journal repo.DeliveryRepository = postgres.NewDeliveryRepository(pool, logger)
	if cfg.Redis.Addr == "" {
		log.Info().Msg("delivery journal enabled without cache")
		return journal, nil
	}

	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		return client.Close()
	}})

	log.Info().Dur("ttl", cfg.Redis.TTL).Msg("delivery journal enabled with redis cache")
	return redis.NewCachedDeliveryRepository(journal, redis.NewDeliveryCache(logger, client), logger, cfg.Redis.TTL), nil
}

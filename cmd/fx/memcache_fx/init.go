package memcache_fx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bimabora/internal/config"
	mem "bimabora/pkg/memcache"
)

var Module = fx.Provide(provideTokenStore)

func provideTokenStore(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) mem.TokenStore {
	if cfg.TokenStore != config.TokenStoreRedis {
		return mem.NewAccessTokens()
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// an unreachable redis only degrades caching
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("redis token store unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return mem.NewRedisTokens(client, "bimabora:", logger.Named("token_store"))
}

package mem

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisTokens shares cached tokens between replicas. Redis failures are
// logged and treated as a cache miss.
type RedisTokens struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

func NewRedisTokens(client *redis.Client, prefix string, logger *zap.Logger) *RedisTokens {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisTokens{client: client, prefix: prefix, logger: logger}
}

func (r *RedisTokens) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("token cache read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

func (r *RedisTokens) Set(ctx context.Context, key string, token string, ttl time.Duration) {
	if err := r.client.Set(ctx, r.prefix+key, token, ttl).Err(); err != nil {
		r.logger.Warn("token cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *RedisTokens) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.logger.Warn("token cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

package ratelimit

import (
	"strings"

	"github.com/cohortly/cohortly/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewRedisClient),
	fx.Provide(NewLocker),
	fx.Provide(NewTokenBucket),
	fx.Provide(NewCheckoutLimiter),
)

// NewRedisClient returns nil when no redis address is configured; the
// consumers degrade to single-instance behavior.
func NewRedisClient(cfg *config.Config, log *zap.Logger) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		log.Named("rate.limit").Info("redis not configured, distributed coordination disabled")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
	})
}

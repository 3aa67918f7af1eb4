package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
)

// newRedisClient connects to the summary cache. Redis is optional: with no
// REDIS_ADDR configured summaries are recomputed on every read.
func newRedisClient(cfg Config, log *logger.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("no REDIS_ADDR configured, summary caching disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, summary caching disabled", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	log.Info("redis connected", "addr", cfg.RedisAddr)
	return client
}

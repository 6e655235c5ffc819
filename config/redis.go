package config

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/streamcart/streamcart_backend/logger"
)

// ConnectRedis returns nil when Redis cannot be reached. OTP login and token
// revocation are unavailable in that case.
func ConnectRedis(cfg RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis connection failed")
		client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Addr).Msg("connected to Redis")
	return client
}

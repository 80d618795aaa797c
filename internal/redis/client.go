package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medcal/scheduling/internal/config"
)

// NewRedisClient connects the client backing the per-doctor calendar
// locks. Lock commands must finish well inside the lock TTL, so the
// per-command timeouts are capped at half of it.
func NewRedisClient(cfg config.Config) (*redis.Client, error) {
	opTimeout := 2 * time.Second
	if cfg.LockTTL > 0 && cfg.LockTTL/2 < opTimeout {
		opTimeout = cfg.LockTTL / 2
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		DB:           0,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

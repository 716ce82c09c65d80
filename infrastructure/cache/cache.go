package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"content-studio/infrastructure/logger"
)

// NewCache connects to Redis. A nil client is returned on failure so callers
// can degrade gracefully (page lists are then fetched from the platform on
// every request).
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not reachable")
		return nil, err
	}
	return client, nil
}

package redis

import (
	"context"

	"civic-registry/internal/common/config"

	"github.com/go-redis/redis/v8"
)

// Client is an alias so callers need not import go-redis directly.
type Client = redis.Client

// NewRedisClient builds a client; it does not dial until first use.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping checks connectivity.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Close releases the client.
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}

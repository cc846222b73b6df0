package database

import (
	"context"
	"fmt"
	"time"

	"events-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// InitRedis parses the URL, applies the password override and pings the server.
func InitRedis(config utils.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if config.Password != "" {
		opts.Password = config.Password
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	return client, nil
}

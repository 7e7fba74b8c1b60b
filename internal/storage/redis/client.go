package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ilindan-dev/seq-chat-bridge/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient creates a go-redis client and checks the connection.
func NewClient(cfg *config.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to connect to %s: %w", cfg.Redis.Addr, err)
	}
	return client, nil
}

package client

import (
	"context"
	"fmt"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/redis/go-redis/v9"
)

func NewRedisClient(ctx context.Context, cfg dto.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: 10,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}

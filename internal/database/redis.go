package database

import (
	"context"
	"partnerhub-backend/config"

	"github.com/go-redis/redis/v8"
)

var (
	RedisClient *redis.Client
	Ctx         = context.Background()
)

func ConnectRedis(cfg *config.Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisFullAddr(),
		Password: cfg.RedisPassword,
		DB:       0, // use default DB
	})

	_, err := RedisClient.Ping(Ctx).Result()
	return err
}

// RedisEnabled reports whether a Redis host was configured at all.
func RedisEnabled(cfg *config.Config) bool {
	return cfg.RedisAddr != ""
}

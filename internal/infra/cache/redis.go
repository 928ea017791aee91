package cache

import (
	"context"
	"fmt"

	"github.com/KadaVoice/pos-service/config"
	"github.com/go-redis/redis/v8"
)

func Init(config config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Username: config.RedisUser,
		Password: config.RedisPass,
		DB:       config.RedisDb,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("unable to connect to redis: %v", err)
	}

	return client, nil
}

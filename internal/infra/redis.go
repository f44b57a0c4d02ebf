package infra

import (
	"github.com/redis/go-redis/v9"
	"github.com/umalmyha/contacts-api/internal/config"
)

func Redis(cfg config.RedisCfg) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

package main

import (
	"context"
	"fmt"
	"log"

	"bloodbank-backend/internal/config"
	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/idempotency"
	"bloodbank-backend/internal/server"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.Load()
	database.Init(cfg)

	var idem idempotency.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		idem = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL)
		log.Printf("Idempotency keys stored in redis at %s", cfg.RedisAddr)
	} else {
		idem = idempotency.NewMemoryStore(cfg.IdempotencyTTL)
		log.Println("[WARN] REDIS_ADDR is not set, idempotency keys are kept in memory")
	}

	app := server.New(cfg, idem)
	return app.Listen(":" + cfg.HTTPPort)
}

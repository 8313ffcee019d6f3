// cmd/historian/main.go is an asynchronous historian service that pops finished
// turn and game records from a Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/sketch/internal/cache"
	"github.com/jason-s-yu/sketch/internal/config"
	"github.com/jason-s-yu/sketch/internal/database"
	"github.com/jason-s-yu/sketch/internal/historian"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	redisAddr := cfg.RedisAddr
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	rdb, err := cache.Connect(ctx, redisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer pool.Close()

	store := database.NewResultStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatalf("%v", err)
	}

	svc := historian.NewService(
		historian.NewRedisSource(rdb, cfg.QueueName),
		store,
		cfg.HistorianBatch,
		cfg.HistorianFlush,
		logger,
	)
	svc.Run(ctx)
	logger.Info("Historian shutdown complete.")
}

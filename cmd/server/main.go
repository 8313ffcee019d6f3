// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/sketch/internal/cache"
	"github.com/jason-s-yu/sketch/internal/config"
	"github.com/jason-s-yu/sketch/internal/game"
	"github.com/jason-s-yu/sketch/internal/handlers"
	"github.com/jason-s-yu/sketch/internal/metrics"
	"github.com/jason-s-yu/sketch/internal/middleware"
	"github.com/jason-s-yu/sketch/internal/room"
	"github.com/jason-s-yu/sketch/internal/words"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lists := words.Defaults()
	if cfg.WordsDir != "" {
		var err error
		if lists, err = words.LoadDir(cfg.WordsDir); err != nil {
			logger.Fatalf("failed to load word lists: %v", err)
		}
	}
	bank, err := words.NewBank(lists)
	if err != nil {
		logger.Fatalf("invalid word lists: %v", err)
	}

	var publisher cache.Publisher = cache.NoopPublisher{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		defer rdb.Close()
		publisher = cache.NewRedisPublisher(rdb, cfg.QueueName)
		logger.Infof("Publishing results to Redis list %s", cfg.QueueName)
	}

	collector := metrics.NewCollector()
	hub := handlers.NewHub(logger, collector, handlers.RateLimit{
		PerSecond: cfg.WSRatePerSec,
		Burst:     cfg.WSRateBurst,
	})
	engine := game.NewEngine(game.Config{
		Registry:    room.NewRegistry(),
		Bank:        bank,
		Broadcaster: hub,
		Publisher:   publisher,
		Metrics:     collector,
		Logger:      logger,
	})

	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)
	mux.Handle("/ws", logged(handlers.RoomWSHandler(logger, engine, hub, collector)))
	mux.Handle("/health", logged(handlers.HealthHandler(engine, hub)))
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{Addr: cfg.Addr(), Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Running on %s", cfg.Addr())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}

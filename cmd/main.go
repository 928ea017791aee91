package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KadaVoice/pos-service/config"
	"github.com/KadaVoice/pos-service/internal/infra/cache"
	"github.com/KadaVoice/pos-service/internal/infra/postgres"
	"github.com/KadaVoice/pos-service/internal/infra/server"
	"github.com/KadaVoice/pos-service/pkg/logger"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	mainContext := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defaultLogger, loggerProvider, err := logger.NewObservableLogger(&cfg)
	if err != nil {
		// OTLP log export is optional, degrade to the local handler
		defaultLogger = logger.NewLogger(&cfg)
		defaultLogger.Warn("observable logger unavailable, using local handler", slog.String("error", err.Error()))
	}
	slog.SetDefault(defaultLogger)
	if loggerProvider != nil {
		defer func() {
			if err := loggerProvider.Shutdown(mainContext); err != nil {
				slog.Error("failed to shutdown log provider", slog.String("error", err.Error()))
			}
		}()
	}

	var conn *pgxpool.Pool
	if cfg.DbEnabled {
		conn, err = postgres.Init(cfg)
		if err != nil {
			slog.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		slog.Info("Database disabled, catalog will load from embedded seed")
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient, err = cache.Init(cfg)
		if err != nil {
			slog.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	srv := server.New(mainContext, &cfg, conn, redisClient)
	if srv == nil {
		slog.Error("failed to initialize server")
		os.Exit(1)
	}

	srv.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	srv.Shutdown()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("failed to close redis client", slog.String("error", err.Error()))
		}
	}
}

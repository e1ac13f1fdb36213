package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/config"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/database"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/logger"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/notifications"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/repository"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/routes"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/worker"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zlog.Sync()

	pool, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	var notifier notifications.Notifier = notifications.NopNotifier{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := notifications.NewRabbitMQNotifier(cfg.RabbitMQURL)
		if err != nil {
			zlog.Warn("rabbitmq unavailable, notifications disabled", zap.Error(err))
		} else {
			notifier = rabbit
			defer rabbit.Close()
		}
	}

	sweeper := worker.NewPendingSweeper(repository.NewSessionRepository(pool), cfg.PendingSessionTTL, zlog)
	if err := sweeper.Start(); err != nil {
		zlog.Fatal("start pending sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	app := fiber.New()
	routes.Register(app, cfg, pool, notifier, zlog)

	zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"dikenang-service/internal/config"
	"dikenang-service/internal/database"
	"dikenang-service/internal/notification"
	"dikenang-service/internal/user"
	"dikenang-service/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logg.Fatal("Failed to connect to postgres", "error", err)
	}

	userService := user.NewService(user.NewRepository(db), cfg.JWT.Secret, cfg.JWT.Expire)

	worker := notification.NewWorker(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		cfg.Kafka.ConsumerGroup,
		notification.NewRepository(db),
		userService,
		logg,
	)
	defer worker.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logg.Info("notification worker starting", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.ConsumerGroup)
	if err := worker.Run(ctx); err != nil {
		logg.Fatal("Worker error", "error", err)
	}
	logg.Info("notification worker stopped")
}

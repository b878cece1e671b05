package main

// @title           Dikenang API
// @version         1.0
// @description     Private social platform for sharing memories with a partner.
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "dikenang-service/docs"
	"dikenang-service/internal/config"
	"dikenang-service/internal/server"
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

	app, err := server.NewApp(cfg, logg)
	if err != nil {
		logg.Fatal("Failed to initialize application", "error", err)
	}

	go func() {
		if err := app.Run(); err != nil {
			logg.Fatal("Application error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		logg.Error("Server forced to shutdown", "error", err)
	}

	logg.Info("Server stopped")
}

package main

import (
	"context"
	"os/signal"
	"syscall"

	"wipertech/storefront/internal/config"
	"wipertech/storefront/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.Info("Starting Wipertech storefront...")

	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Info("Configuration loaded successfully")

	// Initialize container with all dependencies
	app, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run the application
	runErr := app.Run(ctx)

	if err := app.Close(); err != nil {
		log.Errorf("Failed to close container: %v", err)
	}

	if runErr != nil {
		log.Fatalf("Application exited with error: %v", runErr)
	}

	log.Info("Application finished successfully")
}

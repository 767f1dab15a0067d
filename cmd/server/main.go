package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecosnap/backend/config"
	"github.com/ecosnap/backend/internal/app"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("ECOSNAP_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logCloser := app.SetupLogging(cfg.Log)
	defer logCloser.Close()

	log.Printf("Starting EcoSnap Backend v%s", app.Version)
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Serve(ctx); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// Command mailverifyd serves the validation HTTP API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/optimode/mailverify/internal/app"
	"github.com/optimode/mailverify/internal/config"
)

func main() {
	cfg, err := config.Load("mailverifyd", os.Args[1:])
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Printf("Error syncing logger: %v", err)
		}
	}()

	application, err := app.NewApp(cfg, nil, logger)
	if err != nil {
		logger.Fatal("Error creating application", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		os.Exit(1)
	}
}

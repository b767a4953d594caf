package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/auriorajaa/safe/app"
	"github.com/auriorajaa/safe/config"
	"github.com/auriorajaa/safe/logging"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		slog.Error("finnews-api failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	a, err := app.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return a.Serve(ctx)
}

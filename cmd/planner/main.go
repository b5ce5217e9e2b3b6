package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"defense-planner/internal/config"
	"defense-planner/internal/injector"
	"defense-planner/internal/logger"
)

func main() {
	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize planner: %v", err)
	}
	defer app.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Service.Start(ctx); err != nil {
		app.Log.Fatal("failed to start planner", logger.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(app.Service.Serve)
	g.Go(func() error {
		<-gctx.Done()
		app.Log.Info("shutting down planner")
		app.Service.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		app.Log.Error("planner stopped with error", logger.Error(err))
		os.Exit(1)
	}
	app.Log.Info("planner stopped")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

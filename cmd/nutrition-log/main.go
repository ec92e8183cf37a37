// cmd/nutrition-log/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"nutrition-log/internal/config"
	"nutrition-log/internal/events"
	"nutrition-log/internal/logging"
	"nutrition-log/internal/nutrition"
	"nutrition-log/internal/server"
	"nutrition-log/internal/storage"
	"nutrition-log/internal/tracker"
)

const version = "1.0.0"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load()
	showVersion, err := cfg.ParseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if showVersion {
		fmt.Printf("nutrition-log version %s\n", version)
		os.Exit(0)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("nutrition log server failed")
	}
}

func run(cfg config.Config, logger *logrus.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	time.Local = loc

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.Open(ctx, storage.Config{
		Driver:      cfg.DBDriver,
		SQLitePath:  cfg.DBPath,
		PostgresURL: cfg.PostgresURL,
		Location:    loc,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	if cfg.NutritionixAppID == "" || cfg.NutritionixAppKey == "" {
		logger.Warn("NUTRITIONIX_APP_ID or NUTRITIONIX_APP_KEY is not set; lookups will fail")
	}
	resolver := nutrition.NewClient(nutrition.Config{
		BaseURL: cfg.NutritionixURL,
		AppID:   cfg.NutritionixAppID,
		AppKey:  cfg.NutritionixAppKey,
		Timeout: cfg.LookupTimeout,
	})

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.WithField("topic", cfg.KafkaTopic).Info("publishing meal events to kafka")
	}
	defer publisher.Close()

	tr := tracker.New(resolver, store, publisher, logger, nil)

	srv := server.NewNutritionLogServer(&server.Config{
		Address: cfg.Address(),
		Version: version,
	}, tr, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	return nil
}

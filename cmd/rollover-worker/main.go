package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting rollover-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, archived records will not be mirrored",
				applog.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	rollover := services.NewRolloverService(repo, publisher, logger)

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.SweepTimeout)
		defer cancel()

		start := time.Now()
		if err := rollover.SweepAll(ctx, time.Now()); err != nil {
			logger.Error("Sweep finished with errors", applog.FieldError, err)
			return
		}
		logger.Info("Sweep complete", applog.FieldDuration, time.Since(start).Milliseconds())
	}

	// Catch up immediately in case the process was down over a month
	// boundary, then follow the cron schedule.
	sweep()

	c := cron.New()
	if _, err := c.AddFunc(cfg.SweepSchedule, sweep); err != nil {
		logger.Error("Invalid sweep schedule",
			applog.FieldError, err, "schedule", cfg.SweepSchedule)
		os.Exit(1)
	}
	c.Start()

	logger.Info("Rollover sweep scheduled", "schedule", cfg.SweepSchedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("Worker stopped gracefully")
}

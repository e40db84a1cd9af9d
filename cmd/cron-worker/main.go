package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iodacademy/lendstock-backend/internal/cron"
	"github.com/iodacademy/lendstock-backend/internal/notifications"
	"github.com/iodacademy/lendstock-backend/internal/settings"
	"github.com/iodacademy/lendstock-backend/internal/transactions"
	"github.com/iodacademy/lendstock-backend/pkg/config"
	"github.com/iodacademy/lendstock-backend/pkg/db"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
	"github.com/iodacademy/lendstock-backend/pkg/metrics"
	"github.com/iodacademy/lendstock-backend/pkg/migrate"
	"github.com/iodacademy/lendstock-backend/pkg/outbox"
	"github.com/iodacademy/lendstock-backend/pkg/redis"
)

const lockKeyFormat = "ls:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry, err := buildRegistry(logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	gdb := dbClient.DB()

	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notifications.NewRepository(gdb),
	})
	if err != nil {
		return nil, err
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outbox.NewRepository(gdb),
	})
	if err != nil {
		return nil, err
	}

	settingsSvc, err := settings.NewService(gdb)
	if err != nil {
		return nil, err
	}
	overdueJob, err := cron.NewOverdueBorrowJob(cron.OverdueBorrowJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: transactions.NewRepository(gdb),
		Settings:   settingsSvc,
		Outbox:     outbox.NewService(outbox.NewRepository(gdb), logg),
	})
	if err != nil {
		return nil, err
	}

	return cron.NewRegistry(cleanupJob, retentionJob, overdueJob), nil
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}

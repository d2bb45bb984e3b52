package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/HarshArya1405/typescriptDemo/internal/cron"
	"github.com/HarshArya1405/typescriptDemo/internal/protocols"
	"github.com/HarshArya1405/typescriptDemo/internal/tags"
	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/HarshArya1405/typescriptDemo/pkg/db"
	"github.com/HarshArya1405/typescriptDemo/pkg/feeds"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/metrics"
	"github.com/HarshArya1405/typescriptDemo/pkg/redis"
)

const lockKeyFormat = "valu:catalog-sync:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "catalog-sync"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "catalog-sync",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Catalog.SyncInterval.String(),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	feedClient := feeds.NewClient(cfg.Catalog, logg)

	tagsSvc, err := tags.NewService(tags.NewRepository(dbClient.DB()), feedClient, logg)
	requireResource(ctx, logg, "tags service", err)
	protocolsSvc, err := protocols.NewService(protocols.NewRepository(dbClient.DB()), feedClient, logg)
	requireResource(ctx, logg, "protocols service", err)

	tagJob, err := cron.NewTagSyncJob(tagsSvc, logg)
	requireResource(ctx, logg, "tag sync job", err)
	protocolJob, err := cron.NewProtocolSyncJob(protocolsSvc, logg)
	requireResource(ctx, logg, "protocol sync job", err)

	locker, err := redis.NewLocker(redisClient, cfg.Catalog.SyncLockTTL)
	requireResource(ctx, logg, "locker", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Jobs:     []cron.Job{tagJob, protocolJob},
		Locker:   locker,
		LockKey:  lockKey(cfg.App.Env),
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Catalog.SyncInterval,
	})
	requireResource(ctx, logg, "cron service", err)

	logg.Info(ctx, "starting catalog sync")
	runErr := service.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	closeErr := multierr.Combine(runErr, redisClient.Close(), dbClient.Close())
	if closeErr != nil {
		for _, err := range multierr.Errors(closeErr) {
			logg.Error(context.Background(), "catalog sync stopped with error", err)
		}
		os.Exit(1)
	}
	logg.Info(context.Background(), "catalog sync shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}

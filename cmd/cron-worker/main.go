package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aldomartell/tipply-backend/internal/cron"
	"github.com/aldomartell/tipply-backend/internal/ledger"
	"github.com/aldomartell/tipply-backend/internal/milestones"
	"github.com/aldomartell/tipply-backend/internal/payouts"
	"github.com/aldomartell/tipply-backend/internal/reversals"
	"github.com/aldomartell/tipply-backend/internal/rewards"
	"github.com/aldomartell/tipply-backend/pkg/config"
	"github.com/aldomartell/tipply-backend/pkg/db"
	"github.com/aldomartell/tipply-backend/pkg/logger"
	"github.com/aldomartell/tipply-backend/pkg/metrics"
	"github.com/aldomartell/tipply-backend/pkg/redis"
)

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

	cfg.Service.Kind = "cron-worker"

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

	ledgerRepo := ledger.NewRepository(dbClient.DB())
	ledgerStore, err := ledger.NewStore(dbClient, ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger store", err)
		os.Exit(1)
	}

	milestoneSvc, err := milestones.NewService(milestones.ServiceParams{
		Repo:    milestones.NewRepository(dbClient.DB()),
		Ledger:  ledgerStore,
		Rewards: cfg.Rewards,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create milestone evaluator", err)
		os.Exit(1)
	}

	reversalSvc, err := reversals.NewService(reversals.ServiceParams{
		Repo:    reversals.NewRepository(dbClient.DB()),
		Entries: ledgerRepo,
		Ledger:  ledgerStore,
		Rewards: cfg.Rewards,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reversal evaluator", err)
		os.Exit(1)
	}

	payoutSvc, err := payouts.NewService(payouts.ServiceParams{
		Repo:    payouts.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Payouts: cfg.Payouts,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payout service", err)
		os.Exit(1)
	}

	runner, err := rewards.NewRunner(rewards.RunnerParams{
		Milestones: milestoneSvc,
		Reversals:  reversalSvc,
		Batches:    payoutSvc,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create weekly runner", err)
		os.Exit(1)
	}

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)

	weeklyJob, err := cron.NewWeeklyRewardsJob(cron.WeeklyRewardsJobParams{
		Logger:  logg,
		Runner:  runner,
		Metrics: jobMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create weekly rewards job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, cron.WorkerLockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(weeklyJob),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

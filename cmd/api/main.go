package main

import (
	"context"
	"net/http"
	"os"

	"github.com/aldomartell/tipply-backend/api/routes"
	"github.com/aldomartell/tipply-backend/internal/ledger"
	"github.com/aldomartell/tipply-backend/internal/milestones"
	"github.com/aldomartell/tipply-backend/internal/payouts"
	"github.com/aldomartell/tipply-backend/internal/reversals"
	"github.com/aldomartell/tipply-backend/internal/rewards"
	"github.com/aldomartell/tipply-backend/pkg/config"
	"github.com/aldomartell/tipply-backend/pkg/db"
	"github.com/aldomartell/tipply-backend/pkg/logger"
	"github.com/aldomartell/tipply-backend/pkg/redis"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
	ledgerHistory, err := ledger.NewHistory(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger history", err)
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

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Milestones: milestoneSvc,
			Reversals:  reversalSvc,
			Payouts:    payoutSvc,
			Runner:     runner,
			Ledger:     ledgerHistory,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

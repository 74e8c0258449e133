package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	clibootstrap "bilancio/internal/cli"
	"bilancio/internal/services"
	"bilancio/internal/worker"
)

func main() {
	clibootstrap.LoadEnvFile()
	logger := clibootstrap.SetupLogger()

	logger.Info("Starting checkpoint-worker")

	cfg := clibootstrap.LoadAndValidateConfig(logger)

	repo := clibootstrap.InitSQLite(logger, cfg.SQLiteDBPath)
	amqpClient := clibootstrap.InitAMQP(logger, cfg)

	ledger := services.NewLedgerService(repo, amqpClient)
	defer ledger.Close()

	cpWorker := worker.NewCheckpointWorker(ledger)

	ctx := clibootstrap.GracefulShutdown(logger, 10*time.Second, nil)

	logger.Info("Checkpoint worker configured",
		"interval", cfg.CheckpointInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cpWorker.Run(runCtx, cfg.CheckpointInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Checkpoint worker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Checkpoint worker stopped gracefully")
}

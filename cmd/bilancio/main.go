package main

import (
	"context"
	"net/http"
	"os"
	"time"

	clibootstrap "bilancio/internal/cli"
	apphttp "bilancio/internal/http"
	"bilancio/internal/services"
	"bilancio/internal/store"
)

func main() {
	clibootstrap.LoadEnvFile()
	logger := clibootstrap.SetupLogger()
	cfg := clibootstrap.LoadAndValidateConfig(logger)

	var ledger apphttp.Ledger
	var cleanup func()

	switch cfg.DataBackend {
	case "sqlite":
		repo := clibootstrap.InitSQLite(logger, cfg.SQLiteDBPath)
		amqpClient := clibootstrap.InitAMQP(logger, cfg)
		svc := services.NewLedgerService(repo, amqpClient)
		ledger = svc
		cleanup = func() {
			if err := svc.Close(); err != nil {
				logger.Error("Ledger service close error", "error", err)
			}
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
	default:
		ledger = store.NewMemoryLedger(store.New())
		cleanup = func() {}
		logger.Info("Initialized memory backend")
	}

	srv := apphttp.NewServer(":"+cfg.Port, ledger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx := clibootstrap.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cleanup()
	})

	logger.Info("Starting bilancio server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"expenses/internal/amqp"
	"expenses/internal/cli"
	"expenses/internal/config"
	applog "expenses/internal/log"
	gsheet "expenses/internal/sheets/google"
	"expenses/internal/storage"
	"expenses/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := cli.SetupLogger(cfg, false, os.Stderr).WithComponent(applog.ComponentWorker)
	logger.Info("Starting expenses-worker")

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	if cfg.DataBackend != "sqlite" {
		return fmt.Errorf("worker reads the sqlite store, got DATA_BACKEND=%s", cfg.DataBackend)
	}
	if !cfg.AMQPEnabled() {
		return errors.New("AMQP_URL is required")
	}
	if !cfg.SheetsEnabled() {
		return errors.New("GOOGLE_SPREADSHEET_ID is required")
	}

	ctx, cancel := cli.ShutdownContext(applog.WithContext(context.Background(), logger), logger)
	defer cancel()

	repo, err := storage.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.Initialize(ctx); err != nil {
		return err
	}

	sheets, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		TotalsSheetName:    cfg.GoogleTotalsSheetName,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
	})
	if err != nil {
		return fmt.Errorf("google sheets client: %w", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("amqp client: %w", err)
	}
	defer client.Close()

	w := worker.NewSyncWorker(repo, sheets)

	// Catch up on anything missed while the worker was down.
	if err := w.Resync(ctx); err != nil {
		logger.Error("Startup resync failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeExpenseEvents(gctx, w.HandleEvent)
	})
	g.Go(func() error {
		return w.RunPeriodicResync(gctx, cfg.SyncInterval)
	})
	return g.Wait()
}

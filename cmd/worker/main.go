package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rostam/opsdesk/internal/application/notify"
	"github.com/rostam/opsdesk/internal/config"
	"github.com/rostam/opsdesk/internal/infrastructure/persistence/postgres"
	"github.com/rostam/opsdesk/internal/infrastructure/persistence/sqlite"
)

// workerStore is the storage surface the dispatcher needs.
type workerStore interface {
	notify.Repository
	Close() error
}

// Standalone notification dispatcher. Deployments that want delivery
// decoupled from the API server run this instead of the in-process
// dispatcher.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	var opts []notify.Option
	if cfg.Notify.PollInterval > 0 {
		opts = append(opts, notify.WithPollInterval(cfg.Notify.PollInterval))
	}
	if cfg.Notify.OperationTimeout > 0 {
		opts = append(opts, notify.WithOperationTimeout(cfg.Notify.OperationTimeout))
	}
	if cfg.Notify.BatchSize > 0 {
		opts = append(opts, notify.WithBatchSize(cfg.Notify.BatchSize))
	}
	if cfg.Notify.MaxAttempts > 0 {
		opts = append(opts, notify.WithMaxAttempts(cfg.Notify.MaxAttempts))
	}

	dispatcher := notify.NewDispatcher(store, notify.LogSender{}, opts...)

	// Blocks until the context is cancelled by a signal.
	return dispatcher.Start(ctx)
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (workerStore, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		})
	case config.DriverSQLite:
		return sqlite.NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rostam/opsdesk/internal/application/auth"
	"github.com/rostam/opsdesk/internal/application/crm"
	"github.com/rostam/opsdesk/internal/application/leave"
	"github.com/rostam/opsdesk/internal/application/notify"
	"github.com/rostam/opsdesk/internal/application/task"
	"github.com/rostam/opsdesk/internal/application/trash"
	"github.com/rostam/opsdesk/internal/config"
	"github.com/rostam/opsdesk/internal/domain"
	httpinfra "github.com/rostam/opsdesk/internal/infrastructure/http"
	"github.com/rostam/opsdesk/internal/infrastructure/http/handler"
	"github.com/rostam/opsdesk/internal/infrastructure/persistence/postgres"
	"github.com/rostam/opsdesk/internal/infrastructure/persistence/sqlite"
	"github.com/rostam/opsdesk/internal/storage"
	"github.com/rostam/opsdesk/internal/storage/fs"
	"github.com/rostam/opsdesk/internal/storage/gcs"
	"github.com/rostam/opsdesk/pkg/observability"
)

// backend is the storage surface the server wires together. Both the
// postgres and sqlite stores satisfy it.
type backend interface {
	task.Repository
	task.TeamMembership
	crm.Repository
	leave.Repository
	trash.Repository
	trash.AccessPolicy
	auth.Repository
	notify.Repository

	EntityStores() map[domain.EntityKind]trash.EntityStore
	Close() error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Best-effort: a missing .env file just means everything comes from
	// the real environment.
	_ = godotenv.Load()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Root context for all normal operations, cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lp, logger, err := observability.InitLogger(ctx, cfg.Observability.ServiceName, cfg.Observability.OTelEnabled)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer shutdownProvider(lp.Shutdown, "logger provider")
	slog.SetDefault(logger)

	tp, err := observability.InitTracerProvider(ctx, cfg.Observability.ServiceName, cfg.Observability.OTelEnabled)
	if err != nil {
		return fmt.Errorf("failed to init tracer provider: %w", err)
	}
	defer shutdownProvider(tp.Shutdown, "tracer provider")

	mp, err := observability.InitMeterProvider(ctx, cfg.Observability.ServiceName, cfg.Observability.OTelEnabled)
	if err != nil {
		return fmt.Errorf("failed to init meter provider: %w", err)
	}
	defer shutdownProvider(mp.Shutdown, "meter provider")

	slog.InfoContext(ctx, "starting opsdesk server", "driver", cfg.Database.Driver)

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	blobs, err := openBlobStore(ctx, cfg.Attachments)
	if err != nil {
		return fmt.Errorf("failed to open attachment store: %w", err)
	}

	authenticator := auth.NewAuthenticator(ctx, store, auth.Config{
		OperationTimeout: cfg.Auth.OperationTimeout,
		UpdateQueueSize:  cfg.Auth.UpdateQueueSize,
	})

	outbox := notify.NewOutbox(store)
	dispatcher := notify.NewDispatcher(store, notify.LogSender{}, dispatcherOptions(cfg.Notify)...)

	taskSvc := task.NewService(store, store, store, outbox)
	crmSvc := crm.NewService(store, store)
	leaveSvc := leave.NewService(store, store)

	ledger := trash.NewLedger(store, store)
	for kind, entityStore := range store.EntityStores() {
		ledger.Register(kind, entityStore)
	}

	apiRouter := handler.NewRouter(taskSvc, crmSvc, leaveSvc, ledger, blobs)
	server := httpinfra.NewAPIServer(apiRouter, authenticator, httpinfra.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
	})

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		if err := dispatcher.Start(ctx); err != nil {
			slog.Error("notification dispatcher stopped with error", "error", err)
		}
	}()

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.WarnContext(shutdownCtx, "HTTP server shutdown timed out", "error", err)
		}

		// The dispatcher stops on its own once ctx is cancelled; wait for
		// the in-flight delivery cycle within the shutdown window.
		select {
		case <-dispatcherDone:
		case <-shutdownCtx.Done():
			slog.WarnContext(shutdownCtx, "dispatcher shutdown timed out")
		}

		// Drains pending last_used_at updates.
		if err := authenticator.Shutdown(shutdownCtx); err != nil {
			slog.WarnContext(shutdownCtx, "authenticator shutdown timeout", "error", err)
		}

		return nil
	case err := <-errResult:
		return err
	}
}

// openStore opens the configured database backend and runs migrations.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "postgres storage initialized", "dsn", maskPassword(cfg.DSN))
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "sqlite storage initialized", "path", cfg.SQLitePath)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}

// openBlobStore opens the configured attachment backend.
func openBlobStore(ctx context.Context, cfg config.AttachmentsConfig) (storage.BlobStore, error) {
	switch cfg.Backend {
	case config.AttachmentsFS:
		return fs.NewStore(cfg.FSDir)
	case config.AttachmentsGCS:
		return gcs.NewStore(ctx, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown attachments backend: %s", cfg.Backend)
	}
}

// dispatcherOptions translates config into dispatcher options, leaving
// zero values to the dispatcher defaults.
func dispatcherOptions(cfg config.NotifyConfig) []notify.Option {
	var opts []notify.Option
	if cfg.PollInterval > 0 {
		opts = append(opts, notify.WithPollInterval(cfg.PollInterval))
	}
	if cfg.OperationTimeout > 0 {
		opts = append(opts, notify.WithOperationTimeout(cfg.OperationTimeout))
	}
	if cfg.BatchSize > 0 {
		opts = append(opts, notify.WithBatchSize(cfg.BatchSize))
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, notify.WithMaxAttempts(cfg.MaxAttempts))
	}
	return opts
}

// shutdownProvider flushes an observability provider with a timeout so an
// unreachable collector can't hang process exit.
func shutdownProvider(shutdown func(context.Context) error, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shutdown "+name, "error", err)
	}
}

// maskPassword masks the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}

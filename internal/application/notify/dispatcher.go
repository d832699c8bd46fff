package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher drains the notification outbox on a ticker. Each cycle claims
// a batch of pending rows and hands them to the Sender; failures are
// retried on later cycles until maxAttempts, then parked as failed.
type Dispatcher struct {
	repo             Repository
	sender           Sender
	pollInterval     time.Duration
	operationTimeout time.Duration
	batchSize        int
	maxAttempts      int
	wg               sync.WaitGroup
}

// Option is a functional option for configuring Dispatcher.
type Option func(*Dispatcher)

// WithPollInterval sets how often the dispatcher claims a batch.
func WithPollInterval(d time.Duration) Option {
	return func(w *Dispatcher) {
		w.pollInterval = d
	}
}

// WithOperationTimeout sets the timeout for one delivery cycle.
func WithOperationTimeout(d time.Duration) Option {
	return func(w *Dispatcher) {
		w.operationTimeout = d
	}
}

// WithBatchSize sets how many rows one cycle claims.
func WithBatchSize(n int) Option {
	return func(w *Dispatcher) {
		w.batchSize = n
	}
}

// WithMaxAttempts sets the retry budget before a row is parked as failed.
func WithMaxAttempts(n int) Option {
	return func(w *Dispatcher) {
		w.maxAttempts = n
	}
}

// NewDispatcher creates a dispatcher with the given repository and sender.
func NewDispatcher(repo Repository, sender Sender, opts ...Option) *Dispatcher {
	w := &Dispatcher{
		repo:             repo,
		sender:           sender,
		pollInterval:     15 * time.Second,
		operationTimeout: 30 * time.Second,
		batchSize:        50,
		maxAttempts:      5,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Start runs the dispatcher until the context is cancelled. On shutdown it
// stops claiming new batches and waits for the in-flight cycle to finish.
func (w *Dispatcher) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "notification dispatcher started",
		"interval", w.pollInterval, "batch_size", w.batchSize)

	// Drain whatever accumulated while the process was down.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), w.operationTimeout)
	if err := w.RunOnce(startupCtx); err != nil {
		slog.ErrorContext(startupCtx, "error dispatching notifications on startup", "error", err)
	}
	startupCancel()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				opCtx, cancel := context.WithTimeout(context.Background(), w.operationTimeout)
				defer cancel()
				if err := w.RunOnce(opCtx); err != nil {
					slog.ErrorContext(opCtx, "error dispatching notifications", "error", err)
				}
			}()
		case <-ctx.Done():
			slog.InfoContext(ctx, "shutdown requested, waiting for in-flight delivery cycle")
			w.wg.Wait()
			slog.InfoContext(ctx, "notification dispatcher stopped")
			return nil
		}
	}
}

// RunOnce executes a single delivery cycle.
func (w *Dispatcher) RunOnce(ctx context.Context) error {
	pending, err := w.repo.ClaimPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending notifications: %w", err)
	}

	for _, notification := range pending {
		if err := w.sender.Send(ctx, notification); err != nil {
			attempts := notification.Attempts + 1
			permanent := attempts >= w.maxAttempts
			if markErr := w.repo.MarkFailed(ctx, notification.ID, attempts, err.Error(), permanent); markErr != nil {
				slog.ErrorContext(ctx, "failed to record delivery failure",
					"notification_id", notification.ID, "error", markErr)
				continue
			}
			slog.WarnContext(ctx, "notification delivery failed",
				"notification_id", notification.ID,
				"kind", notification.Kind,
				"attempts", attempts,
				"permanent", permanent,
				"error", err.Error())
			continue
		}

		if err := w.repo.MarkSent(ctx, notification.ID, time.Now().UTC()); err != nil {
			// The send went out but the row stays pending; the recipient may
			// see a duplicate on the next cycle. At-least-once is the contract.
			slog.ErrorContext(ctx, "failed to mark notification sent",
				"notification_id", notification.ID, "error", err)
		}
	}

	return nil
}

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rostam/opsdesk/internal/domain"
	"github.com/rostam/opsdesk/internal/infrastructure/keygen"
)

// Default configuration values.
const (
	DefaultOperationTimeout = 5 * time.Second
	DefaultUpdateQueueSize  = 1000
)

// Config holds configuration for the Authenticator.
type Config struct {
	OperationTimeout time.Duration // timeout for storage operations
	UpdateQueueSize  int           // buffer size for last_used_at updates
}

type lastUsedUpdate struct {
	keyID     string
	timestamp time.Time
}

// Authenticator validates API keys and resolves them to staff members.
// last_used_at writes go through a buffered channel and a single background
// worker so validation never blocks on bookkeeping.
type Authenticator struct {
	repo             Repository
	appCtx           context.Context // application context, cancelled on shutdown
	lastUsedUpdates  chan lastUsedUpdate
	shutdownChan     chan struct{}
	shutdownOnce     sync.Once
	wg               sync.WaitGroup
	operationTimeout time.Duration
}

// NewAuthenticator creates an authenticator and starts its background
// worker. ctx should be an application-level context cancelled on shutdown.
// Zero OperationTimeout means no timeout; zero UpdateQueueSize gets the
// default (an unbuffered queue would block validation).
func NewAuthenticator(ctx context.Context, repo Repository, config Config) *Authenticator {
	if config.OperationTimeout < 0 {
		config.OperationTimeout = DefaultOperationTimeout
	}
	if config.UpdateQueueSize <= 0 {
		config.UpdateQueueSize = DefaultUpdateQueueSize
	}

	a := &Authenticator{
		repo:             repo,
		appCtx:           ctx,
		lastUsedUpdates:  make(chan lastUsedUpdate, config.UpdateQueueSize),
		shutdownChan:     make(chan struct{}),
		operationTimeout: config.OperationTimeout,
	}

	a.wg.Add(1)
	go a.processLastUsedUpdates()

	return a
}

func (a *Authenticator) processLastUsedUpdates() {
	defer a.wg.Done()

	for {
		select {
		case update := <-a.lastUsedUpdates:
			// cancel is called inline: defer in a loop would pile up until exit.
			ctx, cancel := context.WithTimeout(a.appCtx, a.operationTimeout)
			if err := a.repo.UpdateLastUsed(ctx, update.keyID, update.timestamp); err != nil {
				slog.WarnContext(ctx, "failed to update API key last_used_at",
					slog.String("key_id", update.keyID),
					slog.String("error", err.Error()))
			}
			cancel()

		case <-a.shutdownChan:
			// Drain remaining updates. appCtx is already cancelled here, so
			// the drain runs on a fresh context with the same timeout.
			for {
				select {
				case update := <-a.lastUsedUpdates:
					ctx, cancel := context.WithTimeout(context.Background(), a.operationTimeout)
					_ = a.repo.UpdateLastUsed(ctx, update.keyID, update.timestamp)
					cancel()
				default:
					return
				}
			}
		}
	}
}

// Shutdown stops the worker and waits for queued updates to flush,
// bounded by the context deadline. Safe to call multiple times.
func (a *Authenticator) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.shutdownOnce.Do(func() {
		close(a.shutdownChan)

		done := make(chan struct{})
		go func() {
			a.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			shutdownErr = fmt.Errorf("shutdown timeout: %w", ctx.Err())
		}
	})
	return shutdownErr
}

// ValidateAPIKey checks an API key and returns the stored record.
// Any failure mode collapses to domain.ErrUnauthorized so callers cannot
// distinguish a bad secret from a missing key.
func (a *Authenticator) ValidateAPIKey(ctx context.Context, apiKey string) (*domain.APIKey, error) {
	keyParts, err := keygen.ParseAPIKey(apiKey)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	opCtx, cancel := context.WithTimeout(ctx, a.operationTimeout)
	defer cancel()

	key, err := a.repo.FindByShortToken(opCtx, keyParts.ShortToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	providedHash := keygen.HashSecret(keyParts.LongSecret)
	if subtle.ConstantTimeCompare([]byte(key.LongSecretHash), []byte(providedHash)) != 1 {
		return nil, domain.ErrUnauthorized
	}

	if !key.IsActive {
		return nil, domain.ErrUnauthorized
	}
	if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now().UTC()) {
		return nil, domain.ErrUnauthorized
	}

	select {
	case a.lastUsedUpdates <- lastUsedUpdate{keyID: key.ID, timestamp: time.Now().UTC()}:
	default:
		// Queue full. Dropping is acceptable, last_used_at is advisory.
		slog.WarnContext(ctx, "dropped last_used_at update due to full queue",
			slog.String("key_id", key.ID))
	}

	return key, nil
}

// Authenticate validates the key and resolves the staff member it belongs
// to. This is what the HTTP middleware uses to establish the actor.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (*domain.Staff, error) {
	key, err := a.ValidateAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	staff, err := a.repo.FindStaffByID(ctx, key.StaffID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	return staff, nil
}

// CreateAPIKey mints a key for a staff member and returns the plain key,
// which is visible only at creation time.
func CreateAPIKey(ctx context.Context, repo Repository, staffID, name string, expiresAt *time.Time) (string, error) {
	keyParts, err := keygen.GenerateAPIKey(keygen.KeyTypeSecret, keygen.ServiceName, keygen.KeyVersion)
	if err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}

	keyID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate key ID: %w", err)
	}

	err = repo.Create(ctx, &domain.APIKey{
		ID:             keyID.String(),
		StaffID:        staffID,
		KeyType:        keyParts.KeyType,
		Service:        keyParts.Service,
		Version:        keyParts.Version,
		ShortToken:     keyParts.ShortToken,
		LongSecretHash: keygen.HashSecret(keyParts.LongSecret),
		Name:           name,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
		ExpiresAt:      expiresAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create API key: %w", err)
	}

	return keyParts.FullKey, nil
}

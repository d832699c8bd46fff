package notify

import (
	"context"
	"time"

	"github.com/rostam/opsdesk/internal/domain"
)

// Repository defines storage operations for the notification outbox.
type Repository interface {
	// CreateNotification inserts a pending outbox row.
	CreateNotification(ctx context.Context, notification *domain.Notification) error

	// ClaimPending returns up to limit pending notifications, oldest first.
	ClaimPending(ctx context.Context, limit int) ([]domain.Notification, error)

	// MarkSent records a successful delivery.
	MarkSent(ctx context.Context, id string, at time.Time) error

	// MarkFailed records a delivery failure. When permanent is false the row
	// stays pending and will be claimed again; otherwise it is parked as
	// failed with the last error kept for inspection.
	MarkFailed(ctx context.Context, id string, attempts int, lastError string, permanent bool) error
}

// Sender delivers a notification to its recipient. Implementations decide
// the transport; the dispatcher only cares whether delivery succeeded.
type Sender interface {
	Send(ctx context.Context, notification domain.Notification) error
}

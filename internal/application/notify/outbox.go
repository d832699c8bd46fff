package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rostam/opsdesk/internal/domain"
)

// Outbox writes notification rows for later delivery. It satisfies the
// Notifier dependency of the services that enqueue on side-effecting
// transitions.
type Outbox struct {
	repo Repository
}

// NewOutbox creates an outbox writer.
func NewOutbox(repo Repository) *Outbox {
	return &Outbox{repo: repo}
}

// Enqueue inserts a pending notification, assigning an ID and defaulting
// status and timestamp when the caller left them unset. Callers treat a
// returned error as advisory: the mutation that produced the notification
// has already happened.
func (o *Outbox) Enqueue(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		idObj, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate id: %w", err)
		}
		n.ID = idObj.String()
	}
	if n.Status == "" {
		n.Status = domain.NotificationPending
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if err := o.repo.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rostam/opsdesk/internal/domain"
)

// CreateNotification inserts a pending outbox row.
func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO notifications (id, recipient_id, kind, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.RecipientID, n.Kind, payload, string(n.Status), n.Attempts, n.CreatedAt)
	if err != nil {
		return mapPgError(err, "notification")
	}
	return nil
}

// ClaimPending returns up to limit pending notifications, oldest first.
func (s *Store) ClaimPending(ctx context.Context, limit int) ([]domain.Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, recipient_id, kind, payload, status, attempts, created_at, sent_at, last_error
		FROM notifications
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2`, string(domain.NotificationPending), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var payload []byte
		var status string
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &payload, &status,
			&n.Attempts, &n.CreatedAt, &n.SentAt, &n.LastError); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Status = domain.NotificationStatus(status)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &n.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkSent records a successful delivery.
func (s *Store) MarkSent(ctx context.Context, id string, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET status = $2, sent_at = $3 WHERE id = $1`,
		id, string(domain.NotificationSent), at)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return checkRowsAffected(tag.RowsAffected(), domain.ErrNotFound, id)
}

// MarkFailed records a delivery failure, parking the row as failed once
// permanent.
func (s *Store) MarkFailed(ctx context.Context, id string, attempts int, lastError string, permanent bool) error {
	status := domain.NotificationPending
	if permanent {
		status = domain.NotificationFailed
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET status = $2, attempts = $3, last_error = $4 WHERE id = $1`,
		id, string(status), attempts, lastError)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	return checkRowsAffected(tag.RowsAffected(), domain.ErrNotFound, id)
}

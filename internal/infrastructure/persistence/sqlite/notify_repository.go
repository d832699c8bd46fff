package sqlite

import (
	"context"
	"database/sql"
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

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, kind, payload, status, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.RecipientID, n.Kind, string(payload), string(n.Status), n.Attempts, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ClaimPending returns up to limit pending notifications, oldest first.
func (s *Store) ClaimPending(ctx context.Context, limit int) ([]domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recipient_id, kind, payload, status, attempts, created_at, sent_at, last_error
		FROM notifications
		WHERE status = ?
		ORDER BY created_at
		LIMIT ?`, string(domain.NotificationPending), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var payload, status string
		var sentAt sql.NullTime
		var lastError sql.NullString
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &payload, &status,
			&n.Attempts, &n.CreatedAt, &sentAt, &lastError); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Status = domain.NotificationStatus(status)
		n.SentAt = timePtr(sentAt)
		n.LastError = stringPtr(lastError)
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &n.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkSent records a successful delivery.
func (s *Store) MarkSent(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET status = ?, sent_at = ? WHERE id = ?`,
		string(domain.NotificationSent), at, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return checkResult(res, domain.ErrNotFound, id)
}

// MarkFailed records a delivery failure, parking the row as failed once
// permanent.
func (s *Store) MarkFailed(ctx context.Context, id string, attempts int, lastError string, permanent bool) error {
	status := domain.NotificationPending
	if permanent {
		status = domain.NotificationFailed
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET status = ?, attempts = ?, last_error = ? WHERE id = ?`,
		string(status), attempts, lastError, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	return checkResult(res, domain.ErrNotFound, id)
}

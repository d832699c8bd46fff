package notify

import (
	"context"
	"log/slog"

	"github.com/rostam/opsdesk/internal/domain"
)

// LogSender writes notifications to the structured log. It stands in for a
// real transport in development and single-node deployments; swapping in
// email or chat delivery means implementing Sender somewhere else.
type LogSender struct{}

// Send logs the notification and reports success.
func (LogSender) Send(ctx context.Context, n domain.Notification) error {
	slog.InfoContext(ctx, "notification delivered",
		"id", n.ID,
		"recipient_id", n.RecipientID,
		"kind", n.Kind,
	)
	return nil
}

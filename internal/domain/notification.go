package domain

import "time"

// Notification is one outbox row awaiting delivery to a recipient.
//
// Side-effecting transitions enqueue a row after the owning mutation
// commits; a background dispatcher delivers it. Delivery is fire-and-forget
// from the mutation's point of view: enqueue or delivery failures never roll
// back or fail the transition that produced them.
type Notification struct {
	ID          string
	RecipientID string
	Kind        string // e.g. "task.rework", "task.reject", "task.stage_override"
	Payload     map[string]any

	Status   NotificationStatus
	Attempts int

	CreatedAt time.Time
	SentAt    *time.Time
	LastError *string
}

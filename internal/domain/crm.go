package domain

import "time"

// Staff is a system user. Role gates admin-only operations.
type Staff struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	ImagePath string // key into the attachment store, empty if none
	CreatedAt time.Time
}

// Team groups staff for collaborative task editing. Two staff members
// sharing any team may edit each other's tasks through the teamWork log.
type Team struct {
	ID          string
	Name        string
	StaffIDs    []string
	SoftDeleted bool
	CreatedAt   time.Time
}

// Contact is an approved prospect that tasks are raised against.
type Contact struct {
	ID          string
	StaffID     string // owning staff member
	Name        string
	Email       string
	Phone       string
	Company     string
	Source      string // where the original lead came from
	SoftDeleted bool
	CreatedAt   time.Time
}

// Lead is a prospect awaiting approval. Promotion copies it into a Contact
// and hard-deletes the lead: Contact is a structural copy, not a status
// change, so there is nothing to soft-delete at promotion time.
type Lead struct {
	ID          string
	StaffID     string
	Name        string
	Email       string
	Phone       string
	Company     string
	Source      string
	SoftDeleted bool
	CreatedAt   time.Time
}

// Meeting is a scheduled appointment against a contact.
type Meeting struct {
	ID          string
	ContactID   string
	StaffID     string
	Subject     string
	ScheduledAt time.Time
	Notes       string
	SoftDeleted bool
	CreatedAt   time.Time
}

// Call is a logged phone call against a contact.
type Call struct {
	ID          string
	ContactID   string
	StaffID     string
	Subject     string
	OccurredAt  time.Time
	Notes       string
	SoftDeleted bool
	CreatedAt   time.Time
}

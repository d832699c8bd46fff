package domain

import (
	"fmt"
	"time"
)

// Task is an aggregate root representing one unit of work against a contact.
//
// Stage moves 1→4 under normal progression. The admin override path enforces
// the forward-then-reopen rule (a completed task is always reset to Review);
// the regular advance path allows backward moves by the owner or a teammate.
type Task struct {
	ID          string
	Requirement string // free-text project reference
	ContactID   string
	StaffID     string // owning staff member

	Stage    Stage
	Priority Priority
	FinishBy *time.Time // optional due date

	Notes       string
	Description string

	// TeamWork is the append-only collaboration log. Teammates of the owner
	// record their stage edits here instead of overwriting the owner's notes.
	TeamWork []TeamWorkEntry

	// Audit flags. Rework and Reject are admin-set; NewUpdate is owner-set.
	// Setting Rework forces NewUpdate false in the same update.
	Rework    bool
	Reject    bool
	NewUpdate bool

	// SoftDeleted hides the task from active-pipeline queries while keeping
	// it addressable by id for trash operations.
	SoftDeleted bool

	CreatedAt time.Time
	UpdatedAt time.Time

	// Optimistic locking version for concurrent update protection.
	Version int
}

// Etag returns the entity tag for this task, derived from its version.
func (t *Task) Etag() string {
	return fmt.Sprintf("%d", t.Version)
}

// TeamWorkEntry is one collaborator action in a task's teamWork log.
type TeamWorkEntry struct {
	Date      time.Time `json:"date"`
	StaffID   string    `json:"staff_id"`
	StaffName string    `json:"staff_name"`
	Stage     Stage     `json:"stage"`
	Notes     string    `json:"notes"`
}

// String renders the audit line format used in collaboration history.
func (e TeamWorkEntry) String() string {
	return fmt.Sprintf("%s, %s, %s, %s", e.Date.Format("2006-01-02"), e.StaffName, e.Stage, e.Notes)
}

// TaskUpdate carries the field set written by a single task transition.
// Nil fields are left untouched. Every transition is a single-row write:
// either the full field set is applied or nothing is.
type TaskUpdate struct {
	TaskID string

	// ExpectedVersion is the version the caller read before deciding the
	// transition. The repository compares-and-swaps on it and returns
	// ErrVersionConflict when a concurrent writer got there first.
	ExpectedVersion int

	Stage     *Stage
	Notes     *string
	Rework    *bool
	Reject    *bool
	NewUpdate *bool

	// AppendTeamWork, when non-nil, is appended to the teamWork log.
	// The log is additive and never overwritten.
	AppendTeamWork *TeamWorkEntry
}

// ApplyUpdate applies the non-nil fields of update in place and stamps
// UpdatedAt. Version bookkeeping belongs to the persistence layer.
func (t *Task) ApplyUpdate(update TaskUpdate) {
	if update.Stage != nil {
		t.Stage = *update.Stage
	}
	if update.Notes != nil {
		t.Notes = *update.Notes
	}
	if update.Rework != nil {
		t.Rework = *update.Rework
	}
	if update.Reject != nil {
		t.Reject = *update.Reject
	}
	if update.NewUpdate != nil {
		t.NewUpdate = *update.NewUpdate
	}
	if update.AppendTeamWork != nil {
		t.TeamWork = append(t.TeamWork, *update.AppendTeamWork)
	}
	t.UpdatedAt = time.Now().UTC()
}

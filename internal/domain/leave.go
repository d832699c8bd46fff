package domain

import (
	"fmt"
	"time"
)

// Leave is a leave or work-from-home request over a closed calendar
// interval [StartDate, EndDate]. EndDate defaults to StartDate.
//
// For a given staff member no two non-rejected leaves may overlap.
// Once decided (approved or rejected) a leave is immutable except through
// the admin decision transition itself.
type Leave struct {
	ID      string
	StaffID string

	Type     LeaveType
	Category LeaveCategory

	// HalfTime is only meaningful for half-day types. When unset or LEAVE,
	// the attendance half-day work-hour contract applies on the leave date.
	HalfTime HalfTime

	StartDate time.Time // date-only, UTC midnight
	EndDate   time.Time // date-only, UTC midnight, >= StartDate

	Status LeaveStatus
	Reason string

	SoftDeleted bool
	CreatedAt   time.Time

	// Optimistic locking version for concurrent update protection.
	Version int
}

// Etag returns the entity tag for this leave, derived from its version.
func (l *Leave) Etag() string {
	return fmt.Sprintf("%d", l.Version)
}

// Overlaps reports whether this leave's closed interval intersects
// [start, end].
func (l *Leave) Overlaps(start, end time.Time) bool {
	return !l.StartDate.After(end) && !l.EndDate.Before(start)
}

// CoversDate reports whether the given calendar date falls inside the
// leave interval.
func (l *Leave) CoversDate(date time.Time) bool {
	return l.Overlaps(date, date)
}

// LeaveUpdate carries the field set written by a single leave mutation.
// Nil fields are left untouched. Writes compare-and-swap on
// ExpectedVersion like task transitions do.
type LeaveUpdate struct {
	LeaveID         string
	ExpectedVersion int

	Type      *LeaveType
	Category  *LeaveCategory
	HalfTime  *HalfTime
	StartDate *time.Time
	EndDate   *time.Time
	Reason    *string
	Status    *LeaveStatus
}

// ApplyUpdate applies the non-nil fields of update in place. Version
// bookkeeping belongs to the persistence layer.
func (l *Leave) ApplyUpdate(update LeaveUpdate) {
	if update.Type != nil {
		l.Type = *update.Type
	}
	if update.Category != nil {
		l.Category = *update.Category
	}
	if update.HalfTime != nil {
		l.HalfTime = *update.HalfTime
	}
	if update.StartDate != nil {
		l.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		l.EndDate = *update.EndDate
	}
	if update.Reason != nil {
		l.Reason = *update.Reason
	}
	if update.Status != nil {
		l.Status = *update.Status
	}
}

// AttendancePunch is one entry or exit clock event for a staff member.
type AttendancePunch struct {
	ID      string
	StaffID string
	Kind    PunchKind
	At      time.Time // UTC instant
}

// DateOnly truncates t to UTC midnight, the canonical representation for
// leave interval endpoints.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

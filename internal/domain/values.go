package domain

import (
	"fmt"
	"strings"
)

// Stage is the pipeline position of a task.
// Value object - ordinal int enum (1..4).
type Stage int

const (
	StageNotStarted Stage = 1
	StageInProgress Stage = 2
	StageReview     Stage = 3
	StageCompleted  Stage = 4
)

// NewStage validates and creates a Stage.
func NewStage(n int) (Stage, error) {
	s := Stage(n)
	switch s {
	case StageNotStarted, StageInProgress, StageReview, StageCompleted:
		return s, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidStage, n)
	}
}

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "Not Started"
	case StageInProgress:
		return "In Progress"
	case StageReview:
		return "Review"
	case StageCompleted:
		return "Completed"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Priority represents the priority level of a task.
// Value object - immutable string enum.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityNormal Priority = "NORMAL"
	PriorityLow    Priority = "LOW"
)

// NewPriority validates and creates a Priority.
// An empty string defaults to NORMAL.
func NewPriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNormal, nil
	}

	p := Priority(strings.ToUpper(s))
	switch p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPriority, s)
	}
}

// Role represents the access level of a staff member.
type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// NewRole validates and creates a Role.
func NewRole(s string) (Role, error) {
	r := Role(strings.ToLower(s))
	switch r {
	case RoleStaff, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRole, s)
	}
}

// EntityKind identifies a record type in the trash ledger.
// New kinds plug into trash by registering one store handle at startup.
type EntityKind string

const (
	KindTask    EntityKind = "task"
	KindContact EntityKind = "contact"
	KindLead    EntityKind = "lead"
	KindTeam    EntityKind = "team"
	KindMeeting EntityKind = "meeting"
	KindCall    EntityKind = "call"
	KindLeave   EntityKind = "leave"
)

// NewEntityKind validates and creates an EntityKind.
func NewEntityKind(s string) (EntityKind, error) {
	k := EntityKind(strings.ToLower(s))
	switch k {
	case KindTask, KindContact, KindLead, KindTeam, KindMeeting, KindCall, KindLeave:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidEntityKind, s)
	}
}

// LeaveType distinguishes full-day leave from half-day leave.
type LeaveType string

const (
	LeaveMorning   LeaveType = "morning"
	LeaveAfternoon LeaveType = "afternoon"
	LeaveFullDay   LeaveType = "fullday"
)

// NewLeaveType validates and creates a LeaveType.
func NewLeaveType(s string) (LeaveType, error) {
	t := LeaveType(strings.ToLower(s))
	switch t {
	case LeaveMorning, LeaveAfternoon, LeaveFullDay:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidLeaveType, s)
	}
}

// IsHalfDay reports whether the leave covers only half a working day.
func (t LeaveType) IsHalfDay() bool {
	return t == LeaveMorning || t == LeaveAfternoon
}

// LeaveStatus is the decision state of a leave request.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

// NewLeaveStatus validates and creates a LeaveStatus.
func NewLeaveStatus(s string) (LeaveStatus, error) {
	st := LeaveStatus(strings.ToUpper(s))
	switch st {
	case LeavePending, LeaveApproved, LeaveRejected:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidLeaveStatus, s)
	}
}

// Decided reports whether an admin has already ruled on the request.
// Decided leaves are immutable except through the decision transition itself.
func (s LeaveStatus) Decided() bool {
	return s == LeaveApproved || s == LeaveRejected
}

// LeaveCategory distinguishes absence from remote work.
type LeaveCategory string

const (
	CategoryLeave LeaveCategory = "LEAVE"
	CategoryWFH   LeaveCategory = "WFH"
)

// NewLeaveCategory validates and creates a LeaveCategory.
// An empty string defaults to LEAVE.
func NewLeaveCategory(s string) (LeaveCategory, error) {
	if s == "" {
		return CategoryLeave, nil
	}

	c := LeaveCategory(strings.ToUpper(s))
	switch c {
	case CategoryLeave, CategoryWFH:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidLeaveCategory, s)
	}
}

// HalfTime is how the non-leave half of a half-day is spent.
// Only meaningful when the leave type is morning or afternoon.
type HalfTime string

const (
	HalfTimeOffline HalfTime = "OFFLINE"
	HalfTimeLeave   HalfTime = "LEAVE"
)

// NewHalfTime validates and creates a HalfTime. Empty input is allowed
// and returns the empty value (half-time unset).
func NewHalfTime(s string) (HalfTime, error) {
	if s == "" {
		return "", nil
	}

	h := HalfTime(strings.ToUpper(s))
	switch h {
	case HalfTimeOffline, HalfTimeLeave:
		return h, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidHalfTime, s)
	}
}

// PunchKind distinguishes entry punches from exit punches.
type PunchKind string

const (
	PunchEntry PunchKind = "entry"
	PunchExit  PunchKind = "exit"
)

// NewPunchKind validates and creates a PunchKind.
func NewPunchKind(s string) (PunchKind, error) {
	k := PunchKind(strings.ToLower(s))
	switch k {
	case PunchEntry, PunchExit:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPunchKind, s)
	}
}

// NotificationStatus is the delivery state of an outbox row.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

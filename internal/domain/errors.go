package domain

import "errors"

// Sentinel errors returned by services and repository implementations.
// HTTP and CLI layers map these to user-visible failure codes.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrTaskNotFound indicates the specified task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrContactNotFound indicates the specified contact does not exist
	// or is not owned by the caller.
	ErrContactNotFound = errors.New("contact not found")

	// ErrLeadNotFound indicates the specified lead does not exist.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrStaffNotFound indicates the caller identity could not be resolved.
	ErrStaffNotFound = errors.New("staff not found")

	// ErrLeaveNotFound indicates the specified leave record does not exist.
	ErrLeaveNotFound = errors.New("leave not found")

	// ErrTombstoneNotFound indicates no trash entry matches the given
	// (kind, tombstone id, actor) triple.
	ErrTombstoneNotFound = errors.New("trash entry not found")

	// ErrForbidden indicates the caller's role, ownership, or team
	// membership does not permit the operation.
	ErrForbidden = errors.New("operation not permitted")

	// ErrInvalidState indicates the entity is not in a state that allows
	// the requested transition (e.g. rejecting a task before completion).
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrLeaveOverlap indicates the candidate leave interval collides with
	// an existing non-rejected leave for the same staff member.
	ErrLeaveOverlap = errors.New("leave dates overlap an existing leave")

	// ErrLeaveDecided indicates a leave record can no longer be edited
	// because an admin has already approved or rejected it.
	ErrLeaveDecided = errors.New("leave has already been decided")

	// ErrKindNotRegistered indicates the trash ledger has no store handle
	// for the given entity kind. This is a wiring bug, not a user error.
	ErrKindNotRegistered = errors.New("entity kind not registered")

	// ErrVersionConflict indicates a concurrent update won the race;
	// the caller should re-read and retry.
	ErrVersionConflict = errors.New("version conflict: record was modified concurrently")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")

	// ErrInvalidAPIKeyFormat indicates the API key string is malformed.
	ErrInvalidAPIKeyFormat = errors.New("invalid API key format")

	// ErrUnauthorized indicates a missing, unknown, expired, or revoked API key.
	ErrUnauthorized = errors.New("unauthorized")
)

// Validation errors for value objects.
var (
	ErrInvalidStage         = errors.New("invalid stage")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidEntityKind    = errors.New("invalid entity kind")
	ErrInvalidLeaveType     = errors.New("invalid leave type")
	ErrInvalidLeaveStatus   = errors.New("invalid leave status")
	ErrInvalidLeaveCategory = errors.New("invalid leave category")
	ErrInvalidHalfTime      = errors.New("invalid half-time mode")
	ErrInvalidPunchKind     = errors.New("invalid punch kind")
	ErrRequirementRequired  = errors.New("requirement is required")
	ErrNameRequired         = errors.New("name is required")
	ErrEndBeforeStart       = errors.New("end date is before start date")
)

package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rostam/opsdesk/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details,omitempty"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with field details.
func ValidationError(w http.ResponseWriter, fields ...ErrorField) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: fields,
		},
	})
}

// FieldError sends a 400 validation error for a single field.
func FieldError(w http.ResponseWriter, field, issue string) {
	ValidationError(w, ErrorField{Field: field, Issue: issue})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, "NOT_FOUND", resource+" not found", http.StatusNotFound)
}

// Unauthorized sends a 401 Unauthorized error.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, "UNAUTHORIZED", message, http.StatusUnauthorized)
}

// Forbidden sends a 403 Forbidden error.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, "FORBIDDEN", message, http.StatusForbidden)
}

// Conflict sends a 409 Conflict error.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, "CONFLICT", message, http.StatusConflict)
}

// InvalidState sends a 409 error for transitions the entity's current
// state does not allow.
func InvalidState(w http.ResponseWriter, message string) {
	Error(w, "INVALID_STATE", message, http.StatusConflict)
}

// InternalError sends a 500 Internal Server Error. The real error is
// logged server-side; the client only sees a generic message.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "Internal server error", "error", err)
	}
	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// FromDomainError maps domain errors to HTTP responses.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Validation errors (400)
	case errors.Is(err, domain.ErrRequirementRequired):
		FieldError(w, "requirement", "required field missing")
	case errors.Is(err, domain.ErrNameRequired):
		FieldError(w, "name", "required field missing")
	case errors.Is(err, domain.ErrInvalidID):
		FieldError(w, "id", "invalid ID format")
	case errors.Is(err, domain.ErrInvalidStage):
		FieldError(w, "stage", "invalid stage")
	case errors.Is(err, domain.ErrInvalidPriority):
		FieldError(w, "priority", "invalid priority level")
	case errors.Is(err, domain.ErrInvalidRole):
		FieldError(w, "role", "invalid role")
	case errors.Is(err, domain.ErrInvalidEntityKind):
		FieldError(w, "kind", "invalid entity kind")
	case errors.Is(err, domain.ErrInvalidLeaveType):
		FieldError(w, "type", "invalid leave type")
	case errors.Is(err, domain.ErrInvalidLeaveStatus):
		FieldError(w, "status", "invalid leave status")
	case errors.Is(err, domain.ErrInvalidLeaveCategory):
		FieldError(w, "category", "invalid leave category")
	case errors.Is(err, domain.ErrInvalidHalfTime):
		FieldError(w, "halfTime", "invalid half-time mode")
	case errors.Is(err, domain.ErrInvalidPunchKind):
		FieldError(w, "kind", "invalid punch kind")
	case errors.Is(err, domain.ErrEndBeforeStart):
		FieldError(w, "endDate", "must not be before start date")

	// Not found errors (404)
	case errors.Is(err, domain.ErrTaskNotFound):
		NotFound(w, "task")
	case errors.Is(err, domain.ErrContactNotFound):
		NotFound(w, "contact")
	case errors.Is(err, domain.ErrLeadNotFound):
		NotFound(w, "lead")
	case errors.Is(err, domain.ErrStaffNotFound):
		NotFound(w, "staff")
	case errors.Is(err, domain.ErrLeaveNotFound):
		NotFound(w, "leave")
	case errors.Is(err, domain.ErrTombstoneNotFound):
		NotFound(w, "trash entry")
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, "resource")

	// Auth errors (401/403)
	case errors.Is(err, domain.ErrUnauthorized):
		Unauthorized(w, "invalid or missing API key")
	case errors.Is(err, domain.ErrForbidden):
		Forbidden(w, "operation not permitted")

	// Concurrency and state errors (409)
	case errors.Is(err, domain.ErrVersionConflict):
		Conflict(w, err.Error())
	case errors.Is(err, domain.ErrLeaveOverlap):
		Conflict(w, err.Error())
	case errors.Is(err, domain.ErrLeaveDecided):
		InvalidState(w, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		InvalidState(w, err.Error())

	// Unknown errors (500): log server-side, return generic message
	default:
		InternalError(w, r, err)
	}
}

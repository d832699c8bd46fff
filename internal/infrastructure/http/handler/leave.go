package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rostam/opsdesk/internal/application/leave"
	"github.com/rostam/opsdesk/internal/domain"
	"github.com/rostam/opsdesk/internal/infrastructure/http/response"
)

type leaveRequest struct {
	Type      string `json:"type" validate:"required"`
	Category  string `json:"category"`
	HalfTime  string `json:"halfTime"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

// params parses the calendar-date fields. An empty end date defaults to
// the start date downstream.
func (req leaveRequest) params(w http.ResponseWriter) (leave.RequestLeaveParams, bool) {
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		response.FieldError(w, "startDate", "must be a date in YYYY-MM-DD format")
		return leave.RequestLeaveParams{}, false
	}

	var end time.Time
	if req.EndDate != "" {
		end, err = time.Parse(time.DateOnly, req.EndDate)
		if err != nil {
			response.FieldError(w, "endDate", "must be a date in YYYY-MM-DD format")
			return leave.RequestLeaveParams{}, false
		}
	}

	return leave.RequestLeaveParams{
		Type:      req.Type,
		Category:  req.Category,
		HalfTime:  req.HalfTime,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	}, true
}

// RequestLeave handles POST /leaves.
func (h *Handler) RequestLeave(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req leaveRequest
	if !h.decode(w, r, &req) {
		return
	}
	params, ok := req.params(w)
	if !ok {
		return
	}

	created, err := h.leaves.RequestLeave(r.Context(), actor.ID, params)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to request leave via HTTP",
			"staff_id", actor.ID,
			"start_date", req.StartDate,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "leave requested via HTTP",
		"leave_id", created.ID,
		"staff_id", actor.ID)

	response.Created(w, mapLeaveToDTO(created))
}

// ListLeaves handles GET /leaves. The staffId query defaults to the
// caller; listing someone else's leaves requires the admin role.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	staffID := r.URL.Query().Get("staffId")
	if staffID == "" {
		staffID = actor.ID
	}

	leaves, err := h.leaves.ListLeaves(r.Context(), staffID, actor.ID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	dtos := make([]leaveDTO, len(leaves))
	for i := range leaves {
		dtos[i] = mapLeaveToDTO(&leaves[i])
	}
	response.OK(w, map[string]any{"leaves": dtos})
}

// UpdateLeave handles PATCH /leaves/{leaveID}. Only pending leaves may
// be edited, and only by their owner.
func (h *Handler) UpdateLeave(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req leaveRequest
	if !h.decode(w, r, &req) {
		return
	}
	params, ok := req.params(w)
	if !ok {
		return
	}

	updated, err := h.leaves.UpdateLeave(r.Context(), chi.URLParam(r, "leaveID"), actor.ID, params)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapLeaveToDTO(updated))
}

type decideLeaveRequest struct {
	Status string `json:"status" validate:"required"`
}

// DecideLeave handles POST /leaves/{leaveID}/decision. Admin only.
func (h *Handler) DecideLeave(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req decideLeaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	status, err := domain.NewLeaveStatus(req.Status)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	leaveID := chi.URLParam(r, "leaveID")
	decided, err := h.leaves.Decide(r.Context(), leaveID, actor.ID, status)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "leave decided via HTTP",
		"leave_id", leaveID,
		"status", string(status),
		"admin_id", actor.ID)

	response.OK(w, mapLeaveToDTO(decided))
}

type registerPunchRequest struct {
	Kind string     `json:"kind" validate:"required"`
	At   *time.Time `json:"at"`
}

// RegisterPunch handles POST /attendance/punches. A missing timestamp
// means now. Half-day leave work-hour rules are enforced by the service.
func (h *Handler) RegisterPunch(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req registerPunchRequest
	if !h.decode(w, r, &req) {
		return
	}

	kind, err := domain.NewPunchKind(req.Kind)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	at := time.Now().UTC()
	if req.At != nil {
		at = req.At.UTC()
	}

	punch, err := h.leaves.RegisterPunch(r.Context(), actor.ID, kind, at)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, mapPunchToDTO(punch))
}

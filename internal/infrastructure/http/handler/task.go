package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rostam/opsdesk/internal/application/task"
	"github.com/rostam/opsdesk/internal/domain"
	"github.com/rostam/opsdesk/internal/infrastructure/http/response"
)

type createTaskRequest struct {
	Requirement string     `json:"requirement" validate:"required"`
	ContactID   string     `json:"contactId" validate:"required"`
	Priority    string     `json:"priority"`
	FinishBy    *time.Time `json:"finishBy"`
	Description string     `json:"description"`
	Notes       string     `json:"notes"`
}

// CreateTask handles POST /tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.tasks.CreateTask(r.Context(), actor.ID, req.ContactID, task.CreateTaskParams{
		Requirement: req.Requirement,
		Priority:    req.Priority,
		FinishBy:    req.FinishBy,
		Description: req.Description,
		Notes:       req.Notes,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create task via HTTP",
			"staff_id", actor.ID,
			"contact_id", req.ContactID,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "task created via HTTP",
		"task_id", created.ID,
		"staff_id", actor.ID)

	response.Created(w, mapTaskToDTO(created))
}

// GetTask handles GET /tasks/{taskID}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.GetTask(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, mapTaskToDTO(t))
}

type advanceStageRequest struct {
	Stage int    `json:"stage" validate:"required"`
	Notes string `json:"notes"`
}

// AdvanceStage handles POST /tasks/{taskID}/stage. The owner edits the
// task directly; a teammate's edit lands in the teamWork log instead.
func (h *Handler) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req advanceStageRequest
	if !h.decode(w, r, &req) {
		return
	}

	stage, err := domain.NewStage(req.Stage)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	taskID := chi.URLParam(r, "taskID")
	updated, err := h.tasks.AdvanceStage(r.Context(), taskID, actor.ID, stage, req.Notes)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to advance task stage via HTTP",
			"task_id", taskID,
			"staff_id", actor.ID,
			"stage", req.Stage,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapTaskToDTO(updated))
}

// OverrideStage handles POST /tasks/{taskID}/stage-override. Admin only;
// a completed task is always reopened to Review regardless of the
// requested stage.
func (h *Handler) OverrideStage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req advanceStageRequest
	if !h.decode(w, r, &req) {
		return
	}

	stage, err := domain.NewStage(req.Stage)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	updated, err := h.tasks.AdminOverrideStage(r.Context(), chi.URLParam(r, "taskID"), actor.ID, stage)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapTaskToDTO(updated))
}

// ToggleRework handles POST /tasks/{taskID}/rework.
func (h *Handler) ToggleRework(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	updated, err := h.tasks.ToggleRework(r.Context(), chi.URLParam(r, "taskID"), actor.ID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapTaskToDTO(updated))
}

type setRejectRequest struct {
	Reject *bool `json:"reject" validate:"required"`
}

// SetReject handles PUT /tasks/{taskID}/reject.
func (h *Handler) SetReject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req setRejectRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.tasks.SetReject(r.Context(), chi.URLParam(r, "taskID"), actor.ID, *req.Reject)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapTaskToDTO(updated))
}

// ToggleNewUpdate handles POST /tasks/{taskID}/new-update.
func (h *Handler) ToggleNewUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	updated, err := h.tasks.ToggleNewUpdate(r.Context(), chi.URLParam(r, "taskID"), actor.ID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapTaskToDTO(updated))
}

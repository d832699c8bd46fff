package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rostam/opsdesk/internal/application/crm"
	"github.com/rostam/opsdesk/internal/infrastructure/http/response"
)

type personRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Source  string `json:"source"`
}

func (req personRequest) params() crm.PersonParams {
	return crm.PersonParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Source:  req.Source,
	}
}

// CreateLead handles POST /leads.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req personRequest
	if !h.decode(w, r, &req) {
		return
	}

	lead, err := h.crm.CreateLead(r.Context(), actor.ID, req.params())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "lead created via HTTP",
		"lead_id", lead.ID,
		"staff_id", actor.ID)

	response.Created(w, mapLeadToDTO(lead))
}

// ListLeads handles GET /leads. The staffId query defaults to the caller;
// listing someone else's leads requires the admin role.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	staffID := r.URL.Query().Get("staffId")
	if staffID == "" {
		staffID = actor.ID
	}

	leads, err := h.crm.ListLeads(r.Context(), staffID, actor.ID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	dtos := make([]personDTO, len(leads))
	for i := range leads {
		dtos[i] = mapLeadToDTO(&leads[i])
	}
	response.OK(w, map[string]any{"leads": dtos})
}

// PromoteLead handles POST /leads/{leadID}/promote. The lead is copied
// into a new contact and removed.
func (h *Handler) PromoteLead(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	leadID := chi.URLParam(r, "leadID")
	contact, err := h.crm.PromoteLead(r.Context(), leadID, actor.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to promote lead via HTTP",
			"lead_id", leadID,
			"staff_id", actor.ID,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "lead promoted via HTTP",
		"lead_id", leadID,
		"contact_id", contact.ID)

	response.Created(w, mapContactToDTO(contact))
}

// CreateContact handles POST /contacts.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req personRequest
	if !h.decode(w, r, &req) {
		return
	}

	contact, err := h.crm.CreateContact(r.Context(), actor.ID, req.params())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, mapContactToDTO(contact))
}

// GetContact handles GET /contacts/{contactID}.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	contact, err := h.crm.GetContact(r.Context(), chi.URLParam(r, "contactID"), actor.ID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapContactToDTO(contact))
}

// ListContacts handles GET /contacts.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	staffID := r.URL.Query().Get("staffId")
	if staffID == "" {
		staffID = actor.ID
	}

	contacts, err := h.crm.ListContacts(r.Context(), staffID, actor.ID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	dtos := make([]personDTO, len(contacts))
	for i := range contacts {
		dtos[i] = mapContactToDTO(&contacts[i])
	}
	response.OK(w, map[string]any{"contacts": dtos})
}

type scheduleMeetingRequest struct {
	Subject     string    `json:"subject" validate:"required"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Notes       string    `json:"notes"`
}

// ScheduleMeeting handles POST /contacts/{contactID}/meetings.
func (h *Handler) ScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req scheduleMeetingRequest
	if !h.decode(w, r, &req) {
		return
	}

	meeting, err := h.crm.ScheduleMeeting(r.Context(), actor.ID, chi.URLParam(r, "contactID"),
		req.Subject, req.ScheduledAt, req.Notes)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, mapMeetingToDTO(meeting))
}

type logCallRequest struct {
	Subject    string    `json:"subject" validate:"required"`
	OccurredAt time.Time `json:"occurredAt" validate:"required"`
	Notes      string    `json:"notes"`
}

// LogCall handles POST /contacts/{contactID}/calls.
func (h *Handler) LogCall(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req logCallRequest
	if !h.decode(w, r, &req) {
		return
	}

	call, err := h.crm.LogCall(r.Context(), actor.ID, chi.URLParam(r, "contactID"),
		req.Subject, req.OccurredAt, req.Notes)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, mapCallToDTO(call))
}

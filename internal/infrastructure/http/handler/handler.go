package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rostam/opsdesk/internal/application/crm"
	"github.com/rostam/opsdesk/internal/application/leave"
	"github.com/rostam/opsdesk/internal/application/task"
	"github.com/rostam/opsdesk/internal/application/trash"
	"github.com/rostam/opsdesk/internal/domain"
	"github.com/rostam/opsdesk/internal/infrastructure/http/middleware"
	"github.com/rostam/opsdesk/internal/infrastructure/http/response"
	"github.com/rostam/opsdesk/internal/storage"
)

// Handler adapts HTTP requests to application service calls.
type Handler struct {
	tasks    *task.Service
	crm      *crm.Service
	leaves   *leave.Service
	trash    *trash.Ledger
	blobs    storage.BlobStore
	validate *validator.Validate
}

// NewHandler creates a new HTTP API handler.
func NewHandler(tasks *task.Service, crmSvc *crm.Service, leaves *leave.Service, ledger *trash.Ledger, blobs storage.BlobStore) *Handler {
	return &Handler{
		tasks:    tasks,
		crm:      crmSvc,
		leaves:   leaves,
		trash:    ledger,
		blobs:    blobs,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// NewRouter builds the authenticated API router. All routes assume the
// auth middleware has already injected the acting staff member.
func NewRouter(tasks *task.Service, crmSvc *crm.Service, leaves *leave.Service, ledger *trash.Ledger, blobs storage.BlobStore) http.Handler {
	h := NewHandler(tasks, crmSvc, leaves, ledger, blobs)

	r := chi.NewRouter()

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.CreateTask)
		r.Get("/{taskID}", h.GetTask)
		r.Post("/{taskID}/stage", h.AdvanceStage)
		r.Post("/{taskID}/stage-override", h.OverrideStage)
		r.Post("/{taskID}/rework", h.ToggleRework)
		r.Put("/{taskID}/reject", h.SetReject)
		r.Post("/{taskID}/new-update", h.ToggleNewUpdate)
	})

	r.Route("/leads", func(r chi.Router) {
		r.Post("/", h.CreateLead)
		r.Get("/", h.ListLeads)
		r.Post("/{leadID}/promote", h.PromoteLead)
	})

	r.Route("/contacts", func(r chi.Router) {
		r.Post("/", h.CreateContact)
		r.Get("/", h.ListContacts)
		r.Get("/{contactID}", h.GetContact)
		r.Post("/{contactID}/meetings", h.ScheduleMeeting)
		r.Post("/{contactID}/calls", h.LogCall)
		r.Put("/{contactID}/image", h.UploadContactImage)
		r.Get("/{contactID}/image", h.GetContactImage)
		r.Delete("/{contactID}/image", h.DeleteContactImage)
	})

	r.Route("/leaves", func(r chi.Router) {
		r.Post("/", h.RequestLeave)
		r.Get("/", h.ListLeaves)
		r.Patch("/{leaveID}", h.UpdateLeave)
		r.Post("/{leaveID}/decision", h.DecideLeave)
	})

	r.Post("/attendance/punches", h.RegisterPunch)

	// The {id} is the live entity id on soft delete and the tombstone id
	// on restore and purge.
	r.Route("/trash", func(r chi.Router) {
		r.Get("/", h.ListTrash)
		r.Post("/{kind}/{id}", h.SoftDelete)
		r.Post("/{kind}/{id}/restore", h.Restore)
		r.Delete("/{kind}/{id}", h.Purge)
	})

	return r
}

// actor resolves the authenticated staff member. A missing actor means
// the route was mounted without the auth middleware.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*domain.Staff, bool) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "missing authentication context")
		return nil, false
	}
	return actor, true
}

// decode parses the JSON body into dst and runs struct validation.
// On failure the error response has already been written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid JSON")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			response.BadRequest(w, "invalid request body")
			return false
		}
		fields := make([]response.ErrorField, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, response.ErrorField{
				Field: strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
				Issue: "failed on " + fe.Tag() + " validation",
			})
		}
		response.ValidationError(w, fields...)
		return false
	}
	return true
}

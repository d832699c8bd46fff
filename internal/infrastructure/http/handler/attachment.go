package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rostam/opsdesk/internal/infrastructure/http/response"
	"github.com/rostam/opsdesk/internal/storage"
)

func contactImageKey(contactID string) string {
	return "contacts/" + contactID
}

// UploadContactImage handles PUT /contacts/{contactID}/image. The body is
// the raw image; ownership is checked through the contact lookup.
func (h *Handler) UploadContactImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	contactID := chi.URLParam(r, "contactID")
	if _, err := h.crm.GetContact(r.Context(), contactID, actor.ID); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "failed to read request body")
		return
	}
	if len(data) == 0 {
		response.BadRequest(w, "empty image body")
		return
	}

	if err := h.blobs.Put(r.Context(), contactImageKey(contactID), data); err != nil {
		response.InternalError(w, r, err)
		return
	}

	response.NoContent(w)
}

// GetContactImage handles GET /contacts/{contactID}/image.
func (h *Handler) GetContactImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	contactID := chi.URLParam(r, "contactID")
	if _, err := h.crm.GetContact(r.Context(), contactID, actor.ID); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	data, err := h.blobs.Get(r.Context(), contactImageKey(contactID))
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			response.NotFound(w, "contact image")
			return
		}
		response.InternalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DeleteContactImage handles DELETE /contacts/{contactID}/image.
func (h *Handler) DeleteContactImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	contactID := chi.URLParam(r, "contactID")
	if _, err := h.crm.GetContact(r.Context(), contactID, actor.ID); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	if err := h.blobs.Delete(r.Context(), contactImageKey(contactID)); err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			response.NotFound(w, "contact image")
			return
		}
		response.InternalError(w, r, err)
		return
	}

	response.NoContent(w)
}

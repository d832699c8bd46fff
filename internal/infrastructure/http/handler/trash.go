package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rostam/opsdesk/internal/domain"
	"github.com/rostam/opsdesk/internal/infrastructure/http/response"
)

// SoftDelete handles POST /trash/{kind}/{id}. The entity is hidden
// from active queries and a tombstone is returned.
func (h *Handler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	kind, err := domain.NewEntityKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	entityID := chi.URLParam(r, "id")
	entry, err := h.trash.SoftDelete(r.Context(), actor.ID, kind, entityID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to soft delete via HTTP",
			"kind", string(kind),
			"entity_id", entityID,
			"actor_id", actor.ID,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "entity moved to trash via HTTP",
		"kind", string(kind),
		"entity_id", entityID,
		"tombstone_id", entry.ID)

	response.Created(w, mapTrashEntryToDTO(*entry, nil))
}

// ListTrash handles GET /trash. Results are scoped to the caller's own
// deletions; kind, deletedAfter, and deletedBefore filters are optional.
func (h *Handler) ListTrash(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	params := domain.ListTrashParams{ActorID: actor.ID}

	if kindParam := r.URL.Query().Get("kind"); kindParam != "" {
		kind, err := domain.NewEntityKind(kindParam)
		if err != nil {
			response.FromDomainError(w, r, err)
			return
		}
		params.Kind = &kind
	}
	if after := r.URL.Query().Get("deletedAfter"); after != "" {
		t, err := time.Parse(time.RFC3339, after)
		if err != nil {
			response.FieldError(w, "deletedAfter", "must be an RFC 3339 timestamp")
			return
		}
		params.DeletedAfter = &t
	}
	if before := r.URL.Query().Get("deletedBefore"); before != "" {
		t, err := time.Parse(time.RFC3339, before)
		if err != nil {
			response.FieldError(w, "deletedBefore", "must be an RFC 3339 timestamp")
			return
		}
		params.DeletedBefore = &t
	}

	entries, err := h.trash.ListTrash(r.Context(), params)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	dtos := make([]trashEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = mapTrashEntryToDTO(e.Entry, e.Payload)
	}
	response.OK(w, map[string]any{"entries": dtos})
}

// Restore handles POST /trash/{kind}/{id}/restore, where id names the
// tombstone returned at soft-delete time.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	kind, err := domain.NewEntityKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	tombstoneID := chi.URLParam(r, "id")
	if err := h.trash.Restore(r.Context(), actor.ID, kind, tombstoneID); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "entity restored from trash via HTTP",
		"kind", string(kind),
		"tombstone_id", tombstoneID,
		"actor_id", actor.ID)

	response.NoContent(w)
}

// Purge handles DELETE /trash/{kind}/{id}. The underlying
// entity is permanently removed.
func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	kind, err := domain.NewEntityKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	tombstoneID := chi.URLParam(r, "id")
	if err := h.trash.Purge(r.Context(), actor.ID, kind, tombstoneID); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "trash entry purged via HTTP",
		"kind", string(kind),
		"tombstone_id", tombstoneID,
		"actor_id", actor.ID)

	response.NoContent(w)
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/tagboard/internal/tags"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 16

// tagsAPIHandler provides REST handlers for tag endpoints.
type tagsAPIHandler struct {
	tags *tags.Service
	log  *slog.Logger
}

// registerTagRoutes registers tag routes on r.
func registerTagRoutes(r chi.Router, svc *tags.Service, log *slog.Logger) {
	h := &tagsAPIHandler{tags: svc, log: log}
	r.Get("/tags", h.List)
	r.Post("/tags", h.Create)
	r.Get("/slug", h.Slug)
}

// List returns one page of tags.
// GET /api/v1/tags?page=&filter=
func (h *tagsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)
	page, err := h.tags.List(r.Context(), q)
	if err != nil {
		h.log.Error("api list tags failed", "page", q.Page, "filter", q.Filter, "err", err)
		writeError(w, http.StatusBadGateway, "tag collection unavailable", "upstream_error")
		return
	}
	writeJSON(w, http.StatusOK, pageResponse(q.Page, page))
}

// Create validates the name, derives the slug, and creates the tag.
// POST /api/v1/tags
func (h *tagsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "bad_request")
		return
	}

	tag, err := h.tags.Create(r.Context(), req.Name)
	var verr *tags.ValidationError
	switch {
	case errors.As(err, &verr):
		writeFieldError(w, verr.Field, verr.Message)
		return
	case err != nil:
		h.log.Error("api create tag failed", "name", req.Name, "err", err)
		writeError(w, http.StatusBadGateway, "tag collection unavailable", "upstream_error")
		return
	}
	writeJSON(w, http.StatusCreated, tagResponse(*tag))
}

// Slug returns the slug derived from text.
// GET /api/v1/slug?text=
func (h *tagsAPIHandler) Slug(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	writeJSON(w, http.StatusOK, SlugResponse{Text: text, Slug: tags.ToSlug(text)})
}

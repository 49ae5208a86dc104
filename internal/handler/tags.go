package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/tagboard/internal/session"
	"github.com/joestump/tagboard/internal/tags"
)

const (
	tagsPath = "/tags"

	// listTarget is the id of the element wrapping the table and pagination.
	listTarget = "tag-list"

	// tagsChangedEvent is fired after a creation; the list refetches on it.
	tagsChangedEvent = "tags-changed"

	msgListFailed   = "Could not load tags. Showing the last loaded results."
	msgCreateFailed = "Could not create the tag. Please try again."
)

// TagListPage is the template data for the tag list view.
type TagListPage struct {
	BasePage
	Query      tags.ListQuery
	Tags       []tags.Tag
	Pagination *Pagination
	Error      string
}

// TagForm holds the creation form state. Slug is derived from Name and is
// never read back from the request.
type TagForm struct {
	Name   string
	Slug   string
	Errors map[string]string
	Error  string
	Flash  *Flash
}

// TagFormPage is the template data for the standalone creation page.
type TagFormPage struct {
	BasePage
	Form TagForm
}

// TagsHandler serves the tag list, filter, and creation views.
type TagsHandler struct {
	tags *tags.Service
	sm   *scs.SessionManager
	log  *slog.Logger
}

// NewTagsHandler creates a new TagsHandler.
func NewTagsHandler(svc *tags.Service, sm *scs.SessionManager, log *slog.Logger) *TagsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TagsHandler{tags: svc, sm: sm, log: log}
}

// Index renders the tag list for the page and filter in the URL.
// HTMX requests targeting the list get only the list fragment.
func (h *TagsHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, tags.ParseListQuery(r.URL.Query()))
}

// Filter handles the filter form: the page resets to 1 and the filter text
// moves into the URL.
func (h *TagsHandler) Filter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	q := tags.ParseListQuery(r.URL.Query()).WithFilter(r.PostFormValue("filter"))
	target := tagsPath + "?" + q.Encode()

	if isHTMX(r) {
		w.Header().Set("HX-Push-Url", target)
		h.renderList(w, r, q)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *TagsHandler) renderList(w http.ResponseWriter, r *http.Request, q tags.ListQuery) {
	fragment := isHTMX(r) && htmxTarget(r) == listTarget
	data := TagListPage{Query: q, Tags: []tags.Tag{}}

	page, err := h.tags.List(r.Context(), q)
	if err != nil {
		h.log.Error("list tags failed", "page", q.Page, "filter", q.Filter, "err", err)
		if fragment {
			// The table already on screen stays; only the alert region changes.
			w.Header().Set("HX-Retarget", "#alerts")
			w.Header().Set("HX-Reswap", "innerHTML")
			renderFragment(w, http.StatusOK, "alert", Flash{Type: "error", Message: msgListFailed})
			return
		}
		data.BasePage = newBasePage("Tags", nil)
		data.Error = msgListFailed
		render(w, http.StatusBadGateway, "tags/index.html", data)
		return
	}

	data.Tags = page.Data
	p := newPagination(tagsPath, q, page.Pages, page.Items, len(page.Data))
	data.Pagination = &p

	if fragment {
		renderFragment(w, http.StatusOK, "tag_list", data)
		return
	}
	data.BasePage = newBasePage("Tags", h.popFlash(r))
	render(w, http.StatusOK, "tags/index.html", data)
}

// New renders the creation form: as dialog content for HTMX, otherwise as
// its own page.
func (h *TagsHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, TagForm{})
}

// SlugPreview renders the read-only slug field for the name typed so far.
func (h *TagsHandler) SlugPreview(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	renderFragment(w, http.StatusOK, "slug_field", TagForm{Name: name, Slug: previewSlug(name)})
}

// Create validates the submitted name and creates the tag. On success the
// cached tag list is invalidated and a tags-changed event tells the page to
// refetch it.
func (h *TagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	name := r.PostFormValue("name")
	form := TagForm{Name: name, Slug: previewSlug(name)}

	tag, err := h.tags.Create(r.Context(), name)
	var verr *tags.ValidationError
	switch {
	case errors.As(err, &verr):
		form.Errors = map[string]string{verr.Field: verr.Message}
		h.renderForm(w, r, http.StatusUnprocessableEntity, form)
		return
	case err != nil:
		h.log.Error("create tag failed", "name", name, "err", err)
		form.Error = msgCreateFailed
		h.renderForm(w, r, http.StatusBadGateway, form)
		return
	}

	h.log.Info("tag created", "id", tag.ID, "slug", tag.Slug)
	msg := "Tag \"" + tag.Name + "\" created."

	if isHTMX(r) {
		trigger, _ := json.Marshal(map[string]any{
			tagsChangedEvent: map[string]string{"slug": tag.Slug},
		})
		w.Header().Set("HX-Trigger", string(trigger))
		renderFragment(w, http.StatusOK, "create_tag_form", TagForm{Flash: &Flash{Type: "success", Message: msg}})
		return
	}
	session.PutFlash(r.Context(), h.sm, "success", msg)
	http.Redirect(w, r, tagsPath, http.StatusSeeOther)
}

// renderForm renders the creation form. HTMX only swaps 2xx responses, so
// error states are sent with 200 to HTMX and with status to everyone else.
func (h *TagsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, form TagForm) {
	if isHTMX(r) {
		renderFragment(w, http.StatusOK, "create_tag_form", form)
		return
	}
	render(w, status, "tags/new.html", TagFormPage{BasePage: newBasePage("Create tag", nil), Form: form})
}

func (h *TagsHandler) popFlash(r *http.Request) *Flash {
	if h.sm == nil {
		return nil
	}
	kind, msg, ok := session.PopFlash(r.Context(), h.sm)
	if !ok {
		return nil
	}
	return &Flash{Type: kind, Message: msg}
}

// previewSlug is the slug the server will derive for name on submission.
func previewSlug(name string) string {
	return tags.ToSlug(name)
}

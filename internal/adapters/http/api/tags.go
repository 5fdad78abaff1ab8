package api

import (
	"net/http"

	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/pkg/logger"
)

// TagsHandler handles /tags requests.
type TagsHandler struct {
	handler
	client breeze.TagsClient
}

// NewTagsHandler creates a new tags handler.
func NewTagsHandler(client breeze.TagsClient, l logger.Logger) *TagsHandler {
	return &TagsHandler{handler: handler{log: l}, client: client}
}

// HandleList handles GET /tags?folder.
func (h *TagsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_tags"
	b := bind(r)
	folder := b.String("folder")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.GetTags(r.Context(), folder)
	h.relay(w, r, op, body, err)
}

// HandleFolders handles GET /tags/folders.
func (h *TagsHandler) HandleFolders(w http.ResponseWriter, r *http.Request) {
	body, err := h.client.GetTagFolders(r.Context())
	h.relay(w, r, "api.list_tag_folders", body, err)
}

// HandleAssign handles POST /tags/assign with person_id and tag_id.
func (h *TagsHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	const op = "api.assign_tag"
	b := bind(r)
	person, tag := b.Required("person_id"), b.Required("tag_id")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.AssignTag(r.Context(), person, tag)
	h.relay(w, r, op, body, err)
}

// HandleUnassign handles DELETE /tags/unassign with person_id and tag_id.
func (h *TagsHandler) HandleUnassign(w http.ResponseWriter, r *http.Request) {
	const op = "api.unassign_tag"
	b := bind(r)
	person, tag := b.Required("person_id"), b.Required("tag_id")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.UnassignTag(r.Context(), person, tag)
	h.relay(w, r, op, body, err)
}

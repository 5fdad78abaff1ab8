package api

import (
	"net/http"

	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/pkg/logger"
)

// FormsHandler handles /forms requests.
type FormsHandler struct {
	handler
	client breeze.FormsClient
}

// NewFormsHandler creates a new forms handler.
func NewFormsHandler(client breeze.FormsClient, l logger.Logger) *FormsHandler {
	return &FormsHandler{handler: handler{log: l}, client: client}
}

// HandleFields handles GET /forms/{form_id}/fields.
func (h *FormsHandler) HandleFields(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_form_fields"
	b := bind(r)
	form := b.Path("form_id")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.ListFormFields(r.Context(), form)
	h.relay(w, r, op, body, err)
}

// HandleEntries handles GET /forms/{form_id}/entries?details.
func (h *FormsHandler) HandleEntries(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_form_entries"
	b := bind(r)
	form := b.Path("form_id")
	details := b.Bool("details", false)
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.ListFormEntries(r.Context(), form, details)
	h.relay(w, r, op, body, err)
}

// HandleRemoveEntry handles DELETE /forms/entries/{entry_id}.
func (h *FormsHandler) HandleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_form_entry"
	b := bind(r)
	entry := b.Path("entry_id")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.RemoveFormEntry(r.Context(), entry)
	h.relay(w, r, op, body, err)
}

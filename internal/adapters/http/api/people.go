package api

import (
	"fmt"
	"net/http"

	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/pkg/logger"
)

// PeopleHandler handles /people requests.
type PeopleHandler struct {
	handler
	client breeze.PeopleClient
}

// NewPeopleHandler creates a new people handler.
func NewPeopleHandler(client breeze.PeopleClient, l logger.Logger) *PeopleHandler {
	return &PeopleHandler{handler: handler{log: l}, client: client}
}

// HandleList handles GET /people?limit&offset&details.
func (h *PeopleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_people"
	b := bind(r)
	q := breeze.PeopleQuery{
		Limit:   b.OptionalInt("limit"),
		Offset:  b.OptionalInt("offset"),
		Details: b.Bool("details", false),
	}
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.GetPeople(r.Context(), q)
	h.relay(w, r, op, body, err)
}

// HandleGet handles GET /people/{person_id}. Every failure is reported as
// not found.
func (h *PeopleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_person"
	b := bind(r)
	id := b.Path("person_id")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.GetPersonDetails(r.Context(), id)
	if err != nil {
		h.log.Warn(r.Context(), "person lookup failed", logger.String("person_id", id), logger.Error(err))
		writeError(w, http.StatusNotFound, "not_found",
			WrapKind(op, ErrNotFound, fmt.Errorf("Person not found: %s", publicMessage(err))))
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// HandleAdd handles POST /people with first_name, last_name and fields_json.
func (h *PeopleHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_person"
	b := bind(r)
	first := b.Required("first_name")
	last := b.Required("last_name")
	fields := b.String("fields_json")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.AddPerson(r.Context(), first, last, fields)
	h.relay(w, r, op, body, err)
}

// HandleUpdate handles PUT /people/{person_id} with fields_json.
func (h *PeopleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_person"
	b := bind(r)
	id := b.Path("person_id")
	fields := b.Required("fields_json")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.UpdatePerson(r.Context(), id, fields)
	h.relay(w, r, op, body, err)
}

// ProfileHandler handles /profile requests.
type ProfileHandler struct {
	handler
	client breeze.PeopleClient
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(client breeze.PeopleClient, l logger.Logger) *ProfileHandler {
	return &ProfileHandler{handler: handler{log: l}, client: client}
}

// HandleFields handles GET /profile/fields.
func (h *ProfileHandler) HandleFields(w http.ResponseWriter, r *http.Request) {
	body, err := h.client.GetProfileFields(r.Context())
	h.relay(w, r, "api.profile_fields", body, err)
}

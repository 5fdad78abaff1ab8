package api

import (
	"net/http"

	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/pkg/logger"
)

const defaultRoleQuantity = 1

// VolunteersHandler handles /volunteers/{instance_id} requests.
type VolunteersHandler struct {
	handler
	client breeze.VolunteersClient
}

// NewVolunteersHandler creates a new volunteers handler.
func NewVolunteersHandler(client breeze.VolunteersClient, l logger.Logger) *VolunteersHandler {
	return &VolunteersHandler{handler: handler{log: l}, client: client}
}

// HandleList handles GET /volunteers/{instance_id}.
func (h *VolunteersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_volunteers"
	b := bind(r)
	instance := b.Path("instance_id")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.ListVolunteers(r.Context(), instance)
	h.relay(w, r, op, body, err)
}

// HandleAdd handles POST /volunteers/{instance_id} with person_id.
func (h *VolunteersHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_volunteer"
	b := bind(r)
	instance, person := b.Path("instance_id"), b.Required("person_id")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.AddVolunteer(r.Context(), instance, person)
	h.relay(w, r, op, body, err)
}

// HandleRemove handles DELETE /volunteers/{instance_id}/{person_id}.
func (h *VolunteersHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_volunteer"
	b := bind(r)
	instance, person := b.Path("instance_id"), b.Path("person_id")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.RemoveVolunteer(r.Context(), instance, person)
	h.relay(w, r, op, body, err)
}

// HandleUpdate handles PUT /volunteers/{instance_id}/{person_id} with role_ids_json.
func (h *VolunteersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_volunteer"
	b := bind(r)
	instance, person := b.Path("instance_id"), b.Path("person_id")
	roles := b.Required("role_ids_json")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.UpdateVolunteer(r.Context(), instance, person, roles)
	h.relay(w, r, op, body, err)
}

// HandleListRoles handles GET /volunteers/{instance_id}/roles?show_quantity.
func (h *VolunteersHandler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_volunteer_roles"
	b := bind(r)
	instance := b.Path("instance_id")
	show := b.Bool("show_quantity", false)
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.ListVolunteerRoles(r.Context(), instance, show)
	h.relay(w, r, op, body, err)
}

// HandleAddRole handles POST /volunteers/{instance_id}/roles with name and quantity.
func (h *VolunteersHandler) HandleAddRole(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_volunteer_role"
	b := bind(r)
	instance, name := b.Path("instance_id"), b.Required("name")
	quantity := b.Int("quantity", defaultRoleQuantity)
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.AddVolunteerRole(r.Context(), instance, name, quantity)
	h.relay(w, r, op, body, err)
}

// HandleRemoveRole handles DELETE /volunteers/{instance_id}/roles/{role_id}.
func (h *VolunteersHandler) HandleRemoveRole(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_volunteer_role"
	b := bind(r)
	instance, role := b.Path("instance_id"), b.Path("role_id")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.RemoveVolunteerRole(r.Context(), instance, role)
	h.relay(w, r, op, body, err)
}

package api

import (
	"net/http"

	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/pkg/logger"
)

// EventsHandler handles /events requests.
type EventsHandler struct {
	handler
	client breeze.EventsClient
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(client breeze.EventsClient, l logger.Logger) *EventsHandler {
	return &EventsHandler{handler: handler{log: l}, client: client}
}

// HandleList handles GET /events?start_date&end_date.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_events"
	b := bind(r)
	start, end := b.String("start_date"), b.String("end_date")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.GetEvents(r.Context(), start, end)
	h.relay(w, r, op, body, err)
}

// HandleAdd handles POST /events.
func (h *EventsHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_event"
	b := bind(r)
	in := breeze.EventInput{
		Name:        b.Required("name"),
		StartDate:   b.Required("start_date"),
		EndDate:     b.String("end_date"),
		AllDay:      b.OptionalBool("all_day"),
		Description: b.String("description"),
		CategoryID:  b.String("category_id"),
		EventID:     b.String("event_id"),
	}
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.AddEvent(r.Context(), in)
	h.relay(w, r, op, body, err)
}

// HandleCheckIn handles POST /events/{instance_id}/check-in/{person_id}.
func (h *EventsHandler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	const op = "api.event_check_in"
	b := bind(r)
	instance, person := b.Path("instance_id"), b.Path("person_id")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.EventCheckIn(r.Context(), person, instance)
	h.relay(w, r, op, body, err)
}

// HandleCheckOut handles DELETE /events/{instance_id}/check-out/{person_id}.
// The client's boolean is the response body, false included.
func (h *EventsHandler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	const op = "api.event_check_out"
	b := bind(r)
	instance, person := b.Path("instance_id"), b.Path("person_id")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	ok, err := h.client.EventCheckOut(r.Context(), person, instance)
	if err != nil {
		h.upstreamFailed(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ok)
}

// Package api declares the HTTP facade over the Breeze client: route
// registration, input binding and error mapping.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/pkg/logger"
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	peopleHandler        *PeopleHandler
	profileHandler       *ProfileHandler
	eventsHandler        *EventsHandler
	contributionsHandler *ContributionsHandler
	campaignsHandler     *CampaignsHandler
	tagsHandler          *TagsHandler
	formsHandler         *FormsHandler
	volunteersHandler    *VolunteersHandler
	familiesHandler      *FamiliesHandler
}

// NewServer creates a new API server with all handlers sharing client.
func NewServer(client breeze.Client, l logger.Logger) *Server {
	if l == nil {
		l = logger.NewNop()
	}
	l = l.Named("api")
	return &Server{
		healthHandler:        NewHealthHandler(),
		peopleHandler:        NewPeopleHandler(client, l),
		profileHandler:       NewProfileHandler(client, l),
		eventsHandler:        NewEventsHandler(client, l),
		contributionsHandler: NewContributionsHandler(client, l),
		campaignsHandler:     NewCampaignsHandler(client, l),
		tagsHandler:          NewTagsHandler(client, l),
		formsHandler:         NewFormsHandler(client, l),
		volunteersHandler:    NewVolunteersHandler(client, l),
		familiesHandler:      NewFamiliesHandler(client, l),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/", s.healthHandler.HandleRoot)
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/metrics", s.healthHandler.HandleMetrics)

	r.Route("/people", func(r chi.Router) {
		r.Get("/", s.peopleHandler.HandleList)
		r.Post("/", s.peopleHandler.HandleAdd)
		r.Get("/{person_id}", s.peopleHandler.HandleGet)
		r.Put("/{person_id}", s.peopleHandler.HandleUpdate)
	})
	r.Get("/profile/fields", s.profileHandler.HandleFields)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.eventsHandler.HandleList)
		r.Post("/", s.eventsHandler.HandleAdd)
		r.Post("/{instance_id}/check-in/{person_id}", s.eventsHandler.HandleCheckIn)
		r.Delete("/{instance_id}/check-out/{person_id}", s.eventsHandler.HandleCheckOut)
	})

	r.Route("/contributions", func(r chi.Router) {
		r.Get("/", s.contributionsHandler.HandleList)
		r.Post("/", s.contributionsHandler.HandleAdd)
	})

	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/", s.campaignsHandler.HandleList)
		r.Get("/{campaign_id}/pledges", s.campaignsHandler.HandlePledges)
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", s.tagsHandler.HandleList)
		r.Get("/folders", s.tagsHandler.HandleFolders)
		r.Post("/assign", s.tagsHandler.HandleAssign)
		r.Delete("/unassign", s.tagsHandler.HandleUnassign)
	})

	r.Route("/forms", func(r chi.Router) {
		r.Get("/{form_id}/fields", s.formsHandler.HandleFields)
		r.Get("/{form_id}/entries", s.formsHandler.HandleEntries)
		r.Delete("/entries/{entry_id}", s.formsHandler.HandleRemoveEntry)
	})

	r.Route("/volunteers/{instance_id}", func(r chi.Router) {
		r.Get("/", s.volunteersHandler.HandleList)
		r.Post("/", s.volunteersHandler.HandleAdd)
		r.Get("/roles", s.volunteersHandler.HandleListRoles)
		r.Post("/roles", s.volunteersHandler.HandleAddRole)
		r.Delete("/roles/{role_id}", s.volunteersHandler.HandleRemoveRole)
		r.Delete("/{person_id}", s.volunteersHandler.HandleRemove)
		r.Put("/{person_id}", s.volunteersHandler.HandleUpdate)
	})

	r.Route("/families", func(r chi.Router) {
		r.Post("/", s.familiesHandler.HandleCreate)
		r.Post("/create", s.familiesHandler.HandleCreate)
		r.Post("/add", s.familiesHandler.HandleAdd)
		r.Post("/destroy", s.familiesHandler.HandleDestroy)
		r.Post("/remove", s.familiesHandler.HandleRemove)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRaw relays an upstream payload byte for byte.
func writeRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	if len(body) == 0 {
		body = json.RawMessage("null")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = publicMessage(err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// handler holds what every resource handler needs besides its client.
type handler struct {
	log logger.Logger
}

func (h handler) badRequest(w http.ResponseWriter, r *http.Request, op string, err error) {
	err = WrapKind(op, ErrBadRequest, err)
	h.log.Debug(r.Context(), "rejected request", logger.String("op", op), logger.Error(err))
	writeError(w, http.StatusBadRequest, "bad_request", err)
}

// upstreamFailed maps any client failure to a 500 carrying the upstream message.
func (h handler) upstreamFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	err = WrapKind(op, ErrUpstream, err)
	h.log.Error(r.Context(), "upstream call failed", logger.String("op", op), logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}

// relay writes body on success and a 500 otherwise.
func (h handler) relay(w http.ResponseWriter, r *http.Request, op string, body json.RawMessage, err error) {
	if err != nil {
		h.upstreamFailed(w, r, op, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/pkg/logger"
)

// familyRequest is the JSON form of a family call. The same fields may be
// sent as repeated people_ids query or form values instead.
type familyRequest struct {
	PeopleIDs      []string `json:"people_ids"`
	TargetPersonID string   `json:"target_person_id,omitempty"`
}

// FamiliesHandler handles /families requests.
type FamiliesHandler struct {
	handler
	client breeze.FamiliesClient
}

// NewFamiliesHandler creates a new families handler.
func NewFamiliesHandler(client breeze.FamiliesClient, l logger.Logger) *FamiliesHandler {
	return &FamiliesHandler{handler: handler{log: l}, client: client}
}

func (h *FamiliesHandler) bindFamily(r *http.Request, needTarget bool) (familyRequest, error) {
	var req familyRequest
	if isJSON(r) {
		if err := decodeJSON(r, &req); err != nil {
			return req, err
		}
	} else {
		b := bind(r)
		req.PeopleIDs = b.List("people_ids")
		req.TargetPersonID = b.String("target_person_id")
		if err := b.Err(); err != nil {
			return req, err
		}
	}
	if len(req.PeopleIDs) == 0 {
		return req, errors.New("missing required parameter people_ids")
	}
	if needTarget && req.TargetPersonID == "" {
		return req, errors.New("missing required parameter target_person_id")
	}
	return req, nil
}

func (h *FamiliesHandler) serve(w http.ResponseWriter, r *http.Request, op string, needTarget bool,
	call func(ctx context.Context, req familyRequest) (json.RawMessage, error),
) {
	req, err := h.bindFamily(r, needTarget)
	if err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := call(r.Context(), req)
	h.relay(w, r, op, body, err)
}

// HandleCreate handles POST /families.
func (h *FamiliesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.create_family", false, func(ctx context.Context, req familyRequest) (json.RawMessage, error) {
		return h.client.CreateFamily(ctx, req.PeopleIDs)
	})
}

// HandleAdd handles POST /families/add.
func (h *FamiliesHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.add_to_family", true, func(ctx context.Context, req familyRequest) (json.RawMessage, error) {
		return h.client.AddToFamily(ctx, req.PeopleIDs, req.TargetPersonID)
	})
}

// HandleDestroy handles POST /families/destroy.
func (h *FamiliesHandler) HandleDestroy(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.destroy_family", false, func(ctx context.Context, req familyRequest) (json.RawMessage, error) {
		return h.client.DestroyFamily(ctx, req.PeopleIDs)
	})
}

// HandleRemove handles POST /families/remove.
func (h *FamiliesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.remove_from_family", false, func(ctx context.Context, req familyRequest) (json.RawMessage, error) {
		return h.client.RemoveFromFamily(ctx, req.PeopleIDs)
	})
}

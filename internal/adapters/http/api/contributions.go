package api

import (
	"errors"
	"net/http"

	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/pkg/logger"
)

// ContributionsHandler handles /contributions requests.
type ContributionsHandler struct {
	handler
	client breeze.GivingClient
}

// NewContributionsHandler creates a new contributions handler.
func NewContributionsHandler(client breeze.GivingClient, l logger.Logger) *ContributionsHandler {
	return &ContributionsHandler{handler: handler{log: l}, client: client}
}

// HandleAdd handles POST /contributions. The body is a JSON contribution;
// amount may be a number or a numeric string and unknown keys are ignored.
// The response is the payment id as a JSON string.
func (h *ContributionsHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_contribution"
	var in breeze.ContributionInput
	if err := decodeJSON(r, &in); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	id, err := h.client.AddContribution(r.Context(), in)
	if err != nil {
		h.upstreamFailed(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// HandleList handles GET /contributions. List filters may repeat.
func (h *ContributionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_contributions"
	b := bind(r)
	q := breeze.ContributionQuery{
		StartDate:      b.Required("start_date"),
		EndDate:        b.Required("end_date"),
		PersonID:       b.String("person_id"),
		IncludeFamily:  b.Bool("include_family", false),
		AmountMin:      b.OptionalFloat("amount_min"),
		AmountMax:      b.OptionalFloat("amount_max"),
		MethodIDs:      b.List("method_ids"),
		FundIDs:        b.List("fund_ids"),
		EnvelopeNumber: b.String("envelope_number"),
		Batches:        b.List("batches"),
		Forms:          b.List("forms"),
	}
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	if q.IncludeFamily && q.PersonID == "" {
		h.badRequest(w, r, op, errors.New("include_family requires person_id"))
		return
	}
	body, err := h.client.ListContributions(r.Context(), q)
	h.relay(w, r, op, body, err)
}

// CampaignsHandler handles /campaigns requests.
type CampaignsHandler struct {
	handler
	client breeze.GivingClient
}

// NewCampaignsHandler creates a new campaigns handler.
func NewCampaignsHandler(client breeze.GivingClient, l logger.Logger) *CampaignsHandler {
	return &CampaignsHandler{handler: handler{log: l}, client: client}
}

// HandleList handles GET /campaigns.
func (h *CampaignsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	body, err := h.client.ListCampaigns(r.Context())
	h.relay(w, r, "api.list_campaigns", body, err)
}

// HandlePledges handles GET /campaigns/{campaign_id}/pledges.
func (h *CampaignsHandler) HandlePledges(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_pledges"
	b := bind(r)
	id := b.Path("campaign_id")
	if err := b.Err(); err != nil {
		h.badRequest(w, r, op, err)
		return
	}
	body, err := h.client.ListPledges(r.Context(), id)
	h.relay(w, r, op, body, err)
}

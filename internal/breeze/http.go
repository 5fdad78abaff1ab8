package breeze

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/okian/breezeapi/pkg/logger"
	"github.com/okian/breezeapi/pkg/metrics"
)

const (
	defaultTimeout = 60 * time.Second
	maxBodyBytes   = 32 << 20
	apiPrefix      = "/api/"
)

// Options configures an HTTPClient.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logger.Logger
}

// HTTPClient implements Client against the Breeze REST API.
// It is safe for concurrent use and keeps no per-call state.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logger.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient validates credentials and builds a client.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	key := strings.TrimSpace(opts.APIKey)
	if base == "" || key == "" {
		return nil, ErrMissingCredentials
	}
	if _, err := url.Parse(base); err != nil {
		return nil, errors.Wrap(err, "parsing breeze base url")
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	l := opts.Logger
	if l == nil {
		l = logger.NewNop()
	}
	return &HTTPClient{
		baseURL:    base,
		apiKey:     key,
		httpClient: hc,
		logger:     l.Named("breeze"),
	}, nil
}

// call performs one request and returns the JSON payload after checking for
// Breeze error envelopes.
func (c *HTTPClient) call(ctx context.Context, op, method, endpoint string, params url.Values) (json.RawMessage, error) {
	start := time.Now()
	body, err := c.do(ctx, op, method, endpoint, params)
	metrics.RecordUpstreamCall(op, outcome(err), float64(time.Since(start).Milliseconds()))
	if err != nil {
		c.logger.Warn(ctx, "breeze call failed", logger.String("op", op), logger.Error(err))
		return nil, err
	}
	return body, nil
}

func (c *HTTPClient) do(ctx context.Context, op, method, endpoint string, params url.Values) (json.RawMessage, error) {
	u := c.baseURL + apiPrefix + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: building request", op)
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if rid := logger.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: calling breeze", op)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "%s: reading response", op)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, newAPIError(op, resp.StatusCode, ErrNotFound, errorMessage(raw))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(op, resp.StatusCode, ErrUpstream, errorMessage(raw))
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, newAPIError(op, resp.StatusCode, ErrUpstream, "malformed response: "+truncate(string(raw), 200))
	}
	if msg, failed := errorEnvelope(raw); failed {
		return nil, newAPIError(op, resp.StatusCode, ErrUpstream, msg)
	}
	return json.RawMessage(raw), nil
}

// lookup is call for single-record reads: an empty payload means the record
// does not exist.
func (c *HTTPClient) lookup(ctx context.Context, op, endpoint string, params url.Values) (json.RawMessage, error) {
	body, err := c.call(ctx, op, http.MethodGet, endpoint, params)
	if err != nil {
		return nil, err
	}
	if isEmptyPayload(body) {
		return nil, newAPIError(op, http.StatusOK, ErrNotFound, "no record returned")
	}
	return body, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNotFound(err):
		return "not_found"
	case IsRejected(err):
		return "upstream_error"
	default:
		return "transport_error"
	}
}

func isEmptyPayload(b json.RawMessage) bool {
	switch string(bytes.TrimSpace(b)) {
	case "", "null", "[]", "{}", "false":
		return true
	}
	return false
}

// errorEnvelope detects Breeze's in-band failure shapes:
// {"success":false,...}, {"errors":...}, {"error":...}, {"errorCode":...}.
func errorEnvelope(raw []byte) (string, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return "", false
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	failed := false
	if s, ok := obj["success"].(bool); ok && !s {
		failed = true
	}
	for _, k := range []string{"errors", "error", "errorCode"} {
		if v, ok := obj[k]; ok && v != nil && v != false {
			failed = true
		}
	}
	if !failed {
		return "", false
	}
	return messageFrom(obj), true
}

func errorMessage(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		if msg := messageFrom(obj); msg != "" {
			return msg
		}
	}
	return truncate(string(raw), 200)
}

func messageFrom(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := messageFrom(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		for _, k := range []string{"errors", "error", "error_message", "errorMessage", "message", "errorCode"} {
			if s := messageFrom(t[k]); s != "" {
				return s
			}
		}
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func setIf(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setFlag(v url.Values, key string, on bool) {
	if on {
		v.Set(key, "1")
	}
}

func setFloat(v url.Values, key string, f *float64) {
	if f != nil {
		v.Set(key, strconv.FormatFloat(*f, 'f', -1, 64))
	}
}

func setList(v url.Values, key string, items []string) {
	if len(items) > 0 {
		v.Set(key, strings.Join(items, "-"))
	}
}

func peopleIDsJSON(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	b, _ := json.Marshal(ids)
	return string(b)
}

// GetPeople lists people, optionally with every profile detail.
func (c *HTTPClient) GetPeople(ctx context.Context, q PeopleQuery) (json.RawMessage, error) {
	v := url.Values{}
	setFlag(v, "details", q.Details)
	if q.Limit != nil {
		v.Set("limit", strconv.Itoa(*q.Limit))
	}
	if q.Offset != nil {
		v.Set("offset", strconv.Itoa(*q.Offset))
	}
	return c.call(ctx, "get_people", http.MethodGet, "people", v)
}

// GetPersonDetails returns ErrNotFound when Breeze has no such person.
func (c *HTTPClient) GetPersonDetails(ctx context.Context, personID string) (json.RawMessage, error) {
	return c.lookup(ctx, "get_person_details", "people/"+url.PathEscape(personID), nil)
}

func (c *HTTPClient) AddPerson(ctx context.Context, firstName, lastName, fieldsJSON string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("first", firstName)
	v.Set("last", lastName)
	setIf(v, "fields_json", fieldsJSON)
	return c.call(ctx, "add_person", http.MethodPost, "people/add", v)
}

func (c *HTTPClient) UpdatePerson(ctx context.Context, personID, fieldsJSON string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("person_id", personID)
	v.Set("fields_json", fieldsJSON)
	return c.call(ctx, "update_person", http.MethodPost, "people/update", v)
}

func (c *HTTPClient) GetProfileFields(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, "get_profile_fields", http.MethodGet, "profile", nil)
}

// GetEvents lists events between two dates; Breeze defaults to the current month.
func (c *HTTPClient) GetEvents(ctx context.Context, startDate, endDate string) (json.RawMessage, error) {
	v := url.Values{}
	setIf(v, "start", startDate)
	setIf(v, "end", endDate)
	return c.call(ctx, "get_events", http.MethodGet, "events", v)
}

func (c *HTTPClient) AddEvent(ctx context.Context, in EventInput) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("name", in.Name)
	v.Set("starts_on", in.StartDate)
	setIf(v, "ends_on", in.EndDate)
	if in.AllDay != nil {
		if *in.AllDay {
			v.Set("all_day", "1")
		} else {
			v.Set("all_day", "0")
		}
	}
	setIf(v, "description", in.Description)
	setIf(v, "category_id", in.CategoryID)
	setIf(v, "event_id", in.EventID)
	return c.call(ctx, "add_event", http.MethodPost, "events/add", v)
}

func (c *HTTPClient) EventCheckIn(ctx context.Context, personID, instanceID string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("person_id", personID)
	v.Set("instance_id", instanceID)
	return c.call(ctx, "event_check_in", http.MethodPost, "events/attendance/add", v)
}

// EventCheckOut deletes an attendance record. Breeze answers a failed
// check-out in-band, which is reported as false.
func (c *HTTPClient) EventCheckOut(ctx context.Context, personID, instanceID string) (bool, error) {
	v := url.Values{}
	v.Set("person_id", personID)
	v.Set("instance_id", instanceID)
	body, err := c.call(ctx, "event_check_out", http.MethodPost, "events/attendance/delete", v)
	if err != nil {
		if IsRejected(err) {
			return false, nil
		}
		return false, err
	}
	var ok bool
	if err := json.Unmarshal(body, &ok); err == nil {
		return ok, nil
	}
	return !isEmptyPayload(body), nil
}

// AddContribution records a gift and returns the Breeze payment id.
func (c *HTTPClient) AddContribution(ctx context.Context, in ContributionInput) (string, error) {
	const op = "add_contribution"
	v := url.Values{}
	setIf(v, "date", in.Date)
	setIf(v, "name", in.Name)
	setIf(v, "person_id", in.PersonID)
	setIf(v, "uid", in.UID)
	setIf(v, "processor", in.Processor)
	setIf(v, "method", in.Method)
	setIf(v, "funds_json", in.FundsJSON)
	if in.Amount != nil {
		v.Set("amount", strconv.FormatFloat(in.Amount.Float64(), 'f', -1, 64))
	}
	setIf(v, "group", in.Group)
	setIf(v, "batch_number", in.BatchNumber)
	setIf(v, "batch_name", in.BatchName)
	body, err := c.call(ctx, op, http.MethodPost, "giving/add", v)
	if err != nil {
		return "", err
	}
	var out struct {
		PaymentID json.Number `json:"payment_id"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.PaymentID == "" {
		return "", newAPIError(op, http.StatusOK, ErrUpstream, "response carried no payment_id")
	}
	return out.PaymentID.String(), nil
}

func (c *HTTPClient) ListContributions(ctx context.Context, q ContributionQuery) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("start", q.StartDate)
	v.Set("end", q.EndDate)
	setIf(v, "person_id", q.PersonID)
	setFlag(v, "include_family", q.IncludeFamily)
	setFloat(v, "amount_min", q.AmountMin)
	setFloat(v, "amount_max", q.AmountMax)
	setList(v, "method_ids", q.MethodIDs)
	setList(v, "fund_ids", q.FundIDs)
	setIf(v, "envelope_number", q.EnvelopeNumber)
	setList(v, "batches", q.Batches)
	setList(v, "forms", q.Forms)
	return c.call(ctx, "list_contributions", http.MethodGet, "giving/list", v)
}

func (c *HTTPClient) ListCampaigns(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, "list_campaigns", http.MethodGet, "pledges/list_campaigns", nil)
}

func (c *HTTPClient) ListPledges(ctx context.Context, campaignID string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("campaign_id", campaignID)
	return c.call(ctx, "list_pledges", http.MethodGet, "pledges/list_pledges", v)
}

func (c *HTTPClient) GetTags(ctx context.Context, folderID string) (json.RawMessage, error) {
	v := url.Values{}
	setIf(v, "folder_id", folderID)
	return c.call(ctx, "get_tags", http.MethodGet, "tags/list_tags", v)
}

func (c *HTTPClient) GetTagFolders(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, "get_tag_folders", http.MethodGet, "tags/list_folders", nil)
}

func (c *HTTPClient) AssignTag(ctx context.Context, personID, tagID string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("person_id", personID)
	v.Set("tag_id", tagID)
	return c.call(ctx, "assign_tag", http.MethodPost, "tags/assign", v)
}

func (c *HTTPClient) UnassignTag(ctx context.Context, personID, tagID string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("person_id", personID)
	v.Set("tag_id", tagID)
	return c.call(ctx, "unassign_tag", http.MethodPost, "tags/unassign", v)
}

func (c *HTTPClient) ListFormFields(ctx context.Context, formID string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("form_id", formID)
	return c.call(ctx, "list_form_fields", http.MethodGet, "forms/list_form_fields", v)
}

func (c *HTTPClient) ListFormEntries(ctx context.Context, formID string, details bool) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("form_id", formID)
	setFlag(v, "details", details)
	return c.call(ctx, "list_form_entries", http.MethodGet, "forms/list_form_entries", v)
}

func (c *HTTPClient) RemoveFormEntry(ctx context.Context, entryID string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("entry_id", entryID)
	return c.call(ctx, "remove_form_entry", http.MethodPost, "forms/remove_form_entry", v)
}

func (c *HTTPClient) ListVolunteers(ctx context.Context, instanceID string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("instance_id", instanceID)
	return c.call(ctx, "list_volunteers", http.MethodGet, "volunteers/list", v)
}

func (c *HTTPClient) AddVolunteer(ctx context.Context, instanceID, personID string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("instance_id", instanceID)
	v.Set("person_id", personID)
	return c.call(ctx, "add_volunteer", http.MethodPost, "volunteers/add", v)
}

func (c *HTTPClient) RemoveVolunteer(ctx context.Context, instanceID, personID string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("instance_id", instanceID)
	v.Set("person_id", personID)
	return c.call(ctx, "remove_volunteer", http.MethodPost, "volunteers/remove", v)
}

func (c *HTTPClient) UpdateVolunteer(ctx context.Context, instanceID, personID, roleIDsJSON string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("instance_id", instanceID)
	v.Set("person_id", personID)
	v.Set("role_ids_json", roleIDsJSON)
	return c.call(ctx, "update_volunteer", http.MethodPost, "volunteers/update", v)
}

func (c *HTTPClient) ListVolunteerRoles(ctx context.Context, instanceID string, showQuantity bool) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("instance_id", instanceID)
	setFlag(v, "show_quantity", showQuantity)
	return c.call(ctx, "list_volunteer_roles", http.MethodGet, "volunteers/list_roles", v)
}

func (c *HTTPClient) AddVolunteerRole(ctx context.Context, instanceID, name string, quantity int) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("instance_id", instanceID)
	v.Set("name", name)
	v.Set("quantity", strconv.Itoa(quantity))
	return c.call(ctx, "add_volunteer_role", http.MethodPost, "volunteers/add_role", v)
}

func (c *HTTPClient) RemoveVolunteerRole(ctx context.Context, instanceID, roleID string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("instance_id", instanceID)
	v.Set("role_id", roleID)
	return c.call(ctx, "remove_volunteer_role", http.MethodPost, "volunteers/remove_role", v)
}

func (c *HTTPClient) CreateFamily(ctx context.Context, peopleIDs []string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("people_ids_json", peopleIDsJSON(peopleIDs))
	return c.call(ctx, "create_family", http.MethodPost, "family/create", v)
}

func (c *HTTPClient) AddToFamily(ctx context.Context, peopleIDs []string, targetPersonID string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("people_ids_json", peopleIDsJSON(peopleIDs))
	v.Set("target_person_id", targetPersonID)
	return c.call(ctx, "add_to_family", http.MethodPost, "family/add", v)
}

func (c *HTTPClient) DestroyFamily(ctx context.Context, peopleIDs []string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("people_ids_json", peopleIDsJSON(peopleIDs))
	return c.call(ctx, "destroy_family", http.MethodPost, "family/destroy", v)
}

func (c *HTTPClient) RemoveFromFamily(ctx context.Context, peopleIDs []string) (json.RawMessage, error) {
	v := url.Values{}
	v.Set("people_ids_json", peopleIDsJSON(peopleIDs))
	return c.call(ctx, "remove_from_family", http.MethodPost, "family/remove", v)
}

package breeze

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Call is one recorded MockClient invocation.
type Call struct {
	Method string
	Args   []any
}

// MockClient is an in-memory Client for tests. It keeps just enough state to
// behave like a Breeze account: records created through it can be read back.
// Set Err to make every call fail with that error.
type MockClient struct {
	Err error

	mu            sync.Mutex
	calls         []Call
	nextID        int
	people        map[string]*Person
	personOrder   []string
	profileFields []ProfileField
	events        []Event
	attendance    map[string]map[string]bool
	contributions []Contribution
	campaigns     []Campaign
	pledges       []Pledge
	tags          []Tag
	folders       []TagFolder
	tagged        map[string]map[string]bool
	formFields    map[string][]FormField
	formEntries   map[string][]FormEntry
	roles         map[string][]VolunteerRole
	volunteers    map[string]map[string][]string
	families      map[string]string
}

var _ Client = (*MockClient)(nil)

// NewMockClient returns an empty mock account.
func NewMockClient() *MockClient {
	return &MockClient{
		nextID:      1000,
		people:      map[string]*Person{},
		attendance:  map[string]map[string]bool{},
		tagged:      map[string]map[string]bool{},
		formFields:  map[string][]FormField{},
		formEntries: map[string][]FormEntry{},
		roles:       map[string][]VolunteerRole{},
		volunteers:  map[string]map[string][]string{},
		families:    map[string]string{},
	}
}

// Calls returns a copy of every recorded invocation.
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastCall returns the most recent invocation, or a zero Call.
func (m *MockClient) LastCall() Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Call{}
	}
	return m.calls[len(m.calls)-1]
}

// record must be called with mu held.
func (m *MockClient) record(method string, args ...any) error {
	m.calls = append(m.calls, Call{Method: method, Args: args})
	return m.Err
}

func (m *MockClient) newID() string {
	m.nextID++
	return strconv.Itoa(m.nextID)
}

func rejected(op, msg string) error {
	return newAPIError(op, http.StatusOK, ErrUpstream, msg)
}

func notFound(op, msg string) error {
	return newAPIError(op, http.StatusNotFound, ErrNotFound, msg)
}

func marshal(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding mock response")
	}
	return b, nil
}

var trueJSON = json.RawMessage("true")

// SeedPerson stores p, assigning an id when empty, and returns the id.
func (m *MockClient) SeedPerson(p Person) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = m.newID()
	}
	if _, ok := m.people[p.ID]; !ok {
		m.personOrder = append(m.personOrder, p.ID)
	}
	m.people[p.ID] = &p
	return p.ID
}

// SeedProfileFields replaces the profile schema.
func (m *MockClient) SeedProfileFields(fields ...ProfileField) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileFields = append([]ProfileField(nil), fields...)
}

// SeedEvent stores e, assigning an id when empty, and returns the id.
func (m *MockClient) SeedEvent(e Event) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = m.newID()
	}
	m.events = append(m.events, e)
	return e.ID
}

// SeedCampaign stores a campaign and its pledges.
func (m *MockClient) SeedCampaign(c Campaign, pledges ...Pledge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns = append(m.campaigns, c)
	for _, p := range pledges {
		p.CampaignID = c.ID
		m.pledges = append(m.pledges, p)
	}
}

// SeedTags stores tag folders and tags.
func (m *MockClient) SeedTags(folders []TagFolder, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders = append(m.folders, folders...)
	m.tags = append(m.tags, tags...)
}

// SeedForm stores a form schema and entries. Entries get ids when empty.
func (m *MockClient) SeedForm(formID string, fields []FormField, entries ...FormEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.formFields[formID] = append(m.formFields[formID], fields...)
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		e.FormID = formID
		m.formEntries[formID] = append(m.formEntries[formID], e)
	}
}

// HasAttendance reports whether personID is checked in to instanceID.
func (m *MockClient) HasAttendance(instanceID, personID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attendance[instanceID][personID]
}

// HasTag reports whether tagID is assigned to personID.
func (m *MockClient) HasTag(personID, tagID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tagged[tagID][personID]
}

// Contributions returns the recorded contributions.
func (m *MockClient) Contributions() []Contribution {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Contribution(nil), m.contributions...)
}

func (m *MockClient) GetPeople(_ context.Context, q PeopleQuery) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetPeople", q); err != nil {
		return nil, err
	}
	out := make([]Person, 0, len(m.personOrder))
	for _, id := range m.personOrder {
		p := *m.people[id]
		if !q.Details {
			p.Details = nil
		}
		out = append(out, p)
	}
	if q.Offset != nil && *q.Offset > 0 {
		if *q.Offset >= len(out) {
			out = out[:0]
		} else {
			out = out[*q.Offset:]
		}
	}
	if q.Limit != nil && *q.Limit >= 0 && *q.Limit < len(out) {
		out = out[:*q.Limit]
	}
	return marshal(out)
}

func (m *MockClient) GetPersonDetails(_ context.Context, personID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetPersonDetails", personID); err != nil {
		return nil, err
	}
	p, ok := m.people[personID]
	if !ok {
		return nil, notFound("get_person_details", "no person with id "+personID)
	}
	return marshal(p)
}

func (m *MockClient) AddPerson(_ context.Context, firstName, lastName, fieldsJSON string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AddPerson", firstName, lastName, fieldsJSON); err != nil {
		return nil, err
	}
	details, err := parseFields(fieldsJSON)
	if err != nil {
		return nil, rejected("add_person", err.Error())
	}
	p := &Person{ID: m.newID(), FirstName: firstName, LastName: lastName, Details: details}
	m.people[p.ID] = p
	m.personOrder = append(m.personOrder, p.ID)
	return marshal(p)
}

func (m *MockClient) UpdatePerson(_ context.Context, personID, fieldsJSON string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdatePerson", personID, fieldsJSON); err != nil {
		return nil, err
	}
	p, ok := m.people[personID]
	if !ok {
		return nil, notFound("update_person", "no person with id "+personID)
	}
	details, err := parseFields(fieldsJSON)
	if err != nil {
		return nil, rejected("update_person", err.Error())
	}
	if p.Details == nil && len(details) > 0 {
		p.Details = map[string]any{}
	}
	for k, v := range details {
		p.Details[k] = v
	}
	return marshal(p)
}

// parseFields accepts Breeze's fields_json array of
// {"field_id","field_type","response"} objects, or a plain object.
func parseFields(fieldsJSON string) (map[string]any, error) {
	if fieldsJSON == "" {
		return nil, nil
	}
	var list []struct {
		FieldID  string `json:"field_id"`
		Response any    `json:"response"`
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &list); err == nil {
		out := make(map[string]any, len(list))
		for _, f := range list {
			if f.FieldID == "" {
				return nil, errors.New("fields_json entry without field_id")
			}
			out[f.FieldID] = f.Response
		}
		return out, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(fieldsJSON), &obj); err != nil {
		return nil, errors.New("fields_json is not valid JSON")
	}
	return obj, nil
}

func (m *MockClient) GetProfileFields(_ context.Context) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetProfileFields"); err != nil {
		return nil, err
	}
	out := m.profileFields
	if out == nil {
		out = []ProfileField{}
	}
	return marshal(out)
}

func (m *MockClient) GetEvents(_ context.Context, startDate, endDate string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetEvents", startDate, endDate); err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(m.events))
	for _, e := range m.events {
		if startDate != "" && e.StartDate < startDate {
			continue
		}
		if endDate != "" && e.StartDate > endDate {
			continue
		}
		out = append(out, e)
	}
	return marshal(out)
}

func (m *MockClient) AddEvent(_ context.Context, in EventInput) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AddEvent", in); err != nil {
		return nil, err
	}
	if in.Name == "" || in.StartDate == "" {
		return nil, rejected("add_event", "name and starts_on are required")
	}
	e := Event{
		ID:         m.newID(),
		Name:       in.Name,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		EventID:    in.EventID,
		CategoryID: in.CategoryID,
		AllDay:     in.AllDay != nil && *in.AllDay,
	}
	m.events = append(m.events, e)
	return marshal(e)
}

func (m *MockClient) EventCheckIn(_ context.Context, personID, instanceID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("EventCheckIn", personID, instanceID); err != nil {
		return nil, err
	}
	if m.attendance[instanceID] == nil {
		m.attendance[instanceID] = map[string]bool{}
	}
	m.attendance[instanceID][personID] = true
	return trueJSON, nil
}

func (m *MockClient) EventCheckOut(_ context.Context, personID, instanceID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("EventCheckOut", personID, instanceID); err != nil {
		if IsRejected(err) {
			return false, nil
		}
		return false, err
	}
	if !m.attendance[instanceID][personID] {
		return false, nil
	}
	delete(m.attendance[instanceID], personID)
	return true, nil
}

// AddContribution rejects a contribution whose fund splits do not add up to
// its amount, the same way Breeze does.
func (m *MockClient) AddContribution(_ context.Context, in ContributionInput) (string, error) {
	const op = "add_contribution"
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AddContribution", in); err != nil {
		return "", err
	}
	funds, err := in.Funds()
	if err != nil {
		return "", rejected(op, "funds_json is not valid JSON")
	}
	var sum int64
	for _, f := range funds {
		sum += f.Amount.Cents()
	}
	total := sum
	if in.Amount != nil {
		total = in.Amount.Cents()
		if len(funds) > 0 && sum != total {
			return "", rejected(op, fmt.Sprintf("fund amounts total %.2f but amount is %.2f",
				float64(sum)/100, float64(total)/100))
		}
	}
	c := Contribution{
		ID:       uuid.NewString(),
		PersonID: in.PersonID,
		Date:     in.Date,
		Amount:   Amount(float64(total) / 100),
		Method:   in.Method,
		Batch:    in.BatchNumber,
		Funds:    funds,
	}
	m.contributions = append(m.contributions, c)
	return c.ID, nil
}

func (m *MockClient) ListContributions(_ context.Context, q ContributionQuery) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListContributions", q); err != nil {
		return nil, err
	}
	people := map[string]bool{}
	if q.PersonID != "" {
		people[q.PersonID] = true
		if fam, ok := m.families[q.PersonID]; ok && q.IncludeFamily {
			for pid, f := range m.families {
				if f == fam {
					people[pid] = true
				}
			}
		}
	}
	out := make([]Contribution, 0, len(m.contributions))
	for _, c := range m.contributions {
		switch {
		case q.StartDate != "" && c.Date < q.StartDate,
			q.EndDate != "" && c.Date > q.EndDate,
			q.PersonID != "" && !people[c.PersonID],
			q.AmountMin != nil && c.Amount.Cents() < toCents(*q.AmountMin),
			q.AmountMax != nil && c.Amount.Cents() > toCents(*q.AmountMax),
			len(q.MethodIDs) > 0 && !contains(q.MethodIDs, c.Method),
			len(q.Batches) > 0 && !contains(q.Batches, c.Batch),
			len(q.FundIDs) > 0 && !anyFund(q.FundIDs, c.Funds):
			continue
		}
		out = append(out, c)
	}
	return marshal(out)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func anyFund(ids []string, funds []FundSplit) bool {
	for _, f := range funds {
		if contains(ids, f.ID) {
			return true
		}
	}
	return false
}

func (m *MockClient) ListCampaigns(_ context.Context) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListCampaigns"); err != nil {
		return nil, err
	}
	out := append([]Campaign{}, m.campaigns...)
	return marshal(out)
}

func (m *MockClient) ListPledges(_ context.Context, campaignID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListPledges", campaignID); err != nil {
		return nil, err
	}
	out := []Pledge{}
	for _, p := range m.pledges {
		if p.CampaignID == campaignID {
			out = append(out, p)
		}
	}
	return marshal(out)
}

func (m *MockClient) GetTags(_ context.Context, folderID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetTags", folderID); err != nil {
		return nil, err
	}
	out := []Tag{}
	for _, t := range m.tags {
		if folderID == "" || t.FolderID == folderID {
			out = append(out, t)
		}
	}
	return marshal(out)
}

func (m *MockClient) GetTagFolders(_ context.Context) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetTagFolders"); err != nil {
		return nil, err
	}
	return marshal(append([]TagFolder{}, m.folders...))
}

func (m *MockClient) hasTagID(tagID string) bool {
	for _, t := range m.tags {
		if t.ID == tagID {
			return true
		}
	}
	return false
}

func (m *MockClient) AssignTag(_ context.Context, personID, tagID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AssignTag", personID, tagID); err != nil {
		return nil, err
	}
	if !m.hasTagID(tagID) {
		return nil, rejected("assign_tag", "unknown tag "+tagID)
	}
	if m.tagged[tagID] == nil {
		m.tagged[tagID] = map[string]bool{}
	}
	m.tagged[tagID][personID] = true
	return trueJSON, nil
}

func (m *MockClient) UnassignTag(_ context.Context, personID, tagID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UnassignTag", personID, tagID); err != nil {
		return nil, err
	}
	if !m.hasTagID(tagID) {
		return nil, rejected("unassign_tag", "unknown tag "+tagID)
	}
	delete(m.tagged[tagID], personID)
	return trueJSON, nil
}

func (m *MockClient) ListFormFields(_ context.Context, formID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListFormFields", formID); err != nil {
		return nil, err
	}
	return marshal(append([]FormField{}, m.formFields[formID]...))
}

func (m *MockClient) ListFormEntries(_ context.Context, formID string, details bool) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListFormEntries", formID, details); err != nil {
		return nil, err
	}
	out := make([]FormEntry, 0, len(m.formEntries[formID]))
	for _, e := range m.formEntries[formID] {
		if !details {
			e.Response = nil
		}
		out = append(out, e)
	}
	return marshal(out)
}

func (m *MockClient) RemoveFormEntry(_ context.Context, entryID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RemoveFormEntry", entryID); err != nil {
		return nil, err
	}
	for formID, entries := range m.formEntries {
		for i, e := range entries {
			if e.ID == entryID {
				m.formEntries[formID] = append(entries[:i:i], entries[i+1:]...)
				return trueJSON, nil
			}
		}
	}
	return nil, rejected("remove_form_entry", "no entry with id "+entryID)
}

func (m *MockClient) volunteerList(instanceID string) []Volunteer {
	assigned := m.volunteers[instanceID]
	ids := make([]string, 0, len(assigned))
	for id := range assigned {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Volunteer, 0, len(ids))
	for _, id := range ids {
		out = append(out, Volunteer{PersonID: id, RoleIDs: append([]string{}, assigned[id]...)})
	}
	return out
}

func (m *MockClient) ListVolunteers(_ context.Context, instanceID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListVolunteers", instanceID); err != nil {
		return nil, err
	}
	return marshal(m.volunteerList(instanceID))
}

func (m *MockClient) AddVolunteer(_ context.Context, instanceID, personID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AddVolunteer", instanceID, personID); err != nil {
		return nil, err
	}
	if m.volunteers[instanceID] == nil {
		m.volunteers[instanceID] = map[string][]string{}
	}
	if _, ok := m.volunteers[instanceID][personID]; !ok {
		m.volunteers[instanceID][personID] = []string{}
	}
	return marshal(Volunteer{PersonID: personID, RoleIDs: m.volunteers[instanceID][personID]})
}

func (m *MockClient) RemoveVolunteer(_ context.Context, instanceID, personID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RemoveVolunteer", instanceID, personID); err != nil {
		return nil, err
	}
	if _, ok := m.volunteers[instanceID][personID]; !ok {
		return nil, rejected("remove_volunteer", "person "+personID+" is not volunteering")
	}
	delete(m.volunteers[instanceID], personID)
	return trueJSON, nil
}

func (m *MockClient) UpdateVolunteer(_ context.Context, instanceID, personID, roleIDsJSON string) (json.RawMessage, error) {
	const op = "update_volunteer"
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateVolunteer", instanceID, personID, roleIDsJSON); err != nil {
		return nil, err
	}
	if _, ok := m.volunteers[instanceID][personID]; !ok {
		return nil, rejected(op, "person "+personID+" is not volunteering")
	}
	var raw []json.Number
	if err := json.Unmarshal([]byte(roleIDsJSON), &raw); err != nil {
		var strs []string
		if err := json.Unmarshal([]byte(roleIDsJSON), &strs); err != nil {
			return nil, rejected(op, "role_ids_json must be a JSON array of role ids")
		}
		for _, s := range strs {
			raw = append(raw, json.Number(s))
		}
	}
	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		id := r.String()
		if m.roleIndex(instanceID, id) < 0 {
			return nil, rejected(op, "unknown role "+id)
		}
		ids = append(ids, id)
	}
	m.volunteers[instanceID][personID] = ids
	return marshal(Volunteer{PersonID: personID, RoleIDs: ids})
}

func (m *MockClient) roleIndex(instanceID, roleID string) int {
	for i, r := range m.roles[instanceID] {
		if r.ID == roleID {
			return i
		}
	}
	return -1
}

func (m *MockClient) ListVolunteerRoles(_ context.Context, instanceID string, showQuantity bool) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListVolunteerRoles", instanceID, showQuantity); err != nil {
		return nil, err
	}
	out := make([]VolunteerRole, 0, len(m.roles[instanceID]))
	for _, r := range m.roles[instanceID] {
		if !showQuantity {
			r.Quantity = nil
		}
		out = append(out, r)
	}
	return marshal(out)
}

func (m *MockClient) AddVolunteerRole(_ context.Context, instanceID, name string, quantity int) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AddVolunteerRole", instanceID, name, quantity); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, rejected("add_volunteer_role", "role name is required")
	}
	q := quantity
	r := VolunteerRole{ID: m.newID(), Name: name, Quantity: &q}
	m.roles[instanceID] = append(m.roles[instanceID], r)
	return marshal(r)
}

func (m *MockClient) RemoveVolunteerRole(_ context.Context, instanceID, roleID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RemoveVolunteerRole", instanceID, roleID); err != nil {
		return nil, err
	}
	i := m.roleIndex(instanceID, roleID)
	if i < 0 {
		return nil, rejected("remove_volunteer_role", "unknown role "+roleID)
	}
	roles := m.roles[instanceID]
	m.roles[instanceID] = append(roles[:i:i], roles[i+1:]...)
	for pid, ids := range m.volunteers[instanceID] {
		kept := ids[:0:0]
		for _, id := range ids {
			if id != roleID {
				kept = append(kept, id)
			}
		}
		m.volunteers[instanceID][pid] = kept
	}
	return trueJSON, nil
}

func (m *MockClient) requirePeople(op string, ids []string) error {
	if len(ids) == 0 {
		return rejected(op, "people_ids_json must name at least one person")
	}
	for _, id := range ids {
		if _, ok := m.people[id]; !ok {
			return rejected(op, "no person with id "+id)
		}
	}
	return nil
}

func (m *MockClient) familyOf(familyID string) []FamilyMember {
	out := []FamilyMember{}
	for _, id := range m.personOrder {
		if m.families[id] == familyID {
			out = append(out, FamilyMember{PersonID: id, FamilyID: familyID})
		}
	}
	return out
}

func (m *MockClient) CreateFamily(_ context.Context, peopleIDs []string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateFamily", peopleIDs); err != nil {
		return nil, err
	}
	if err := m.requirePeople("create_family", peopleIDs); err != nil {
		return nil, err
	}
	fid := m.newID()
	for _, id := range peopleIDs {
		m.families[id] = fid
	}
	return marshal(m.familyOf(fid))
}

func (m *MockClient) AddToFamily(_ context.Context, peopleIDs []string, targetPersonID string) (json.RawMessage, error) {
	const op = "add_to_family"
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AddToFamily", peopleIDs, targetPersonID); err != nil {
		return nil, err
	}
	if err := m.requirePeople(op, append([]string{targetPersonID}, peopleIDs...)); err != nil {
		return nil, err
	}
	fid, ok := m.families[targetPersonID]
	if !ok {
		fid = m.newID()
		m.families[targetPersonID] = fid
	}
	for _, id := range peopleIDs {
		m.families[id] = fid
	}
	return marshal(m.familyOf(fid))
}

func (m *MockClient) DestroyFamily(_ context.Context, peopleIDs []string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DestroyFamily", peopleIDs); err != nil {
		return nil, err
	}
	if err := m.requirePeople("destroy_family", peopleIDs); err != nil {
		return nil, err
	}
	doomed := map[string]bool{}
	for _, id := range peopleIDs {
		if fid, ok := m.families[id]; ok {
			doomed[fid] = true
		}
	}
	for pid, fid := range m.families {
		if doomed[fid] {
			delete(m.families, pid)
		}
	}
	return trueJSON, nil
}

func (m *MockClient) RemoveFromFamily(_ context.Context, peopleIDs []string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RemoveFromFamily", peopleIDs); err != nil {
		return nil, err
	}
	if err := m.requirePeople("remove_from_family", peopleIDs); err != nil {
		return nil, err
	}
	for _, id := range peopleIDs {
		delete(m.families, id)
	}
	return trueJSON, nil
}

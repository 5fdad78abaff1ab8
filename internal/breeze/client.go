// Package breeze is the Breeze ChMS client used by the HTTP facade.
//
// Client is the capability set. HTTPClient talks to a real Breeze account;
// MockClient keeps everything in memory for tests.
package breeze

import (
	"context"
	"encoding/json"
)

// Client is one method per Breeze capability. Results that the facade relays
// verbatim are returned as raw JSON.
type Client interface {
	PeopleClient
	EventsClient
	GivingClient
	TagsClient
	FormsClient
	VolunteersClient
	FamiliesClient
}

// PeopleClient covers people records and the profile field schema.
type PeopleClient interface {
	GetPeople(ctx context.Context, q PeopleQuery) (json.RawMessage, error)
	GetPersonDetails(ctx context.Context, personID string) (json.RawMessage, error)
	AddPerson(ctx context.Context, firstName, lastName, fieldsJSON string) (json.RawMessage, error)
	UpdatePerson(ctx context.Context, personID, fieldsJSON string) (json.RawMessage, error)
	GetProfileFields(ctx context.Context) (json.RawMessage, error)
}

// EventsClient covers calendar events and attendance.
type EventsClient interface {
	GetEvents(ctx context.Context, startDate, endDate string) (json.RawMessage, error)
	AddEvent(ctx context.Context, in EventInput) (json.RawMessage, error)
	EventCheckIn(ctx context.Context, personID, instanceID string) (json.RawMessage, error)
	// EventCheckOut reports a rejected check-out as false rather than an
	// error. Only transport failures are returned as errors.
	EventCheckOut(ctx context.Context, personID, instanceID string) (bool, error)
}

// GivingClient covers contributions, campaigns and pledges.
type GivingClient interface {
	AddContribution(ctx context.Context, in ContributionInput) (string, error)
	ListContributions(ctx context.Context, q ContributionQuery) (json.RawMessage, error)
	ListCampaigns(ctx context.Context) (json.RawMessage, error)
	ListPledges(ctx context.Context, campaignID string) (json.RawMessage, error)
}

// TagsClient covers tags, tag folders and tag assignment.
type TagsClient interface {
	GetTags(ctx context.Context, folderID string) (json.RawMessage, error)
	GetTagFolders(ctx context.Context) (json.RawMessage, error)
	AssignTag(ctx context.Context, personID, tagID string) (json.RawMessage, error)
	UnassignTag(ctx context.Context, personID, tagID string) (json.RawMessage, error)
}

// FormsClient covers form schemas and submitted entries.
type FormsClient interface {
	ListFormFields(ctx context.Context, formID string) (json.RawMessage, error)
	ListFormEntries(ctx context.Context, formID string, details bool) (json.RawMessage, error)
	RemoveFormEntry(ctx context.Context, entryID string) (json.RawMessage, error)
}

// VolunteersClient covers volunteer assignments and roles for an event instance.
type VolunteersClient interface {
	ListVolunteers(ctx context.Context, instanceID string) (json.RawMessage, error)
	AddVolunteer(ctx context.Context, instanceID, personID string) (json.RawMessage, error)
	RemoveVolunteer(ctx context.Context, instanceID, personID string) (json.RawMessage, error)
	UpdateVolunteer(ctx context.Context, instanceID, personID, roleIDsJSON string) (json.RawMessage, error)
	ListVolunteerRoles(ctx context.Context, instanceID string, showQuantity bool) (json.RawMessage, error)
	AddVolunteerRole(ctx context.Context, instanceID, name string, quantity int) (json.RawMessage, error)
	RemoveVolunteerRole(ctx context.Context, instanceID, roleID string) (json.RawMessage, error)
}

// FamiliesClient links people into families.
type FamiliesClient interface {
	CreateFamily(ctx context.Context, peopleIDs []string) (json.RawMessage, error)
	AddToFamily(ctx context.Context, peopleIDs []string, targetPersonID string) (json.RawMessage, error)
	DestroyFamily(ctx context.Context, peopleIDs []string) (json.RawMessage, error)
	RemoveFromFamily(ctx context.Context, peopleIDs []string) (json.RawMessage, error)
}

// PeopleQuery selects a page of people. Nil Limit means all people.
type PeopleQuery struct {
	Limit   *int
	Offset  *int
	Details bool
}

// EventInput describes a new calendar event. StartDate and EndDate are
// Breeze timestamps (epoch seconds) passed through untouched.
type EventInput struct {
	Name        string
	StartDate   string
	EndDate     string
	AllDay      *bool
	Description string
	CategoryID  string
	EventID     string
}

// ContributionInput is the body of an add-contribution call. FundsJSON is a
// JSON array of FundSplit and Amount must equal the sum of its amounts;
// Breeze enforces that, not this package.
type ContributionInput struct {
	Date        string  `json:"date,omitempty"`
	Name        string  `json:"name,omitempty"`
	PersonID    string  `json:"person_id,omitempty"`
	UID         string  `json:"uid,omitempty"`
	Processor   string  `json:"processor,omitempty"`
	Method      string  `json:"method,omitempty"`
	FundsJSON   string  `json:"funds_json,omitempty"`
	Amount      *Amount `json:"amount,omitempty"`
	Group       string  `json:"group,omitempty"`
	BatchNumber string  `json:"batch_number,omitempty"`
	BatchName   string  `json:"batch_name,omitempty"`
}

// Funds decodes FundsJSON. An empty string yields no splits.
func (c ContributionInput) Funds() ([]FundSplit, error) {
	if c.FundsJSON == "" {
		return nil, nil
	}
	var funds []FundSplit
	if err := json.Unmarshal([]byte(c.FundsJSON), &funds); err != nil {
		return nil, err
	}
	return funds, nil
}

// ContributionQuery filters a contribution listing. StartDate and EndDate
// are YYYY-MM-DD and required by Breeze.
type ContributionQuery struct {
	StartDate      string
	EndDate        string
	PersonID       string
	IncludeFamily  bool
	AmountMin      *float64
	AmountMax      *float64
	MethodIDs      []string
	FundIDs        []string
	EnvelopeNumber string
	Batches        []string
	Forms          []string
}

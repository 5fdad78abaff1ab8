package breeze

import (
	"bytes"
	"fmt"
	"strconv"
)

// Person is the identity record Breeze returns for people listings.
type Person struct {
	ID           string         `json:"id"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	EmailAddress string         `json:"email_address,omitempty"`
	Path         string         `json:"path,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// ProfileField is one entry of the account's profile schema.
type ProfileField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Event is a calendar occurrence. Dates are Breeze timestamp strings.
type Event struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	StartDate  string `json:"start_datetime"`
	EndDate    string `json:"end_datetime,omitempty"`
	EventID    string `json:"event_id,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	AllDay     bool   `json:"is_all_day,omitempty"`
}

// FundSplit is one element of a contribution's funds_json.
type FundSplit struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Amount Amount `json:"amount"`
}

// Amount accepts both JSON numbers and numeric strings ("100.00").
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("amount %q: %w", b, err)
	}
	*a = Amount(f)
	return nil
}

// Float64 returns the amount as a float.
func (a Amount) Float64() float64 { return float64(a) }

// Cents rounds the amount to whole cents.
func (a Amount) Cents() int64 {
	return toCents(float64(a))
}

// Contribution is a recorded gift as returned by a giving listing.
type Contribution struct {
	ID       string      `json:"id"`
	PersonID string      `json:"person_id,omitempty"`
	Date     string      `json:"paid_on"`
	Amount   Amount      `json:"amount"`
	Method   string      `json:"method,omitempty"`
	Batch    string      `json:"batch_number,omitempty"`
	Funds    []FundSplit `json:"funds,omitempty"`
}

// FamilyMember is one person's place in a family.
type FamilyMember struct {
	PersonID string `json:"person_id"`
	FamilyID string `json:"family_id"`
}

// Campaign is a pledge campaign.
type Campaign struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// Pledge is a person's commitment within a campaign.
type Pledge struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`
	PersonID   string `json:"person_id"`
	Amount     string `json:"amount"`
}

// Tag labels people. FolderID groups tags.
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedOn string `json:"created_on,omitempty"`
	FolderID  string `json:"folder_id,omitempty"`
}

// TagFolder groups tags.
type TagFolder struct {
	ID        string `json:"id"`
	ParentID  string `json:"parent_id"`
	Name      string `json:"name"`
	CreatedOn string `json:"created_on,omitempty"`
}

// FormField is one field in a form schema.
type FormField struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// FormEntry is a submitted form response keyed by field id.
type FormEntry struct {
	ID        string         `json:"id"`
	FormID    string         `json:"form_id"`
	CreatedOn string         `json:"created_on,omitempty"`
	PersonID  *string        `json:"person_id"`
	Response  map[string]any `json:"response,omitempty"`
}

// VolunteerRole is a named role within an event instance.
type VolunteerRole struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Quantity *int   `json:"quantity,omitempty"`
}

// Volunteer assigns a person to zero or more roles of an event instance.
type Volunteer struct {
	PersonID string   `json:"person_id"`
	RoleIDs  []string `json:"role_ids"`
}

func toCents(f float64) int64 {
	if f < 0 {
		return int64(f*100 - 0.5)
	}
	return int64(f*100 + 0.5)
}

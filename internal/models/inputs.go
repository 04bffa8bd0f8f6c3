package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ContactInput carries the writable fields of a contact. A nil LeadScore asks
// the store to compute the score from the other attributes.
type ContactInput struct {
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone,omitempty"`
	Mobile        string        `json:"mobile,omitempty"`
	Title         string        `json:"title,omitempty"`
	Department    string        `json:"department,omitempty"`
	CompanyID     *int64        `json:"company_id,omitempty"`
	LinkedinURL   string        `json:"linkedin_url,omitempty"`
	TwitterHandle string        `json:"twitter_handle,omitempty"`
	Street        string        `json:"street,omitempty"`
	City          string        `json:"city,omitempty"`
	State         string        `json:"state,omitempty"`
	Country       string        `json:"country,omitempty"`
	PostalCode    string        `json:"postal_code,omitempty"`
	Status        ContactStatus `json:"status,omitempty"`
	LeadSource    string        `json:"lead_source,omitempty"`
	LeadScore     *int          `json:"lead_score,omitempty"`
	Tags          string        `json:"tags,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// Validate fills defaults and rejects out-of-range fields.
func (in *ContactInput) Validate() error {
	if in.Status == "" {
		in.Status = ContactLead
	}
	if err := checkLen("first_name", in.FirstName, 1, 100); err != nil {
		return err
	}
	if err := checkLen("last_name", in.LastName, 1, 100); err != nil {
		return err
	}
	if !emailPattern.MatchString(in.Email) {
		return apperr.Validation("invalid email %q", in.Email)
	}
	if len(in.Phone) > 50 || len(in.Mobile) > 50 {
		return apperr.Validation("phone numbers are limited to 50 characters")
	}
	if len(in.Title) > 100 || len(in.Department) > 100 {
		return apperr.Validation("title and department are limited to 100 characters")
	}
	if !in.Status.Valid() {
		return apperr.Validation("invalid contact status %q", in.Status)
	}
	if in.LeadScore != nil && (*in.LeadScore < 0 || *in.LeadScore > 100) {
		return apperr.Validation("lead_score must be between 0 and 100")
	}
	return nil
}

// CompanyInput carries the writable fields of a company.
type CompanyInput struct {
	Name          string      `json:"name"`
	Website       string      `json:"website,omitempty"`
	Industry      string      `json:"industry,omitempty"`
	CompanySize   string      `json:"company_size,omitempty"`
	AnnualRevenue *float64    `json:"annual_revenue,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Email         string      `json:"email,omitempty"`
	Street        string      `json:"street,omitempty"`
	City          string      `json:"city,omitempty"`
	State         string      `json:"state,omitempty"`
	Country       string      `json:"country,omitempty"`
	PostalCode    string      `json:"postal_code,omitempty"`
	CompanyType   CompanyType `json:"company_type,omitempty"`
	Priority      Priority    `json:"priority,omitempty"`
	Description   string      `json:"description,omitempty"`
}

func (in *CompanyInput) Validate() error {
	if in.CompanyType == "" {
		in.CompanyType = CompanyProspect
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if err := checkLen("name", in.Name, 1, 255); err != nil {
		return err
	}
	if in.CompanySize != "" && !companySizes[in.CompanySize] {
		return apperr.Validation("invalid company_size %q", in.CompanySize)
	}
	if in.AnnualRevenue != nil && *in.AnnualRevenue < 0 {
		return apperr.Validation("annual_revenue must not be negative")
	}
	if !in.CompanyType.Valid() {
		return apperr.Validation("invalid company_type %q", in.CompanyType)
	}
	if !in.Priority.Valid() {
		return apperr.Validation("invalid priority %q", in.Priority)
	}
	return nil
}

// DealInput carries the writable fields of a deal. A nil Probability defaults to 10.
type DealInput struct {
	Title             string     `json:"title"`
	Value             float64    `json:"value"`
	Stage             DealStage  `json:"stage,omitempty"`
	Status            DealStatus `json:"status,omitempty"`
	Probability       *int       `json:"probability,omitempty"`
	ExpectedCloseDate *Date      `json:"expected_close_date,omitempty"`
	ActualCloseDate   *Date      `json:"actual_close_date,omitempty"`
	ContactID         *int64     `json:"contact_id,omitempty"`
	CompanyID         *int64     `json:"company_id,omitempty"`
	Description       string     `json:"description,omitempty"`
}

func (in *DealInput) Validate() error {
	if in.Stage == "" {
		in.Stage = StageQualification
	}
	if in.Status == "" {
		in.Status = DealOpen
	}
	if in.Probability == nil {
		p := 10
		in.Probability = &p
	}
	if err := checkLen("title", in.Title, 1, 255); err != nil {
		return err
	}
	if in.Value < 0 {
		return apperr.Validation("value must not be negative")
	}
	if !in.Stage.Valid() {
		return apperr.Validation("invalid stage %q", in.Stage)
	}
	if !in.Status.Valid() {
		return apperr.Validation("invalid deal status %q", in.Status)
	}
	if *in.Probability < 0 || *in.Probability > 100 {
		return apperr.Validation("probability must be between 0 and 100")
	}
	return nil
}

// ActivityInput carries the writable fields of an activity.
type ActivityInput struct {
	ActivityType    ActivityType   `json:"activity_type"`
	Subject         string         `json:"subject"`
	Description     string         `json:"description,omitempty"`
	ActivityDate    time.Time      `json:"activity_date"`
	DurationMinutes *int           `json:"duration_minutes,omitempty"`
	ContactID       *int64         `json:"contact_id,omitempty"`
	CompanyID       *int64         `json:"company_id,omitempty"`
	DealID          *int64         `json:"deal_id,omitempty"`
	Status          ActivityStatus `json:"status,omitempty"`
	Priority        Priority       `json:"priority,omitempty"`
}

func (in *ActivityInput) Validate() error {
	if in.Status == "" {
		in.Status = ActivityPending
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.ActivityType.Valid() {
		return apperr.Validation("invalid activity_type %q", in.ActivityType)
	}
	if err := checkLen("subject", in.Subject, 1, 255); err != nil {
		return err
	}
	if in.ActivityDate.IsZero() {
		return apperr.Validation("activity_date is required")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 0 {
		return apperr.Validation("duration_minutes must not be negative")
	}
	if !in.Status.Valid() {
		return apperr.Validation("invalid activity status %q", in.Status)
	}
	if !in.Priority.Valid() {
		return apperr.Validation("invalid priority %q", in.Priority)
	}
	return nil
}

// NoteInput carries the writable fields of a note.
type NoteInput struct {
	Content   string `json:"content"`
	ContactID *int64 `json:"contact_id,omitempty"`
	CompanyID *int64 `json:"company_id,omitempty"`
	DealID    *int64 `json:"deal_id,omitempty"`
}

func (in *NoteInput) Validate() error {
	if strings.TrimSpace(in.Content) == "" {
		return apperr.Validation("content is required")
	}
	return nil
}

func checkLen(field, v string, lo, hi int) error {
	n := len([]rune(v))
	if n < lo || n > hi {
		return apperr.Validation("%s must be %d-%d characters", field, lo, hi)
	}
	return nil
}

// Input returns the writable fields of c, for read-modify-write updates.
// LeadScore is left nil; UpdateContact keeps a caller-set score and
// recomputes a computed one unless the caller supplies a new value.
func (c Contact) Input() ContactInput {
	return ContactInput{
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		Phone:         c.Phone,
		Mobile:        c.Mobile,
		Title:         c.Title,
		Department:    c.Department,
		CompanyID:     c.CompanyID,
		LinkedinURL:   c.LinkedinURL,
		TwitterHandle: c.TwitterHandle,
		Street:        c.Street,
		City:          c.City,
		State:         c.State,
		Country:       c.Country,
		PostalCode:    c.PostalCode,
		Status:        c.Status,
		LeadSource:    c.LeadSource,
		Tags:          c.Tags,
		Notes:         c.Notes,
	}
}

func (c Company) Input() CompanyInput {
	return CompanyInput{
		Name:          c.Name,
		Website:       c.Website,
		Industry:      c.Industry,
		CompanySize:   c.CompanySize,
		AnnualRevenue: c.AnnualRevenue,
		Phone:         c.Phone,
		Email:         c.Email,
		Street:        c.Street,
		City:          c.City,
		State:         c.State,
		Country:       c.Country,
		PostalCode:    c.PostalCode,
		CompanyType:   c.CompanyType,
		Priority:      c.Priority,
		Description:   c.Description,
	}
}

func (d Deal) Input() DealInput {
	p := d.Probability
	return DealInput{
		Title:             d.Title,
		Value:             d.Value,
		Stage:             d.Stage,
		Status:            d.Status,
		Probability:       &p,
		ExpectedCloseDate: d.ExpectedCloseDate,
		ActualCloseDate:   d.ActualCloseDate,
		ContactID:         d.ContactID,
		CompanyID:         d.CompanyID,
		Description:       d.Description,
	}
}

func (a Activity) Input() ActivityInput {
	return ActivityInput{
		ActivityType:    a.ActivityType,
		Subject:         a.Subject,
		Description:     a.Description,
		ActivityDate:    a.ActivityDate,
		DurationMinutes: a.DurationMinutes,
		ContactID:       a.ContactID,
		CompanyID:       a.CompanyID,
		DealID:          a.DealID,
		Status:          a.Status,
		Priority:        a.Priority,
	}
}

package tools

import (
	"time"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/models"
)

// Field sets for create and update tools. Every field is optional on the
// wire: create starts from an empty input, update from the stored record, and
// only the fields present in the call are overlaid. For links, 0 clears the
// reference; for dates, "" clears the date.

type ContactFields struct {
	FirstName     *string `json:"first_name,omitempty" jsonschema:"First name (required on create)"`
	LastName      *string `json:"last_name,omitempty" jsonschema:"Last name (required on create)"`
	Email         *string `json:"email,omitempty" jsonschema:"Email address, unique per tenant (required on create)"`
	Phone         *string `json:"phone,omitempty" jsonschema:"Phone number"`
	Mobile        *string `json:"mobile,omitempty" jsonschema:"Mobile number"`
	Title         *string `json:"title,omitempty" jsonschema:"Job title"`
	Department    *string `json:"department,omitempty" jsonschema:"Department"`
	CompanyID     *int64  `json:"company_id,omitempty" jsonschema:"Company id; 0 clears the link"`
	LinkedinURL   *string `json:"linkedin_url,omitempty" jsonschema:"LinkedIn profile URL"`
	TwitterHandle *string `json:"twitter_handle,omitempty" jsonschema:"Twitter handle"`
	Street        *string `json:"street,omitempty" jsonschema:"Street address"`
	City          *string `json:"city,omitempty" jsonschema:"City"`
	State         *string `json:"state,omitempty" jsonschema:"State or region"`
	Country       *string `json:"country,omitempty" jsonschema:"Country"`
	PostalCode    *string `json:"postal_code,omitempty" jsonschema:"Postal code"`
	Status        *string `json:"status,omitempty" jsonschema:"lead, prospect, customer or partner"`
	LeadSource    *string `json:"lead_source,omitempty" jsonschema:"Where the lead came from (e.g. referral, website)"`
	LeadScore     *int    `json:"lead_score,omitempty" jsonschema:"Lead score 0-100; computed when omitted, and kept on later updates once supplied"`
	Tags          *string `json:"tags,omitempty" jsonschema:"Comma-separated tags"`
	Notes         *string `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

func (f ContactFields) apply(in *models.ContactInput) {
	setString(&in.FirstName, f.FirstName)
	setString(&in.LastName, f.LastName)
	setString(&in.Email, f.Email)
	setString(&in.Phone, f.Phone)
	setString(&in.Mobile, f.Mobile)
	setString(&in.Title, f.Title)
	setString(&in.Department, f.Department)
	setRef(&in.CompanyID, f.CompanyID)
	setString(&in.LinkedinURL, f.LinkedinURL)
	setString(&in.TwitterHandle, f.TwitterHandle)
	setString(&in.Street, f.Street)
	setString(&in.City, f.City)
	setString(&in.State, f.State)
	setString(&in.Country, f.Country)
	setString(&in.PostalCode, f.PostalCode)
	setEnum(&in.Status, f.Status)
	setString(&in.LeadSource, f.LeadSource)
	if f.LeadScore != nil {
		in.LeadScore = f.LeadScore
	}
	setString(&in.Tags, f.Tags)
	setString(&in.Notes, f.Notes)
}

type CompanyFields struct {
	Name          *string  `json:"name,omitempty" jsonschema:"Company name (required on create)"`
	Website       *string  `json:"website,omitempty" jsonschema:"Website URL"`
	Industry      *string  `json:"industry,omitempty" jsonschema:"Industry"`
	CompanySize   *string  `json:"company_size,omitempty" jsonschema:"One of 1-10, 11-50, 51-200, 201-500, 501-1000, 1000+"`
	AnnualRevenue *float64 `json:"annual_revenue,omitempty" jsonschema:"Annual revenue"`
	Phone         *string  `json:"phone,omitempty" jsonschema:"Phone number"`
	Email         *string  `json:"email,omitempty" jsonschema:"Contact email"`
	Street        *string  `json:"street,omitempty" jsonschema:"Street address"`
	City          *string  `json:"city,omitempty" jsonschema:"City"`
	State         *string  `json:"state,omitempty" jsonschema:"State or region"`
	Country       *string  `json:"country,omitempty" jsonschema:"Country"`
	PostalCode    *string  `json:"postal_code,omitempty" jsonschema:"Postal code"`
	CompanyType   *string  `json:"company_type,omitempty" jsonschema:"prospect, customer, partner or vendor"`
	Priority      *string  `json:"priority,omitempty" jsonschema:"low, medium, high or critical"`
	Description   *string  `json:"description,omitempty" jsonschema:"Description"`
}

func (f CompanyFields) apply(in *models.CompanyInput) {
	setString(&in.Name, f.Name)
	setString(&in.Website, f.Website)
	setString(&in.Industry, f.Industry)
	setString(&in.CompanySize, f.CompanySize)
	if f.AnnualRevenue != nil {
		in.AnnualRevenue = f.AnnualRevenue
	}
	setString(&in.Phone, f.Phone)
	setString(&in.Email, f.Email)
	setString(&in.Street, f.Street)
	setString(&in.City, f.City)
	setString(&in.State, f.State)
	setString(&in.Country, f.Country)
	setString(&in.PostalCode, f.PostalCode)
	setEnum(&in.CompanyType, f.CompanyType)
	setEnum(&in.Priority, f.Priority)
	setString(&in.Description, f.Description)
}

type DealFields struct {
	Title             *string  `json:"title,omitempty" jsonschema:"Deal title (required on create)"`
	Value             *float64 `json:"value,omitempty" jsonschema:"Deal value"`
	Stage             *string  `json:"stage,omitempty" jsonschema:"qualification, needs_analysis, proposal, negotiation, closed_won or closed_lost"`
	Status            *string  `json:"status,omitempty" jsonschema:"open, won or lost"`
	Probability       *int     `json:"probability,omitempty" jsonschema:"Win probability 0-100 (default 10)"`
	ExpectedCloseDate *string  `json:"expected_close_date,omitempty" jsonschema:"Expected close date (YYYY-MM-DD); empty clears it"`
	ActualCloseDate   *string  `json:"actual_close_date,omitempty" jsonschema:"Actual close date (YYYY-MM-DD); empty clears it"`
	ContactID         *int64   `json:"contact_id,omitempty" jsonschema:"Contact id; 0 clears the link"`
	CompanyID         *int64   `json:"company_id,omitempty" jsonschema:"Company id; 0 clears the link"`
	Description       *string  `json:"description,omitempty" jsonschema:"Description"`
}

func (f DealFields) apply(in *models.DealInput) error {
	setString(&in.Title, f.Title)
	if f.Value != nil {
		in.Value = *f.Value
	}
	setEnum(&in.Stage, f.Stage)
	setEnum(&in.Status, f.Status)
	if f.Probability != nil {
		in.Probability = f.Probability
	}
	if err := setDate(&in.ExpectedCloseDate, f.ExpectedCloseDate, "expected_close_date"); err != nil {
		return err
	}
	if err := setDate(&in.ActualCloseDate, f.ActualCloseDate, "actual_close_date"); err != nil {
		return err
	}
	setRef(&in.ContactID, f.ContactID)
	setRef(&in.CompanyID, f.CompanyID)
	setString(&in.Description, f.Description)
	return nil
}

type ActivityFields struct {
	ActivityType    *string `json:"activity_type,omitempty" jsonschema:"call, email, meeting, task or note (required on create)"`
	Subject         *string `json:"subject,omitempty" jsonschema:"Subject (required on create)"`
	Description     *string `json:"description,omitempty" jsonschema:"Description"`
	ActivityDate    *string `json:"activity_date,omitempty" jsonschema:"When it happens, RFC 3339 or YYYY-MM-DD (required on create)"`
	DurationMinutes *int    `json:"duration_minutes,omitempty" jsonschema:"Duration in minutes"`
	ContactID       *int64  `json:"contact_id,omitempty" jsonschema:"Contact id; 0 clears the link"`
	CompanyID       *int64  `json:"company_id,omitempty" jsonschema:"Company id; 0 clears the link"`
	DealID          *int64  `json:"deal_id,omitempty" jsonschema:"Deal id; 0 clears the link"`
	Status          *string `json:"status,omitempty" jsonschema:"pending, completed or cancelled"`
	Priority        *string `json:"priority,omitempty" jsonschema:"low, medium, high or critical"`
}

func (f ActivityFields) apply(in *models.ActivityInput) error {
	setEnum(&in.ActivityType, f.ActivityType)
	setString(&in.Subject, f.Subject)
	setString(&in.Description, f.Description)
	if f.ActivityDate != nil {
		t, err := parseTimestamp(*f.ActivityDate)
		if err != nil {
			return err
		}
		in.ActivityDate = t
	}
	if f.DurationMinutes != nil {
		in.DurationMinutes = f.DurationMinutes
	}
	setRef(&in.ContactID, f.ContactID)
	setRef(&in.CompanyID, f.CompanyID)
	setRef(&in.DealID, f.DealID)
	setEnum(&in.Status, f.Status)
	setEnum(&in.Priority, f.Priority)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setEnum[E ~string](dst *E, v *string) {
	if v != nil {
		*dst = E(*v)
	}
}

func setRef(dst **int64, v *int64) {
	switch {
	case v == nil:
	case *v == 0:
		*dst = nil
	default:
		id := *v
		*dst = &id
	}
}

func setDate(dst **models.Date, v *string, field string) error {
	switch {
	case v == nil:
	case *v == "":
		*dst = nil
	default:
		d, err := models.ParseDate(*v)
		if err != nil {
			return apperr.Validation("invalid %s %q", field, *v)
		}
		*dst = &d
	}
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid activity_date %q", s)
	}
	return d.Time, nil
}

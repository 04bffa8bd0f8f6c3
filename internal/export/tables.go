package export

import "github.com/wagnerlima/tenant-crm/internal/models"

func optInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func optInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func optFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func optString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func optDate(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

var Contacts = newTable("Contacts",
	[]string{"id", "first_name", "last_name", "email", "phone", "title", "company_id", "status", "lead_score"},
	field[models.ContactView]{"id", func(c models.ContactView) any { return c.ID }},
	field[models.ContactView]{"first_name", func(c models.ContactView) any { return c.FirstName }},
	field[models.ContactView]{"last_name", func(c models.ContactView) any { return c.LastName }},
	field[models.ContactView]{"full_name", func(c models.ContactView) any { return c.FullName }},
	field[models.ContactView]{"email", func(c models.ContactView) any { return c.Email }},
	field[models.ContactView]{"phone", func(c models.ContactView) any { return c.Phone }},
	field[models.ContactView]{"mobile", func(c models.ContactView) any { return c.Mobile }},
	field[models.ContactView]{"title", func(c models.ContactView) any { return c.Title }},
	field[models.ContactView]{"department", func(c models.ContactView) any { return c.Department }},
	field[models.ContactView]{"company_id", func(c models.ContactView) any { return optInt64(c.CompanyID) }},
	field[models.ContactView]{"company_name", func(c models.ContactView) any { return optString(c.CompanyName) }},
	field[models.ContactView]{"linkedin_url", func(c models.ContactView) any { return c.LinkedinURL }},
	field[models.ContactView]{"twitter_handle", func(c models.ContactView) any { return c.TwitterHandle }},
	field[models.ContactView]{"street", func(c models.ContactView) any { return c.Street }},
	field[models.ContactView]{"city", func(c models.ContactView) any { return c.City }},
	field[models.ContactView]{"state", func(c models.ContactView) any { return c.State }},
	field[models.ContactView]{"country", func(c models.ContactView) any { return c.Country }},
	field[models.ContactView]{"postal_code", func(c models.ContactView) any { return c.PostalCode }},
	field[models.ContactView]{"status", func(c models.ContactView) any { return string(c.Status) }},
	field[models.ContactView]{"lead_source", func(c models.ContactView) any { return c.LeadSource }},
	field[models.ContactView]{"lead_score", func(c models.ContactView) any { return c.LeadScore }},
	field[models.ContactView]{"score_band", func(c models.ContactView) any { return c.ScoreBand }},
	field[models.ContactView]{"tags", func(c models.ContactView) any { return c.Tags }},
	field[models.ContactView]{"notes", func(c models.ContactView) any { return c.Notes }},
	field[models.ContactView]{"created_at", func(c models.ContactView) any { return c.CreatedAt }},
	field[models.ContactView]{"updated_at", func(c models.ContactView) any { return c.UpdatedAt }},
)

var Companies = newTable("Companies",
	[]string{"id", "name", "industry", "company_type", "priority", "contact_count", "deal_count", "total_revenue"},
	field[models.CompanyView]{"id", func(c models.CompanyView) any { return c.ID }},
	field[models.CompanyView]{"name", func(c models.CompanyView) any { return c.Name }},
	field[models.CompanyView]{"website", func(c models.CompanyView) any { return c.Website }},
	field[models.CompanyView]{"industry", func(c models.CompanyView) any { return c.Industry }},
	field[models.CompanyView]{"company_size", func(c models.CompanyView) any { return c.CompanySize }},
	field[models.CompanyView]{"annual_revenue", func(c models.CompanyView) any { return optFloat(c.AnnualRevenue) }},
	field[models.CompanyView]{"phone", func(c models.CompanyView) any { return c.Phone }},
	field[models.CompanyView]{"email", func(c models.CompanyView) any { return c.Email }},
	field[models.CompanyView]{"city", func(c models.CompanyView) any { return c.City }},
	field[models.CompanyView]{"country", func(c models.CompanyView) any { return c.Country }},
	field[models.CompanyView]{"company_type", func(c models.CompanyView) any { return string(c.CompanyType) }},
	field[models.CompanyView]{"priority", func(c models.CompanyView) any { return string(c.Priority) }},
	field[models.CompanyView]{"contact_count", func(c models.CompanyView) any { return c.ContactCount }},
	field[models.CompanyView]{"deal_count", func(c models.CompanyView) any { return c.DealCount }},
	field[models.CompanyView]{"total_revenue", func(c models.CompanyView) any { return c.TotalRevenue }},
	field[models.CompanyView]{"created_at", func(c models.CompanyView) any { return c.CreatedAt }},
	field[models.CompanyView]{"updated_at", func(c models.CompanyView) any { return c.UpdatedAt }},
)

var Deals = newTable("Deals",
	[]string{"id", "title", "value", "stage", "status", "probability", "weighted_value", "expected_close_date"},
	field[models.DealView]{"id", func(d models.DealView) any { return d.ID }},
	field[models.DealView]{"title", func(d models.DealView) any { return d.Title }},
	field[models.DealView]{"value", func(d models.DealView) any { return d.Value }},
	field[models.DealView]{"stage", func(d models.DealView) any { return string(d.Stage) }},
	field[models.DealView]{"stage_number", func(d models.DealView) any { return d.StageNumber }},
	field[models.DealView]{"status", func(d models.DealView) any { return string(d.Status) }},
	field[models.DealView]{"probability", func(d models.DealView) any { return d.Probability }},
	field[models.DealView]{"weighted_value", func(d models.DealView) any { return d.WeightedValue }},
	field[models.DealView]{"expected_close_date", func(d models.DealView) any { return optDate(d.ExpectedCloseDate) }},
	field[models.DealView]{"actual_close_date", func(d models.DealView) any { return optDate(d.ActualCloseDate) }},
	field[models.DealView]{"contact_id", func(d models.DealView) any { return optInt64(d.ContactID) }},
	field[models.DealView]{"contact_name", func(d models.DealView) any { return optString(d.ContactName) }},
	field[models.DealView]{"company_id", func(d models.DealView) any { return optInt64(d.CompanyID) }},
	field[models.DealView]{"company_name", func(d models.DealView) any { return optString(d.CompanyName) }},
	field[models.DealView]{"created_at", func(d models.DealView) any { return d.CreatedAt }},
	field[models.DealView]{"updated_at", func(d models.DealView) any { return d.UpdatedAt }},
)

var Activities = newTable("Activities",
	[]string{"id", "activity_type", "subject", "activity_date", "status", "priority"},
	field[models.ActivityView]{"id", func(a models.ActivityView) any { return a.ID }},
	field[models.ActivityView]{"activity_type", func(a models.ActivityView) any { return string(a.ActivityType) }},
	field[models.ActivityView]{"subject", func(a models.ActivityView) any { return a.Subject }},
	field[models.ActivityView]{"description", func(a models.ActivityView) any { return a.Description }},
	field[models.ActivityView]{"activity_date", func(a models.ActivityView) any { return a.ActivityDate }},
	field[models.ActivityView]{"duration_minutes", func(a models.ActivityView) any { return optInt(a.DurationMinutes) }},
	field[models.ActivityView]{"contact_name", func(a models.ActivityView) any { return optString(a.ContactName) }},
	field[models.ActivityView]{"company_name", func(a models.ActivityView) any { return optString(a.CompanyName) }},
	field[models.ActivityView]{"deal_title", func(a models.ActivityView) any { return optString(a.DealTitle) }},
	field[models.ActivityView]{"status", func(a models.ActivityView) any { return string(a.Status) }},
	field[models.ActivityView]{"priority", func(a models.ActivityView) any { return string(a.Priority) }},
	field[models.ActivityView]{"created_at", func(a models.ActivityView) any { return a.CreatedAt }},
)

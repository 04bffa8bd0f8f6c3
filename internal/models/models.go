package models

import "time"

// Contact is a person tracked in a tenant store. LeadScoreManual is set once a
// caller supplies the score; updates then keep it instead of recomputing.
type Contact struct {
	ID              int64         `json:"id"`
	FirstName       string        `json:"first_name"`
	LastName        string        `json:"last_name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone,omitempty"`
	Mobile          string        `json:"mobile,omitempty"`
	Title           string        `json:"title,omitempty"`
	Department      string        `json:"department,omitempty"`
	CompanyID       *int64        `json:"company_id"`
	LinkedinURL     string        `json:"linkedin_url,omitempty"`
	TwitterHandle   string        `json:"twitter_handle,omitempty"`
	Street          string        `json:"street,omitempty"`
	City            string        `json:"city,omitempty"`
	State           string        `json:"state,omitempty"`
	Country         string        `json:"country,omitempty"`
	PostalCode      string        `json:"postal_code,omitempty"`
	Status          ContactStatus `json:"status"`
	LeadSource      string        `json:"lead_source,omitempty"`
	LeadScore       int           `json:"lead_score"`
	LeadScoreManual bool          `json:"lead_score_manual"`
	Tags            string        `json:"tags,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// FullName joins first and last name.
func (c Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Company is an account that contacts and deals may reference.
type Company struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Website       string      `json:"website,omitempty"`
	Industry      string      `json:"industry,omitempty"`
	CompanySize   string      `json:"company_size,omitempty"`
	AnnualRevenue *float64    `json:"annual_revenue"`
	Phone         string      `json:"phone,omitempty"`
	Email         string      `json:"email,omitempty"`
	Street        string      `json:"street,omitempty"`
	City          string      `json:"city,omitempty"`
	State         string      `json:"state,omitempty"`
	Country       string      `json:"country,omitempty"`
	PostalCode    string      `json:"postal_code,omitempty"`
	CompanyType   CompanyType `json:"company_type"`
	Priority      Priority    `json:"priority"`
	Description   string      `json:"description,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Deal is a sales opportunity moving through the pipeline stages.
type Deal struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Value             float64    `json:"value"`
	Stage             DealStage  `json:"stage"`
	Status            DealStatus `json:"status"`
	Probability       int        `json:"probability"`
	ExpectedCloseDate *Date      `json:"expected_close_date"`
	ActualCloseDate   *Date      `json:"actual_close_date"`
	ContactID         *int64     `json:"contact_id"`
	CompanyID         *int64     `json:"company_id"`
	Description       string     `json:"description,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Activity is a call, email, meeting, task or note logged against other records.
type Activity struct {
	ID              int64          `json:"id"`
	ActivityType    ActivityType   `json:"activity_type"`
	Subject         string         `json:"subject"`
	Description     string         `json:"description,omitempty"`
	ActivityDate    time.Time      `json:"activity_date"`
	DurationMinutes *int           `json:"duration_minutes"`
	ContactID       *int64         `json:"contact_id"`
	CompanyID       *int64         `json:"company_id"`
	DealID          *int64         `json:"deal_id"`
	Status          ActivityStatus `json:"status"`
	Priority        Priority       `json:"priority"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Note is free text attached to a contact, company or deal.
type Note struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	ContactID *int64    `json:"contact_id"`
	CompanyID *int64    `json:"company_id"`
	DealID    *int64    `json:"deal_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactView is a contact plus its read-time computed fields.
type ContactView struct {
	Contact
	FullName    string  `json:"full_name"`
	ScoreBand   string  `json:"score_band"`
	CompanyName *string `json:"company_name"`
}

// CompanyView is a company plus reference counts and realized revenue.
type CompanyView struct {
	Company
	ContactCount int     `json:"contact_count"`
	DealCount    int     `json:"deal_count"`
	TotalRevenue float64 `json:"total_revenue"`
}

// DealView is a deal plus its weighted value, stage number and resolved names.
type DealView struct {
	Deal
	StageNumber   int     `json:"stage_number"`
	WeightedValue float64 `json:"weighted_value"`
	ContactName   *string `json:"contact_name"`
	CompanyName   *string `json:"company_name"`
}

// ActivityView is an activity plus the names of the records it links to.
type ActivityView struct {
	Activity
	ContactName *string `json:"contact_name"`
	CompanyName *string `json:"company_name"`
	DealTitle   *string `json:"deal_title"`
}

// SearchHit is one full-text match in a tenant store.
type SearchHit struct {
	Kind  string `json:"kind"`
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// RecordCounts holds the number of rows per table in a tenant store.
type RecordCounts struct {
	Contacts   int `json:"contacts"`
	Companies  int `json:"companies"`
	Deals      int `json:"deals"`
	Activities int `json:"activities"`
	Notes      int `json:"notes"`
	Total      int `json:"total"`
}

// TenantInfo describes a tenant store file and its contents.
type TenantInfo struct {
	TenantID      string       `json:"user_id"`
	DatabasePath  string       `json:"database_path"`
	FileSizeBytes int64        `json:"file_size_bytes"`
	FileSizeMB    float64      `json:"file_size_mb"`
	RecordCounts  RecordCounts `json:"record_counts"`
	ModifiedAt    time.Time    `json:"modified_at"`
}

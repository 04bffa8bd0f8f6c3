package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/models"
	"github.com/wagnerlima/tenant-crm/internal/paging"
	"github.com/wagnerlima/tenant-crm/internal/scoring"
)

const contactColumns = `id, first_name, last_name, email, phone, mobile, title, department, company_id,
	linkedin_url, twitter_handle, street, city, state, country, postal_code,
	status, lead_source, lead_score, lead_score_manual, tags, notes, created_at, updated_at`

// ContactFilter narrows ListContacts. Zero fields do not filter.
type ContactFilter struct {
	Search     string
	Status     models.ContactStatus
	CompanyID  *int64
	LeadSource string
	MinScore   *int
	SortBy     string
	SortOrder  string
	Skip       int
	Limit      int
}

var contactSorts = map[string]string{
	"":           "created_at",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"last_name":  "last_name",
	"lead_score": "lead_score",
}

func scanContact(row rowScanner) (models.Contact, error) {
	var c models.Contact
	var companyID sql.NullInt64
	var created, updated string
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Mobile, &c.Title, &c.Department, &companyID,
		&c.LinkedinURL, &c.TwitterHandle, &c.Street, &c.City, &c.State, &c.Country, &c.PostalCode,
		&c.Status, &c.LeadSource, &c.LeadScore, &c.LeadScoreManual, &c.Tags, &c.Notes, &created, &updated)
	if err != nil {
		return c, err
	}
	c.CompanyID = int64Ptr(companyID)
	return c, parseStamps(created, updated, &c.CreatedAt, &c.UpdatedAt)
}

func (s *TenantStore) getContact(ctx context.Context, id int64) (models.Contact, error) {
	c, err := scanContact(s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id))
	if err != nil {
		return c, notFound(err, "contact", id, "get contact")
	}
	return c, nil
}

// GetContact returns one contact with its company name and full name.
func (s *TenantStore) GetContact(ctx context.Context, id int64) (*models.ContactView, error) {
	c, err := s.getContact(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.enrich(ctx).contact(c)
	return &v, nil
}

// ContactRecord returns the stored contact without enrichment.
func (s *TenantStore) ContactRecord(ctx context.Context, id int64) (*models.Contact, error) {
	c, err := s.getContact(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateContact validates and inserts a contact. A nil LeadScore is computed
// from the other attributes; a supplied score, zero included, is kept.
func (s *TenantStore) CreateContact(ctx context.Context, in models.ContactInput) (*models.ContactView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, in.Email, 0); err != nil {
		return nil, err
	}
	score := leadScore(in)
	now := formatTime(s.now())

	res, err := s.db.ExecContext(ctx, `INSERT INTO contacts (first_name, last_name, email, phone, mobile, title, department,
		company_id, linkedin_url, twitter_handle, street, city, state, country, postal_code,
		status, lead_source, lead_score, lead_score_manual, tags, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.FirstName, in.LastName, in.Email, in.Phone, in.Mobile, in.Title, in.Department,
		int64Arg(in.CompanyID), in.LinkedinURL, in.TwitterHandle, in.Street, in.City, in.State, in.Country, in.PostalCode,
		string(in.Status), in.LeadSource, score, in.LeadScore != nil, in.Tags, in.Notes, now, now,
	)
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("contact with email %q already exists", in.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return s.GetContact(ctx, id)
}

// UpdateContact replaces the writable fields of a contact and stamps updated_at.
// A supplied LeadScore is stored and marks the score as caller-set. A nil
// LeadScore keeps a caller-set score and recomputes a computed one.
func (s *TenantStore) UpdateContact(ctx context.Context, id int64, in models.ContactInput) (*models.ContactView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	cur, err := s.getContact(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, in.Email, id); err != nil {
		return nil, err
	}
	manual := cur.LeadScoreManual || in.LeadScore != nil
	score := leadScore(in)
	if in.LeadScore == nil && cur.LeadScoreManual {
		score = cur.LeadScore
	}
	res, err := s.db.ExecContext(ctx, `UPDATE contacts SET first_name = ?, last_name = ?, email = ?, phone = ?, mobile = ?,
		title = ?, department = ?, company_id = ?, linkedin_url = ?, twitter_handle = ?, street = ?, city = ?, state = ?,
		country = ?, postal_code = ?, status = ?, lead_source = ?, lead_score = ?, lead_score_manual = ?, tags = ?, notes = ?,
		updated_at = ?
		WHERE id = ?`,
		in.FirstName, in.LastName, in.Email, in.Phone, in.Mobile,
		in.Title, in.Department, int64Arg(in.CompanyID), in.LinkedinURL, in.TwitterHandle, in.Street, in.City, in.State,
		in.Country, in.PostalCode, string(in.Status), in.LeadSource, score, manual, in.Tags, in.Notes, formatTime(s.now()),
		id,
	)
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("contact with email %q already exists", in.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("contact", id)
	}
	return s.GetContact(ctx, id)
}

// DeleteContact hard-deletes a contact. Deals, activities and notes that
// reference it keep the dangling id.
func (s *TenantStore) DeleteContact(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "contacts", "contact", id)
}

// ListContacts returns one page of contacts matching f and the total number of matches.
func (s *TenantStore) ListContacts(ctx context.Context, f ContactFilter) ([]models.ContactView, int, error) {
	sortCol, ok := contactSorts[f.SortBy]
	if !ok {
		return nil, 0, apperr.Validation("invalid sort_by %q", f.SortBy)
	}
	dir, err := sortDirection(f.SortOrder)
	if err != nil {
		return nil, 0, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, apperr.Validation("invalid contact status %q", f.Status)
	}

	var conds []string
	var args []any
	if f.Search != "" {
		p := likePattern(f.Search)
		conds = append(conds, `(first_name LIKE ? ESCAPE '\' OR last_name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\')`)
		args = append(args, p, p, p, p)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.CompanyID != nil {
		conds = append(conds, "company_id = ?")
		args = append(args, *f.CompanyID)
	}
	if f.LeadSource != "" {
		conds = append(conds, "lead_source = ?")
		args = append(args, f.LeadSource)
	}
	if f.MinScore != nil {
		conds = append(conds, "lead_score >= ?")
		args = append(args, *f.MinScore)
	}
	where := whereClause(conds)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	query := `SELECT ` + contactColumns + ` FROM contacts` + where +
		` ORDER BY ` + sortCol + ` ` + dir + `, id ` + dir + ` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, paging.ClampLimit(f.Limit), max(f.Skip, 0))...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	e := s.enrich(ctx)
	views := make([]models.ContactView, 0, len(contacts))
	for _, c := range contacts {
		views = append(views, e.contact(c))
	}
	return views, total, nil
}

// checkEmailFree returns a Conflict error when another contact (other than
// exceptID) already uses email. The unique index still guards races.
func (s *TenantStore) checkEmailFree(ctx context.Context, email string, exceptID int64) error {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM contacts WHERE email = ? AND id != ?`, email, exceptID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	return apperr.Conflict("contact with email %q already exists", email)
}

func leadScore(in models.ContactInput) int {
	if in.LeadScore != nil {
		return *in.LeadScore
	}
	return scoring.Score(in)
}

func sortDirection(order string) (string, error) {
	switch order {
	case "", "desc", "DESC":
		return "DESC", nil
	case "asc", "ASC":
		return "ASC", nil
	}
	return "", apperr.Validation("invalid sort_order %q", order)
}

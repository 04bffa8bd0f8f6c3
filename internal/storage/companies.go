package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/models"
	"github.com/wagnerlima/tenant-crm/internal/paging"
)

const companyColumns = `id, name, website, industry, company_size, annual_revenue, phone, email,
	street, city, state, country, postal_code, company_type, priority, description, created_at, updated_at`

// CompanyFilter narrows ListCompanies. Zero fields do not filter.
type CompanyFilter struct {
	Search      string
	CompanyType models.CompanyType
	Industry    string
	Priority    models.Priority
	Skip        int
	Limit       int
}

func scanCompany(row rowScanner) (models.Company, error) {
	var c models.Company
	var revenue sql.NullFloat64
	var created, updated string
	err := row.Scan(&c.ID, &c.Name, &c.Website, &c.Industry, &c.CompanySize, &revenue, &c.Phone, &c.Email,
		&c.Street, &c.City, &c.State, &c.Country, &c.PostalCode, &c.CompanyType, &c.Priority, &c.Description,
		&created, &updated)
	if err != nil {
		return c, err
	}
	c.AnnualRevenue = floatPtr(revenue)
	return c, parseStamps(created, updated, &c.CreatedAt, &c.UpdatedAt)
}

func (s *TenantStore) getCompany(ctx context.Context, id int64) (models.Company, error) {
	c, err := scanCompany(s.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = ?`, id))
	if err != nil {
		return c, notFound(err, "company", id, "get company")
	}
	return c, nil
}

// GetCompany returns one company with its contact and deal counts.
func (s *TenantStore) GetCompany(ctx context.Context, id int64) (*models.CompanyView, error) {
	c, err := s.getCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.enrich(ctx).company(c)
	return &v, nil
}

func (s *TenantStore) CompanyRecord(ctx context.Context, id int64) (*models.Company, error) {
	c, err := s.getCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *TenantStore) CreateCompany(ctx context.Context, in models.CompanyInput) (*models.CompanyView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := formatTime(s.now())
	res, err := s.db.ExecContext(ctx, `INSERT INTO companies (name, website, industry, company_size, annual_revenue,
		phone, email, street, city, state, country, postal_code, company_type, priority, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Website, in.Industry, in.CompanySize, floatArg(in.AnnualRevenue),
		in.Phone, in.Email, in.Street, in.City, in.State, in.Country, in.PostalCode,
		string(in.CompanyType), string(in.Priority), in.Description, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert company: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert company: %w", err)
	}
	return s.GetCompany(ctx, id)
}

func (s *TenantStore) UpdateCompany(ctx context.Context, id int64, in models.CompanyInput) (*models.CompanyView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE companies SET name = ?, website = ?, industry = ?, company_size = ?,
		annual_revenue = ?, phone = ?, email = ?, street = ?, city = ?, state = ?, country = ?, postal_code = ?,
		company_type = ?, priority = ?, description = ?, updated_at = ? WHERE id = ?`,
		in.Name, in.Website, in.Industry, in.CompanySize,
		floatArg(in.AnnualRevenue), in.Phone, in.Email, in.Street, in.City, in.State, in.Country, in.PostalCode,
		string(in.CompanyType), string(in.Priority), in.Description, formatTime(s.now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update company: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("company", id)
	}
	return s.GetCompany(ctx, id)
}

// DeleteCompany hard-deletes a company. Contacts and deals pointing at it are
// left as they are and resolve to a null company name afterwards.
func (s *TenantStore) DeleteCompany(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "companies", "company", id)
}

// ListCompanies returns companies ordered by name and the total number of matches.
func (s *TenantStore) ListCompanies(ctx context.Context, f CompanyFilter) ([]models.CompanyView, int, error) {
	if f.CompanyType != "" && !f.CompanyType.Valid() {
		return nil, 0, apperr.Validation("invalid company_type %q", f.CompanyType)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, 0, apperr.Validation("invalid priority %q", f.Priority)
	}

	var conds []string
	var args []any
	if f.Search != "" {
		conds = append(conds, `name LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.Search))
	}
	if f.CompanyType != "" {
		conds = append(conds, "company_type = ?")
		args = append(args, string(f.CompanyType))
	}
	if f.Industry != "" {
		conds = append(conds, "industry = ?")
		args = append(args, f.Industry)
	}
	if f.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, string(f.Priority))
	}
	where := whereClause(conds)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+companyColumns+` FROM companies`+where+
		` ORDER BY name, id LIMIT ? OFFSET ?`, append(args, paging.ClampLimit(f.Limit), max(f.Skip, 0))...)
	if err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	e := s.enrich(ctx)
	views := make([]models.CompanyView, 0, len(companies))
	for _, c := range companies {
		views = append(views, e.company(c))
	}
	return views, total, nil
}

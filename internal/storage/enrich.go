package storage

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/wagnerlima/tenant-crm/internal/models"
	"github.com/wagnerlima/tenant-crm/internal/pipeline"
	"github.com/wagnerlima/tenant-crm/internal/scoring"
)

// enricher computes the read-time fields of records. Name lookups are
// memoized for the lifetime of one enricher, which covers a single call.
//
// A lookup that finds no row or fails leaves its field nil; enrichment never
// fails the read that triggered it.
type enricher struct {
	ctx context.Context
	s   *TenantStore

	companies map[int64]*string
	contacts  map[int64]*string
	deals     map[int64]*string
}

func (s *TenantStore) enrich(ctx context.Context) *enricher {
	return &enricher{
		ctx:       ctx,
		s:         s,
		companies: map[int64]*string{},
		contacts:  map[int64]*string{},
		deals:     map[int64]*string{},
	}
}

func (r *enricher) companyName(id *int64) *string {
	return r.lookup(r.companies, id, "company", `SELECT name FROM companies WHERE id = ?`)
}

func (r *enricher) contactName(id *int64) *string {
	return r.lookup(r.contacts, id, "contact", `SELECT first_name || ' ' || last_name FROM contacts WHERE id = ?`)
}

func (r *enricher) dealTitle(id *int64) *string {
	return r.lookup(r.deals, id, "deal", `SELECT title FROM deals WHERE id = ?`)
}

func (r *enricher) lookup(memo map[int64]*string, id *int64, entity, query string) *string {
	if id == nil {
		return nil
	}
	if v, ok := memo[*id]; ok {
		return v
	}
	var name string
	err := r.s.db.QueryRowContext(r.ctx, query, *id).Scan(&name)
	switch {
	case err == nil:
		memo[*id] = &name
	case errors.Is(err, sql.ErrNoRows):
		memo[*id] = nil
	default:
		r.s.log.Warn("enrichment lookup failed",
			zap.String("entity", entity), zap.Int64("id", *id), zap.Error(err))
		memo[*id] = nil
	}
	return memo[*id]
}

func (r *enricher) contact(c models.Contact) models.ContactView {
	return models.ContactView{
		Contact:     c,
		FullName:    c.FullName(),
		ScoreBand:   scoring.Band(c.LeadScore),
		CompanyName: r.companyName(c.CompanyID),
	}
}

func (r *enricher) deal(d models.Deal) models.DealView {
	return models.DealView{
		Deal:          d,
		StageNumber:   pipeline.StageNumber(d.Stage),
		WeightedValue: pipeline.WeightedValue(d.Value, d.Probability),
		ContactName:   r.contactName(d.ContactID),
		CompanyName:   r.companyName(d.CompanyID),
	}
}

func (r *enricher) activity(a models.Activity) models.ActivityView {
	return models.ActivityView{
		Activity:    a,
		ContactName: r.contactName(a.ContactID),
		CompanyName: r.companyName(a.CompanyID),
		DealTitle:   r.dealTitle(a.DealID),
	}
}

// company adds reference counts and won revenue. On a failed query the counts
// stay at zero.
func (r *enricher) company(c models.Company) models.CompanyView {
	v := models.CompanyView{Company: c}
	err := r.s.db.QueryRowContext(r.ctx, `SELECT
		(SELECT COUNT(*) FROM contacts WHERE company_id = ?),
		(SELECT COUNT(*) FROM deals WHERE company_id = ?),
		(SELECT COALESCE(SUM(value), 0) FROM deals WHERE company_id = ? AND status = 'won')`,
		c.ID, c.ID, c.ID,
	).Scan(&v.ContactCount, &v.DealCount, &v.TotalRevenue)
	if err != nil {
		r.s.log.Warn("company counts failed", zap.Int64("company_id", c.ID), zap.Error(err))
		v.ContactCount, v.DealCount, v.TotalRevenue = 0, 0, 0
	}
	return v
}

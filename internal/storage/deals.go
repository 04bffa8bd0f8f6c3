package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/models"
	"github.com/wagnerlima/tenant-crm/internal/paging"
	"github.com/wagnerlima/tenant-crm/internal/pipeline"
)

const dealColumns = `id, title, value, stage, status, probability, expected_close_date, actual_close_date,
	contact_id, company_id, description, created_at, updated_at`

// DealFilter narrows ListDeals. ByStage orders by pipeline stage instead of
// newest first.
type DealFilter struct {
	Stage     models.DealStage
	Status    models.DealStatus
	ContactID *int64
	CompanyID *int64
	ByStage   bool
	Skip      int
	Limit     int
}

func scanDeal(row rowScanner) (models.Deal, error) {
	var d models.Deal
	var expected, actual sql.NullString
	var contactID, companyID sql.NullInt64
	var created, updated string
	err := row.Scan(&d.ID, &d.Title, &d.Value, &d.Stage, &d.Status, &d.Probability, &expected, &actual,
		&contactID, &companyID, &d.Description, &created, &updated)
	if err != nil {
		return d, err
	}
	d.ContactID = int64Ptr(contactID)
	d.CompanyID = int64Ptr(companyID)
	if d.ExpectedCloseDate, err = datePtr(expected); err != nil {
		return d, err
	}
	if d.ActualCloseDate, err = datePtr(actual); err != nil {
		return d, err
	}
	return d, parseStamps(created, updated, &d.CreatedAt, &d.UpdatedAt)
}

func (s *TenantStore) getDeal(ctx context.Context, id int64) (models.Deal, error) {
	d, err := scanDeal(s.db.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = ?`, id))
	if err != nil {
		return d, notFound(err, "deal", id, "get deal")
	}
	return d, nil
}

// GetDeal returns one deal with its weighted value, stage number and linked names.
func (s *TenantStore) GetDeal(ctx context.Context, id int64) (*models.DealView, error) {
	d, err := s.getDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.enrich(ctx).deal(d)
	return &v, nil
}

func (s *TenantStore) DealRecord(ctx context.Context, id int64) (*models.Deal, error) {
	d, err := s.getDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *TenantStore) CreateDeal(ctx context.Context, in models.DealInput) (*models.DealView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := formatTime(s.now())
	res, err := s.db.ExecContext(ctx, `INSERT INTO deals (title, value, stage, status, probability, expected_close_date,
		actual_close_date, contact_id, company_id, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, in.Value, string(in.Stage), string(in.Status), intArg(in.Probability), dateArg(in.ExpectedCloseDate),
		dateArg(in.ActualCloseDate), int64Arg(in.ContactID), int64Arg(in.CompanyID), in.Description, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert deal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert deal: %w", err)
	}
	return s.GetDeal(ctx, id)
}

func (s *TenantStore) UpdateDeal(ctx context.Context, id int64, in models.DealInput) (*models.DealView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE deals SET title = ?, value = ?, stage = ?, status = ?, probability = ?,
		expected_close_date = ?, actual_close_date = ?, contact_id = ?, company_id = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		in.Title, in.Value, string(in.Stage), string(in.Status), intArg(in.Probability),
		dateArg(in.ExpectedCloseDate), dateArg(in.ActualCloseDate), int64Arg(in.ContactID), int64Arg(in.CompanyID),
		in.Description, formatTime(s.now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update deal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("deal", id)
	}
	return s.GetDeal(ctx, id)
}

func (s *TenantStore) DeleteDeal(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "deals", "deal", id)
}

// ListDeals returns one page of deals matching f and the total number of matches.
func (s *TenantStore) ListDeals(ctx context.Context, f DealFilter) ([]models.DealView, int, error) {
	if f.Stage != "" && !f.Stage.Valid() {
		return nil, 0, apperr.Validation("invalid stage %q", f.Stage)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, apperr.Validation("invalid deal status %q", f.Status)
	}

	var conds []string
	var args []any
	if f.Stage != "" {
		conds = append(conds, "stage = ?")
		args = append(args, string(f.Stage))
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.ContactID != nil {
		conds = append(conds, "contact_id = ?")
		args = append(args, *f.ContactID)
	}
	if f.CompanyID != nil {
		conds = append(conds, "company_id = ?")
		args = append(args, *f.CompanyID)
	}
	where := whereClause(conds)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deals`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deals: %w", err)
	}

	order := ` ORDER BY created_at DESC, id DESC`
	if f.ByStage {
		order = ` ORDER BY ` + stageOrderExpr + `, value DESC, id`
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+dealColumns+` FROM deals`+where+order+` LIMIT ? OFFSET ?`,
		append(args, paging.ClampLimit(f.Limit), max(f.Skip, 0))...)
	if err != nil {
		return nil, 0, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan deal: %w", err)
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	e := s.enrich(ctx)
	views := make([]models.DealView, 0, len(deals))
	for _, d := range deals {
		views = append(views, e.deal(d))
	}
	return views, total, nil
}

// stageOrderExpr sorts rows by their pipeline stage number.
var stageOrderExpr = func() string {
	expr := "CASE stage"
	for _, st := range models.DealStages {
		expr += fmt.Sprintf(" WHEN '%s' THEN %d", st, pipeline.StageNumber(st))
	}
	return expr + " ELSE 99 END"
}()

// StageSummary is the number and value of deals in one pipeline stage.
type StageSummary struct {
	Stage       models.DealStage `json:"stage"`
	StageNumber int              `json:"stage_number"`
	Count       int              `json:"count"`
	Value       float64          `json:"value"`
}

// PipelineReport combines the pipeline aggregates with a per-stage breakdown.
type PipelineReport struct {
	pipeline.Metrics
	WinRate float64        `json:"win_rate"`
	Stages  []StageSummary `json:"stages"`
}

// Pipeline aggregates every deal of the tenant.
func (s *TenantStore) Pipeline(ctx context.Context) (*PipelineReport, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT stage, status, value, probability FROM deals`)
	if err != nil {
		return nil, fmt.Errorf("load deals: %w", err)
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var d models.Deal
		if err := rows.Scan(&d.Stage, &d.Status, &d.Value, &d.Probability); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	report := &PipelineReport{Metrics: pipeline.Compute(deals)}
	byStage := make(map[models.DealStage]*StageSummary, len(models.DealStages))
	for _, st := range models.DealStages {
		report.Stages = append(report.Stages, StageSummary{Stage: st, StageNumber: pipeline.StageNumber(st)})
	}
	for i := range report.Stages {
		byStage[report.Stages[i].Stage] = &report.Stages[i]
	}
	lost := 0
	for _, d := range deals {
		if sum, ok := byStage[d.Stage]; ok {
			sum.Count++
			sum.Value += d.Value
		}
		if d.Status == models.DealLost {
			lost++
		}
	}
	report.WinRate = pipeline.WinRate(report.WonCount, lost)
	return report, nil
}

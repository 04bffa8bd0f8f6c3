package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/models"
	"github.com/wagnerlima/tenant-crm/internal/paging"
)

const activityColumns = `id, activity_type, subject, description, activity_date, duration_minutes,
	contact_id, company_id, deal_id, status, priority, created_at, updated_at`

// ActivityFilter narrows ListActivities. Results are newest activity_date first.
type ActivityFilter struct {
	ActivityType models.ActivityType
	Status       models.ActivityStatus
	ContactID    *int64
	CompanyID    *int64
	DealID       *int64
	Skip         int
	Limit        int
}

func scanActivity(row rowScanner) (models.Activity, error) {
	var a models.Activity
	var duration, contactID, companyID, dealID sql.NullInt64
	var date, created, updated string
	err := row.Scan(&a.ID, &a.ActivityType, &a.Subject, &a.Description, &date, &duration,
		&contactID, &companyID, &dealID, &a.Status, &a.Priority, &created, &updated)
	if err != nil {
		return a, err
	}
	a.DurationMinutes = intPtr(duration)
	a.ContactID = int64Ptr(contactID)
	a.CompanyID = int64Ptr(companyID)
	a.DealID = int64Ptr(dealID)
	if a.ActivityDate, err = parseTime(date); err != nil {
		return a, err
	}
	return a, parseStamps(created, updated, &a.CreatedAt, &a.UpdatedAt)
}

func (s *TenantStore) getActivity(ctx context.Context, id int64) (models.Activity, error) {
	a, err := scanActivity(s.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, id))
	if err != nil {
		return a, notFound(err, "activity", id, "get activity")
	}
	return a, nil
}

func (s *TenantStore) GetActivity(ctx context.Context, id int64) (*models.ActivityView, error) {
	a, err := s.getActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.enrich(ctx).activity(a)
	return &v, nil
}

func (s *TenantStore) ActivityRecord(ctx context.Context, id int64) (*models.Activity, error) {
	a, err := s.getActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *TenantStore) CreateActivity(ctx context.Context, in models.ActivityInput) (*models.ActivityView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := formatTime(s.now())
	res, err := s.db.ExecContext(ctx, `INSERT INTO activities (activity_type, subject, description, activity_date,
		duration_minutes, contact_id, company_id, deal_id, status, priority, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(in.ActivityType), in.Subject, in.Description, formatTime(in.ActivityDate),
		intArg(in.DurationMinutes), int64Arg(in.ContactID), int64Arg(in.CompanyID), int64Arg(in.DealID),
		string(in.Status), string(in.Priority), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	return s.GetActivity(ctx, id)
}

func (s *TenantStore) UpdateActivity(ctx context.Context, id int64, in models.ActivityInput) (*models.ActivityView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE activities SET activity_type = ?, subject = ?, description = ?,
		activity_date = ?, duration_minutes = ?, contact_id = ?, company_id = ?, deal_id = ?, status = ?, priority = ?,
		updated_at = ? WHERE id = ?`,
		string(in.ActivityType), in.Subject, in.Description,
		formatTime(in.ActivityDate), intArg(in.DurationMinutes), int64Arg(in.ContactID), int64Arg(in.CompanyID),
		int64Arg(in.DealID), string(in.Status), string(in.Priority), formatTime(s.now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update activity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("activity", id)
	}
	return s.GetActivity(ctx, id)
}

func (s *TenantStore) DeleteActivity(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "activities", "activity", id)
}

func (s *TenantStore) ListActivities(ctx context.Context, f ActivityFilter) ([]models.ActivityView, int, error) {
	if f.ActivityType != "" && !f.ActivityType.Valid() {
		return nil, 0, apperr.Validation("invalid activity_type %q", f.ActivityType)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, apperr.Validation("invalid activity status %q", f.Status)
	}

	var conds []string
	var args []any
	if f.ActivityType != "" {
		conds = append(conds, "activity_type = ?")
		args = append(args, string(f.ActivityType))
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	for _, ref := range []struct {
		col string
		id  *int64
	}{{"contact_id", f.ContactID}, {"company_id", f.CompanyID}, {"deal_id", f.DealID}} {
		if ref.id != nil {
			conds = append(conds, ref.col+" = ?")
			args = append(args, *ref.id)
		}
	}
	where := whereClause(conds)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}
	views, err := s.queryActivities(ctx, `SELECT `+activityColumns+` FROM activities`+where+
		` ORDER BY activity_date DESC, id DESC LIMIT ? OFFSET ?`, append(args, paging.ClampLimit(f.Limit), max(f.Skip, 0))...)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// RecentActivities returns the n most recently created activities.
func (s *TenantStore) RecentActivities(ctx context.Context, n int) ([]models.ActivityView, error) {
	return s.queryActivities(ctx, `SELECT `+activityColumns+` FROM activities ORDER BY created_at DESC, id DESC LIMIT ?`, n)
}

func (s *TenantStore) queryActivities(ctx context.Context, query string, args ...any) ([]models.ActivityView, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	e := s.enrich(ctx)
	views := make([]models.ActivityView, 0, len(activities))
	for _, a := range activities {
		views = append(views, e.activity(a))
	}
	return views, nil
}

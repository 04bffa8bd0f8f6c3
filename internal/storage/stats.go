package storage

import (
	"context"
	"fmt"

	"github.com/wagnerlima/tenant-crm/internal/models"
)

// DashboardStats is the overview shown on a tenant's dashboard.
type DashboardStats struct {
	TotalContacts    int                   `json:"total_contacts"`
	TotalCompanies   int                   `json:"total_companies"`
	TotalDeals       int                   `json:"total_deals"`
	TotalActivities  int                   `json:"total_activities"`
	Pipeline         PipelineReport        `json:"pipeline"`
	ContactsByStatus map[string]int        `json:"contacts_by_status"`
	RecentActivities []models.ActivityView `json:"recent_activities"`
	WinRate          float64               `json:"win_rate"`
}

const recentActivityCount = 5

func (s *TenantStore) Dashboard(ctx context.Context) (*DashboardStats, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return nil, err
	}
	report, err := s.Pipeline(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.contactsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.RecentActivities(ctx, recentActivityCount)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		TotalContacts:    counts.Contacts,
		TotalCompanies:   counts.Companies,
		TotalDeals:       counts.Deals,
		TotalActivities:  counts.Activities,
		Pipeline:         *report,
		ContactsByStatus: byStatus,
		RecentActivities: recent,
		WinRate:          report.WinRate,
	}, nil
}

// contactsByStatus counts contacts per status, listing every status even when zero.
func (s *TenantStore) contactsByStatus(ctx context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, st := range []models.ContactStatus{models.ContactLead, models.ContactProspect, models.ContactCustomer, models.ContactPartner} {
		out[string(st)] = 0
	}
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM contacts GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count contacts by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

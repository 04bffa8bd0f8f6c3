package storage

import (
	"context"

	"github.com/wagnerlima/tenant-crm/internal/models"
	"github.com/wagnerlima/tenant-crm/internal/paging"
)

// collectPages calls list with growing offsets until every matching row has
// been read. Exports use it to get past the per-page limit.
func collectPages[T any](list func(skip, limit int) ([]T, int, error)) ([]T, error) {
	out := []T{}
	for {
		page, total, err := list(len(out), paging.MaxLimit)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) == 0 || len(out) >= total {
			return out, nil
		}
	}
}

// AllContacts returns every contact matching f. f.Skip and f.Limit are ignored.
func (s *TenantStore) AllContacts(ctx context.Context, f ContactFilter) ([]models.ContactView, error) {
	return collectPages(func(skip, limit int) ([]models.ContactView, int, error) {
		f.Skip, f.Limit = skip, limit
		return s.ListContacts(ctx, f)
	})
}

func (s *TenantStore) AllCompanies(ctx context.Context, f CompanyFilter) ([]models.CompanyView, error) {
	return collectPages(func(skip, limit int) ([]models.CompanyView, int, error) {
		f.Skip, f.Limit = skip, limit
		return s.ListCompanies(ctx, f)
	})
}

func (s *TenantStore) AllDeals(ctx context.Context, f DealFilter) ([]models.DealView, error) {
	return collectPages(func(skip, limit int) ([]models.DealView, int, error) {
		f.Skip, f.Limit = skip, limit
		return s.ListDeals(ctx, f)
	})
}

func (s *TenantStore) AllActivities(ctx context.Context, f ActivityFilter) ([]models.ActivityView, error) {
	return collectPages(func(skip, limit int) ([]models.ActivityView, int, error) {
		f.Skip, f.Limit = skip, limit
		return s.ListActivities(ctx, f)
	})
}

package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/export"
	"github.com/wagnerlima/tenant-crm/internal/models"
	"github.com/wagnerlima/tenant-crm/internal/storage"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (a *API) exportContacts(w http.ResponseWriter, r *http.Request) {
	serveExport(a, w, r, "contacts", export.Contacts, func(s *storage.TenantStore) ([]models.ContactView, error) {
		return s.AllContacts(r.Context(), storage.ContactFilter{
			Status:     models.ContactStatus(r.URL.Query().Get("status")),
			LeadSource: r.URL.Query().Get("lead_source"),
		})
	})
}

func (a *API) exportCompanies(w http.ResponseWriter, r *http.Request) {
	serveExport(a, w, r, "companies", export.Companies, func(s *storage.TenantStore) ([]models.CompanyView, error) {
		return s.AllCompanies(r.Context(), storage.CompanyFilter{})
	})
}

func (a *API) exportDeals(w http.ResponseWriter, r *http.Request) {
	serveExport(a, w, r, "deals", export.Deals, func(s *storage.TenantStore) ([]models.DealView, error) {
		return s.AllDeals(r.Context(), storage.DealFilter{ByStage: true})
	})
}

func (a *API) exportActivities(w http.ResponseWriter, r *http.Request) {
	serveExport(a, w, r, "activities", export.Activities, func(s *storage.TenantStore) ([]models.ActivityView, error) {
		return s.AllActivities(r.Context(), storage.ActivityFilter{})
	})
}

// serveExport loads the records under the tenant lock and renders them after
// releasing it. The fields query parameter is a comma-separated column list.
func serveExport[T any](a *API, w http.ResponseWriter, r *http.Request, entity string, table *export.Table[T], load func(*storage.TenantStore) ([]T, error)) {
	format := r.PathValue("format")
	if format != "csv" && format != "xlsx" {
		a.writeError(w, r, apperr.Validation("unsupported export format %q (use csv or xlsx)", format))
		return
	}
	var fields []string
	if raw := r.URL.Query().Get("fields"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	}
	cols, err := table.Columns(fields)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	id, err := tenantID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var records []T
	err = a.reg.With(r.Context(), id, "export_"+entity, func(s *storage.TenantStore) error {
		var err error
		records, err = load(s)
		return err
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	contentType := csvContentType
	if format == "xlsx" {
		data, err := table.XLSX(records, cols)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		buf.Write(data)
		contentType = xlsxContentType
	} else if err := table.WriteCSV(&buf, records, cols); err != nil {
		a.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, entity, format))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

package tools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/export"
	"github.com/wagnerlima/tenant-crm/internal/models"
	"github.com/wagnerlima/tenant-crm/internal/paging"
	"github.com/wagnerlima/tenant-crm/internal/session"
	"github.com/wagnerlima/tenant-crm/internal/storage"
)

// CRMTools holds references needed by CRM record tool handlers.
type CRMTools struct {
	Registry *storage.Registry
	Session  *session.Sessions
}

// --- Input types ---

type RecordInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	ID       int64  `json:"id" jsonschema:"Record id"`
}

type PageInput struct {
	Page    int `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	PerPage int `json:"per_page,omitempty" jsonschema:"Items per page, 1-200 (default 50)"`
}

type ListContactsInput struct {
	TenantID   string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	Search     string `json:"search,omitempty" jsonschema:"Case-insensitive substring of first name, last name, email or title"`
	Status     string `json:"status,omitempty" jsonschema:"Filter by status: lead, prospect, customer or partner"`
	CompanyID  *int64 `json:"company_id,omitempty" jsonschema:"Filter by company id"`
	LeadSource string `json:"lead_source,omitempty" jsonschema:"Filter by lead source"`
	MinScore   *int   `json:"min_score,omitempty" jsonschema:"Minimum lead score"`
	SortBy     string `json:"sort_by,omitempty" jsonschema:"created_at, updated_at, last_name or lead_score"`
	SortOrder  string `json:"sort_order,omitempty" jsonschema:"asc or desc (default desc)"`
	PageInput
}

type CreateContactInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	ContactFields
}

type UpdateContactInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	ID       int64  `json:"id" jsonschema:"Contact id"`
	ContactFields
}

type ListCompaniesInput struct {
	TenantID    string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	Search      string `json:"search,omitempty" jsonschema:"Case-insensitive substring of the company name"`
	CompanyType string `json:"company_type,omitempty" jsonschema:"Filter by type: prospect, customer, partner or vendor"`
	Industry    string `json:"industry,omitempty" jsonschema:"Filter by industry"`
	Priority    string `json:"priority,omitempty" jsonschema:"Filter by priority: low, medium, high or critical"`
	PageInput
}

type CreateCompanyInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	CompanyFields
}

type UpdateCompanyInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	ID       int64  `json:"id" jsonschema:"Company id"`
	CompanyFields
}

type ListDealsInput struct {
	TenantID  string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	Stage     string `json:"stage,omitempty" jsonschema:"Filter by pipeline stage"`
	Status    string `json:"status,omitempty" jsonschema:"Filter by status: open, won or lost"`
	ContactID *int64 `json:"contact_id,omitempty" jsonschema:"Filter by contact id"`
	CompanyID *int64 `json:"company_id,omitempty" jsonschema:"Filter by company id"`
	ByStage   bool   `json:"by_stage,omitempty" jsonschema:"Order by pipeline stage instead of creation time"`
	PageInput
}

type CreateDealInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	DealFields
}

type UpdateDealInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	ID       int64  `json:"id" jsonschema:"Deal id"`
	DealFields
}

type ListActivitiesInput struct {
	TenantID     string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	ActivityType string `json:"activity_type,omitempty" jsonschema:"Filter by type: call, email, meeting, task or note"`
	Status       string `json:"status,omitempty" jsonschema:"Filter by status: pending, completed or cancelled"`
	ContactID    *int64 `json:"contact_id,omitempty" jsonschema:"Filter by contact id"`
	CompanyID    *int64 `json:"company_id,omitempty" jsonschema:"Filter by company id"`
	DealID       *int64 `json:"deal_id,omitempty" jsonschema:"Filter by deal id"`
	PageInput
}

type CreateActivityInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	ActivityFields
}

type UpdateActivityInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	ID       int64  `json:"id" jsonschema:"Activity id"`
	ActivityFields
}

type CreateNoteInput struct {
	TenantID  string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	Content   string `json:"content" jsonschema:"Note text"`
	ContactID *int64 `json:"contact_id,omitempty" jsonschema:"Contact the note is about"`
	CompanyID *int64 `json:"company_id,omitempty" jsonschema:"Company the note is about"`
	DealID    *int64 `json:"deal_id,omitempty" jsonschema:"Deal the note is about"`
}

type ListNotesInput struct {
	TenantID  string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	ContactID *int64 `json:"contact_id,omitempty" jsonschema:"Filter by contact id"`
	CompanyID *int64 `json:"company_id,omitempty" jsonschema:"Filter by company id"`
	DealID    *int64 `json:"deal_id,omitempty" jsonschema:"Filter by deal id"`
	PageInput
}

type SearchRecordsInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	Query    string `json:"query" jsonschema:"Words to search for; each word matches as a prefix"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum hits per record kind (default 20)"`
}

type TenantScopeInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
}

type ExportRecordsInput struct {
	TenantID string   `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	Entity   string   `json:"entity" jsonschema:"contacts, companies, deals or activities"`
	Fields   []string `json:"fields,omitempty" jsonschema:"Field names to export, in order; defaults depend on the entity"`
}

// --- Results ---

type listResult struct {
	Items      any         `json:"items"`
	Pagination paging.Page `json:"pagination"`
}

type deletedResult struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

// run resolves the tenant, runs fn under the tenant's handle lock and renders
// the result. op doubles as the metrics label and, with underscores spaced
// out, the failure message.
func (t *CRMTools) run(ctx context.Context, req *mcp.CallToolRequest, tenantID, op string, fn func(*storage.TenantStore) (any, error)) (*mcp.CallToolResult, any, error) {
	id, errResult := currentTenant(t.Session, req, tenantID)
	if errResult != nil {
		return errResult, nil, nil
	}

	var out any
	err := t.Registry.With(ctx, id, op, func(s *storage.TenantStore) error {
		var err error
		out, err = fn(s)
		return err
	})
	if err != nil {
		return toolError("Failed to %s: %v", strings.ReplaceAll(op, "_", " "), err), nil, nil
	}

	if text, ok := out.(string); ok {
		return toolText(text), nil, nil
	}
	return toolJSON(out)
}

func page[T any](items []T, total int, p PageInput) listResult {
	if items == nil {
		items = []T{}
	}
	return listResult{Items: items, Pagination: paging.Paginate(total, p.Page, paging.ClampLimit(p.PerPage))}
}

// --- Contacts ---

func (t *CRMTools) ListContacts(ctx context.Context, req *mcp.CallToolRequest, input ListContactsInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "list_contacts", func(s *storage.TenantStore) (any, error) {
		skip, limit := paging.SkipLimit(input.Page, paging.ClampLimit(input.PerPage))
		contacts, total, err := s.ListContacts(ctx, storage.ContactFilter{
			Search:     input.Search,
			Status:     models.ContactStatus(input.Status),
			CompanyID:  input.CompanyID,
			LeadSource: input.LeadSource,
			MinScore:   input.MinScore,
			SortBy:     input.SortBy,
			SortOrder:  input.SortOrder,
			Skip:       skip,
			Limit:      limit,
		})
		if err != nil {
			return nil, err
		}
		return page(contacts, total, input.PageInput), nil
	})
}

func (t *CRMTools) GetContact(ctx context.Context, req *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "get_contact", func(s *storage.TenantStore) (any, error) {
		return s.GetContact(ctx, input.ID)
	})
}

func (t *CRMTools) CreateContact(ctx context.Context, req *mcp.CallToolRequest, input CreateContactInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "create_contact", func(s *storage.TenantStore) (any, error) {
		var in models.ContactInput
		input.apply(&in)
		return s.CreateContact(ctx, in)
	})
}

func (t *CRMTools) UpdateContact(ctx context.Context, req *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "update_contact", func(s *storage.TenantStore) (any, error) {
		cur, err := s.ContactRecord(ctx, input.ID)
		if err != nil {
			return nil, err
		}
		in := cur.Input()
		input.apply(&in)
		return s.UpdateContact(ctx, input.ID, in)
	})
}

func (t *CRMTools) DeleteContact(ctx context.Context, req *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "delete_contact", func(s *storage.TenantStore) (any, error) {
		if err := s.DeleteContact(ctx, input.ID); err != nil {
			return nil, err
		}
		return deletedResult{ID: input.ID, Deleted: true}, nil
	})
}

// --- Companies ---

func (t *CRMTools) ListCompanies(ctx context.Context, req *mcp.CallToolRequest, input ListCompaniesInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "list_companies", func(s *storage.TenantStore) (any, error) {
		skip, limit := paging.SkipLimit(input.Page, paging.ClampLimit(input.PerPage))
		companies, total, err := s.ListCompanies(ctx, storage.CompanyFilter{
			Search:      input.Search,
			CompanyType: models.CompanyType(input.CompanyType),
			Industry:    input.Industry,
			Priority:    models.Priority(input.Priority),
			Skip:        skip,
			Limit:       limit,
		})
		if err != nil {
			return nil, err
		}
		return page(companies, total, input.PageInput), nil
	})
}

func (t *CRMTools) GetCompany(ctx context.Context, req *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "get_company", func(s *storage.TenantStore) (any, error) {
		return s.GetCompany(ctx, input.ID)
	})
}

func (t *CRMTools) CreateCompany(ctx context.Context, req *mcp.CallToolRequest, input CreateCompanyInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "create_company", func(s *storage.TenantStore) (any, error) {
		var in models.CompanyInput
		input.apply(&in)
		return s.CreateCompany(ctx, in)
	})
}

func (t *CRMTools) UpdateCompany(ctx context.Context, req *mcp.CallToolRequest, input UpdateCompanyInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "update_company", func(s *storage.TenantStore) (any, error) {
		cur, err := s.CompanyRecord(ctx, input.ID)
		if err != nil {
			return nil, err
		}
		in := cur.Input()
		input.apply(&in)
		return s.UpdateCompany(ctx, input.ID, in)
	})
}

func (t *CRMTools) DeleteCompany(ctx context.Context, req *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "delete_company", func(s *storage.TenantStore) (any, error) {
		if err := s.DeleteCompany(ctx, input.ID); err != nil {
			return nil, err
		}
		return deletedResult{ID: input.ID, Deleted: true}, nil
	})
}

// --- Deals ---

func (t *CRMTools) ListDeals(ctx context.Context, req *mcp.CallToolRequest, input ListDealsInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "list_deals", func(s *storage.TenantStore) (any, error) {
		skip, limit := paging.SkipLimit(input.Page, paging.ClampLimit(input.PerPage))
		deals, total, err := s.ListDeals(ctx, storage.DealFilter{
			Stage:     models.DealStage(input.Stage),
			Status:    models.DealStatus(input.Status),
			ContactID: input.ContactID,
			CompanyID: input.CompanyID,
			ByStage:   input.ByStage,
			Skip:      skip,
			Limit:     limit,
		})
		if err != nil {
			return nil, err
		}
		return page(deals, total, input.PageInput), nil
	})
}

func (t *CRMTools) GetDeal(ctx context.Context, req *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "get_deal", func(s *storage.TenantStore) (any, error) {
		return s.GetDeal(ctx, input.ID)
	})
}

func (t *CRMTools) CreateDeal(ctx context.Context, req *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "create_deal", func(s *storage.TenantStore) (any, error) {
		var in models.DealInput
		if err := input.apply(&in); err != nil {
			return nil, err
		}
		return s.CreateDeal(ctx, in)
	})
}

func (t *CRMTools) UpdateDeal(ctx context.Context, req *mcp.CallToolRequest, input UpdateDealInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "update_deal", func(s *storage.TenantStore) (any, error) {
		cur, err := s.DealRecord(ctx, input.ID)
		if err != nil {
			return nil, err
		}
		in := cur.Input()
		if err := input.apply(&in); err != nil {
			return nil, err
		}
		return s.UpdateDeal(ctx, input.ID, in)
	})
}

func (t *CRMTools) DeleteDeal(ctx context.Context, req *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "delete_deal", func(s *storage.TenantStore) (any, error) {
		if err := s.DeleteDeal(ctx, input.ID); err != nil {
			return nil, err
		}
		return deletedResult{ID: input.ID, Deleted: true}, nil
	})
}

// --- Activities ---

func (t *CRMTools) ListActivities(ctx context.Context, req *mcp.CallToolRequest, input ListActivitiesInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "list_activities", func(s *storage.TenantStore) (any, error) {
		skip, limit := paging.SkipLimit(input.Page, paging.ClampLimit(input.PerPage))
		activities, total, err := s.ListActivities(ctx, storage.ActivityFilter{
			ActivityType: models.ActivityType(input.ActivityType),
			Status:       models.ActivityStatus(input.Status),
			ContactID:    input.ContactID,
			CompanyID:    input.CompanyID,
			DealID:       input.DealID,
			Skip:         skip,
			Limit:        limit,
		})
		if err != nil {
			return nil, err
		}
		return page(activities, total, input.PageInput), nil
	})
}

func (t *CRMTools) GetActivity(ctx context.Context, req *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "get_activity", func(s *storage.TenantStore) (any, error) {
		return s.GetActivity(ctx, input.ID)
	})
}

func (t *CRMTools) CreateActivity(ctx context.Context, req *mcp.CallToolRequest, input CreateActivityInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "create_activity", func(s *storage.TenantStore) (any, error) {
		var in models.ActivityInput
		if err := input.apply(&in); err != nil {
			return nil, err
		}
		return s.CreateActivity(ctx, in)
	})
}

func (t *CRMTools) UpdateActivity(ctx context.Context, req *mcp.CallToolRequest, input UpdateActivityInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "update_activity", func(s *storage.TenantStore) (any, error) {
		cur, err := s.ActivityRecord(ctx, input.ID)
		if err != nil {
			return nil, err
		}
		in := cur.Input()
		if err := input.apply(&in); err != nil {
			return nil, err
		}
		return s.UpdateActivity(ctx, input.ID, in)
	})
}

func (t *CRMTools) DeleteActivity(ctx context.Context, req *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "delete_activity", func(s *storage.TenantStore) (any, error) {
		if err := s.DeleteActivity(ctx, input.ID); err != nil {
			return nil, err
		}
		return deletedResult{ID: input.ID, Deleted: true}, nil
	})
}

// --- Notes ---

func (t *CRMTools) CreateNote(ctx context.Context, req *mcp.CallToolRequest, input CreateNoteInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "create_note", func(s *storage.TenantStore) (any, error) {
		return s.CreateNote(ctx, models.NoteInput{
			Content:   input.Content,
			ContactID: input.ContactID,
			CompanyID: input.CompanyID,
			DealID:    input.DealID,
		})
	})
}

func (t *CRMTools) ListNotes(ctx context.Context, req *mcp.CallToolRequest, input ListNotesInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "list_notes", func(s *storage.TenantStore) (any, error) {
		skip, limit := paging.SkipLimit(input.Page, paging.ClampLimit(input.PerPage))
		notes, err := s.ListNotes(ctx, storage.NoteFilter{
			ContactID: input.ContactID,
			CompanyID: input.CompanyID,
			DealID:    input.DealID,
			Skip:      skip,
			Limit:     limit,
		})
		if err != nil {
			return nil, err
		}
		if notes == nil {
			notes = []models.Note{}
		}
		return notes, nil
	})
}

func (t *CRMTools) DeleteNote(ctx context.Context, req *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "delete_note", func(s *storage.TenantStore) (any, error) {
		if err := s.DeleteNote(ctx, input.ID); err != nil {
			return nil, err
		}
		return deletedResult{ID: input.ID, Deleted: true}, nil
	})
}

// --- Reports ---

func (t *CRMTools) SearchRecords(ctx context.Context, req *mcp.CallToolRequest, input SearchRecordsInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "search_records", func(s *storage.TenantStore) (any, error) {
		return s.Search(ctx, input.Query, input.Limit)
	})
}

func (t *CRMTools) PipelineMetrics(ctx context.Context, req *mcp.CallToolRequest, input TenantScopeInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "pipeline_metrics", func(s *storage.TenantStore) (any, error) {
		return s.Pipeline(ctx)
	})
}

func (t *CRMTools) DashboardStats(ctx context.Context, req *mcp.CallToolRequest, input TenantScopeInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "dashboard_stats", func(s *storage.TenantStore) (any, error) {
		return s.Dashboard(ctx)
	})
}

// ExportRecords returns every record of one entity as CSV text.
func (t *CRMTools) ExportRecords(ctx context.Context, req *mcp.CallToolRequest, input ExportRecordsInput) (*mcp.CallToolResult, any, error) {
	return t.run(ctx, req, input.TenantID, "export_records", func(s *storage.TenantStore) (any, error) {
		switch input.Entity {
		case "contacts":
			return exportCSV(export.Contacts, input.Fields, func() ([]models.ContactView, error) {
				return s.AllContacts(ctx, storage.ContactFilter{})
			})
		case "companies":
			return exportCSV(export.Companies, input.Fields, func() ([]models.CompanyView, error) {
				return s.AllCompanies(ctx, storage.CompanyFilter{})
			})
		case "deals":
			return exportCSV(export.Deals, input.Fields, func() ([]models.DealView, error) {
				return s.AllDeals(ctx, storage.DealFilter{ByStage: true})
			})
		case "activities":
			return exportCSV(export.Activities, input.Fields, func() ([]models.ActivityView, error) {
				return s.AllActivities(ctx, storage.ActivityFilter{})
			})
		}
		return nil, apperr.Validation("unknown entity %q", input.Entity)
	})
}

// exportCSV checks the requested columns before loading any rows.
func exportCSV[T any](table *export.Table[T], fields []string, load func() ([]T, error)) (any, error) {
	cols, err := table.Columns(fields)
	if err != nil {
		return nil, err
	}
	records, err := load()
	if err != nil {
		return nil, err
	}
	return table.CSV(records, cols)
}

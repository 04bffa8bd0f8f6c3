package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/wagnerlima/tenant-crm/internal/session"
	"github.com/wagnerlima/tenant-crm/internal/storage"
	"github.com/wagnerlima/tenant-crm/internal/tools"
)

// Version is reported to MCP clients.
const Version = "0.2.0"

// New creates a fully configured MCP server with all tools registered.
func New(reg *storage.Registry, log *zap.Logger) *mcp.Server {
	if log == nil {
		log = zap.NewNop()
	}
	sess := session.New()

	tt := &tools.TenantTools{Registry: reg, Session: sess, Log: log}
	ct := &tools.CRMTools{Registry: reg, Session: sess}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "tenant-crm",
		Version: Version,
	}, nil)

	// Tenant management tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "init_tenant",
		Description: "Create (or open) a tenant's isolated database and make it the current tenant",
	}, tt.InitTenant)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "switch_tenant",
		Description: "Switch the current tenant for this session to an existing tenant",
	}, tt.SwitchTenant)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_current_tenant",
		Description: "Get the tenant currently selected for this session",
	}, tt.GetCurrentTenant)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_tenants",
		Description: "List every tenant that has a database on this server",
	}, tt.ListTenants)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_tenant",
		Description: "Permanently delete a tenant's database and all its records (irreversible)",
	}, tt.DeleteTenant)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "backup_tenant",
		Description: "Write a consistent copy of the tenant's database to the server's backup directory",
	}, tt.BackupTenant)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "restore_tenant",
		Description: "Replace the tenant's database with a backup taken by backup_tenant",
	}, tt.RestoreTenant)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "database_info",
		Description: "Show the tenant database path, size and record counts",
	}, tt.DatabaseInfo)

	// Contacts
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List contacts with filters, sorting and pagination (requires a tenant)",
	}, ct.ListContacts)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_contact",
		Description: "Get a contact with its full name, score band and company name (requires a tenant)",
	}, ct.GetContact)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_contact",
		Description: "Create a contact; the lead score is computed when not given (requires a tenant)",
	}, ct.CreateContact)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update the given fields of a contact; the lead score is recomputed unless given (requires a tenant)",
	}, ct.UpdateContact)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact (requires a tenant)",
	}, ct.DeleteContact)

	// Companies
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_companies",
		Description: "List companies with contact and deal counts (requires a tenant)",
	}, ct.ListCompanies)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_company",
		Description: "Get a company with contact count, deal count and won revenue (requires a tenant)",
	}, ct.GetCompany)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_company",
		Description: "Create a company (requires a tenant)",
	}, ct.CreateCompany)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_company",
		Description: "Update the given fields of a company (requires a tenant)",
	}, ct.UpdateCompany)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_company",
		Description: "Delete a company; contacts and deals keep their company_id (requires a tenant)",
	}, ct.DeleteCompany)

	// Deals
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_deals",
		Description: "List deals with stage number and weighted value (requires a tenant)",
	}, ct.ListDeals)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_deal",
		Description: "Get a deal with its contact and company names (requires a tenant)",
	}, ct.GetDeal)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_deal",
		Description: "Create a deal in the sales pipeline (requires a tenant)",
	}, ct.CreateDeal)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_deal",
		Description: "Update the given fields of a deal (requires a tenant)",
	}, ct.UpdateDeal)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_deal",
		Description: "Delete a deal (requires a tenant)",
	}, ct.DeleteDeal)

	// Activities
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_activities",
		Description: "List activities, newest first (requires a tenant)",
	}, ct.ListActivities)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_activity",
		Description: "Get an activity with the names of its linked records (requires a tenant)",
	}, ct.GetActivity)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_activity",
		Description: "Log a call, email, meeting, task or note (requires a tenant)",
	}, ct.CreateActivity)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_activity",
		Description: "Update the given fields of an activity (requires a tenant)",
	}, ct.UpdateActivity)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_activity",
		Description: "Delete an activity (requires a tenant)",
	}, ct.DeleteActivity)

	// Notes
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_note",
		Description: "Attach a note to a contact, company or deal (requires a tenant)",
	}, ct.CreateNote)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_notes",
		Description: "List notes, optionally for one contact, company or deal (requires a tenant)",
	}, ct.ListNotes)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_note",
		Description: "Delete a note (requires a tenant)",
	}, ct.DeleteNote)

	// Reports
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_records",
		Description: "Full-text search across contacts and companies (requires a tenant)",
	}, ct.SearchRecords)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "pipeline_metrics",
		Description: "Total, weighted and won pipeline value with a per-stage breakdown (requires a tenant)",
	}, ct.PipelineMetrics)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "dashboard_stats",
		Description: "Record totals, pipeline metrics, contacts by status and recent activities (requires a tenant)",
	}, ct.DashboardStats)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "export_records",
		Description: "Export contacts, companies, deals or activities as CSV (requires a tenant)",
	}, ct.ExportRecords)

	return srv
}

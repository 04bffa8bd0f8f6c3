package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/wagnerlima/tenant-crm/internal/server"
	"github.com/wagnerlima/tenant-crm/internal/storage"
)

// setupIntegration creates a real MCP server with in-memory transport and returns a connected client session.
func setupIntegration(t *testing.T) (*mcp.ClientSession, *storage.Registry) {
	t.Helper()

	reg, err := storage.OpenRegistry(t.TempDir(), 4, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	srv := server.New(reg, zap.NewNop())

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	if _, err := srv.Connect(ctx, serverTransport, nil); err != nil {
		reg.Close()
		t.Fatalf("server connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		reg.Close()
		t.Fatalf("client connect: %v", err)
	}

	t.Cleanup(func() {
		session.Close()
		reg.Close()
	})
	return session, reg
}

// callTool is a helper that calls a tool and returns the text content.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
	}
	return tc.Text
}

// callToolExpectError calls a tool and expects an error response (IsError=true).
func callToolExpectError(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): protocol error: %v", name, err)
	}
	if !result.IsError {
		tc := result.Content[0].(*mcp.TextContent)
		t.Fatalf("CallTool(%s): expected error but got success: %s", name, tc.Text)
	}
	tc := result.Content[0].(*mcp.TextContent)
	return tc.Text
}

// callJSON calls a tool and decodes its JSON result into an object.
func callJSON(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	text := callTool(t, session, name, args)
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("parse %s: %v\n%s", name, err, text)
	}
	return out
}

func TestIntegration_ListTools(t *testing.T) {
	session, _ := setupIntegration(t)

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	expectedTools := []string{
		"init_tenant", "switch_tenant", "get_current_tenant", "list_tenants",
		"delete_tenant", "backup_tenant", "restore_tenant", "database_info",
		"list_contacts", "get_contact", "create_contact", "update_contact", "delete_contact",
		"list_companies", "get_company", "create_company", "update_company", "delete_company",
		"list_deals", "get_deal", "create_deal", "update_deal", "delete_deal",
		"list_activities", "get_activity", "create_activity", "update_activity", "delete_activity",
		"create_note", "list_notes", "delete_note",
		"search_records", "pipeline_metrics", "dashboard_stats", "export_records",
	}

	toolNames := make(map[string]bool)
	for _, tool := range result.Tools {
		toolNames[tool.Name] = true
	}

	for _, name := range expectedTools {
		if !toolNames[name] {
			t.Errorf("Missing tool: %s", name)
		}
	}

	if len(result.Tools) != len(expectedTools) {
		t.Errorf("Expected %d tools, got %d", len(expectedTools), len(result.Tools))
	}
}

func TestIntegration_FullWorkflow(t *testing.T) {
	session, _ := setupIntegration(t)

	// Step 1: init_tenant with a generated id, auto-switched
	tenant := callJSON(t, session, "init_tenant", nil)
	tenantID, _ := tenant["tenant_id"].(string)
	if _, err := storage.ParseTenantID(tenantID); err != nil {
		t.Fatalf("init_tenant returned invalid id %q", tenantID)
	}
	if tenant["created"] != true {
		t.Errorf("init_tenant created = %v, want true", tenant["created"])
	}

	current := callJSON(t, session, "get_current_tenant", nil)
	if current["tenant_id"] != tenantID {
		t.Errorf("current tenant = %v, want %s", current["tenant_id"], tenantID)
	}

	// Step 2: company and contact; the score counts the company link and the corporate email
	company := callJSON(t, session, "create_company", map[string]any{"name": "Acme", "industry": "Manufacturing"})
	companyID := company["id"].(float64)

	contact := callJSON(t, session, "create_contact", map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@acme.io",
		"company_id": companyID,
	})
	if contact["lead_score"] != 30.0 {
		t.Errorf("lead_score = %v, want 30", contact["lead_score"])
	}
	if contact["company_name"] != "Acme" {
		t.Errorf("company_name = %v, want Acme", contact["company_name"])
	}
	contactID := contact["id"].(float64)

	// Step 3: partial update recomputes the score and keeps other fields
	updated := callJSON(t, session, "update_contact", map[string]any{"id": contactID, "phone": "+1 555 0100"})
	if updated["lead_score"] != 40.0 {
		t.Errorf("updated lead_score = %v, want 40", updated["lead_score"])
	}
	if updated["email"] != "ada@acme.io" {
		t.Errorf("update lost the email: %v", updated["email"])
	}

	// Step 4: duplicate email is rejected
	text := callToolExpectError(t, session, "create_contact", map[string]any{
		"first_name": "Other", "last_name": "Person", "email": "ada@acme.io",
	})
	if !strings.Contains(text, "already exists") {
		t.Errorf("duplicate email error = %q", text)
	}

	// Step 5: deals and pipeline
	deal := callJSON(t, session, "create_deal", map[string]any{
		"title": "Engines", "value": 1000.0, "probability": 40, "contact_id": contactID, "company_id": companyID,
	})
	if deal["weighted_value"] != 400.0 {
		t.Errorf("weighted_value = %v, want 400", deal["weighted_value"])
	}
	if deal["contact_name"] != "Ada Lovelace" {
		t.Errorf("contact_name = %v, want Ada Lovelace", deal["contact_name"])
	}
	callJSON(t, session, "create_deal", map[string]any{"title": "Lost one", "value": 50.0, "status": "lost", "stage": "closed_lost"})

	pipeline := callJSON(t, session, "pipeline_metrics", nil)
	if pipeline["total_value"] != 1000.0 || pipeline["weighted_value"] != 400.0 || pipeline["open_count"] != 1.0 {
		t.Errorf("unexpected pipeline: %v", pipeline)
	}

	// Step 6: activity and note
	activity := callJSON(t, session, "create_activity", map[string]any{
		"activity_type": "call",
		"subject":       "Intro call",
		"activity_date": "2024-03-01T10:00:00Z",
		"contact_id":    contactID,
		"deal_id":       deal["id"],
	})
	if activity["deal_title"] != "Engines" {
		t.Errorf("deal_title = %v, want Engines", activity["deal_title"])
	}
	callJSON(t, session, "create_note", map[string]any{"content": "Prefers email", "contact_id": contactID})

	text = callTool(t, session, "list_notes", map[string]any{"contact_id": contactID})
	if !strings.Contains(text, "Prefers email") {
		t.Errorf("list_notes missing note: %s", text)
	}

	// Step 7: listing, search, dashboard
	list := callJSON(t, session, "list_contacts", map[string]any{"search": "love"})
	if list["pagination"].(map[string]any)["total_items"] != 1.0 {
		t.Errorf("list_contacts total = %v, want 1", list["pagination"])
	}

	text = callTool(t, session, "search_records", map[string]any{"query": "acm"})
	if !strings.Contains(text, `"kind": "company"`) || !strings.Contains(text, "Acme") {
		t.Errorf("search_records missing company: %s", text)
	}

	dash := callJSON(t, session, "dashboard_stats", nil)
	if dash["total_contacts"] != 1.0 || dash["total_deals"] != 2.0 || dash["total_activities"] != 1.0 {
		t.Errorf("unexpected dashboard totals: %v", dash)
	}
	if dash["win_rate"] != 0.0 {
		t.Errorf("win_rate = %v, want 0", dash["win_rate"])
	}

	// Step 8: export
	csv := callTool(t, session, "export_records", map[string]any{"entity": "contacts", "fields": []any{"email", "lead_score"}})
	if csv != "email,lead_score\nada@acme.io,40\n" {
		t.Errorf("export_records = %q", csv)
	}
	callToolExpectError(t, session, "export_records", map[string]any{"entity": "invoices"})

	// Step 9: database_info
	info := callJSON(t, session, "database_info", nil)
	counts := info["record_counts"].(map[string]any)
	if counts["total"] != 6.0 {
		t.Errorf("record total = %v, want 6", counts["total"])
	}
}

func TestIntegration_BackupRestore(t *testing.T) {
	session, _ := setupIntegration(t)

	callJSON(t, session, "init_tenant", nil)
	contact := callJSON(t, session, "create_contact", map[string]any{
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@acme.io",
	})

	backup := callJSON(t, session, "backup_tenant", map[string]any{"name": "snapshot.db"})
	if backup["name"] != "snapshot.db" {
		t.Errorf("backup name = %v", backup["name"])
	}

	callTool(t, session, "delete_contact", map[string]any{"id": contact["id"]})
	callToolExpectError(t, session, "get_contact", map[string]any{"id": contact["id"]})

	callTool(t, session, "restore_tenant", map[string]any{"name": "snapshot.db"})
	restored := callJSON(t, session, "get_contact", map[string]any{"id": contact["id"]})
	if restored["email"] != "ada@acme.io" {
		t.Errorf("restored email = %v", restored["email"])
	}

	callToolExpectError(t, session, "restore_tenant", map[string]any{"name": "../escape.db"})
	callToolExpectError(t, session, "restore_tenant", map[string]any{"name": "missing.db"})
}

func TestIntegration_NoActiveTenant(t *testing.T) {
	session, _ := setupIntegration(t)

	text := callToolExpectError(t, session, "list_contacts", nil)
	if !strings.Contains(text, "No active tenant") {
		t.Errorf("unexpected error: %s", text)
	}

	text = callTool(t, session, "get_current_tenant", nil)
	if !strings.Contains(text, "No tenant is currently active") {
		t.Errorf("unexpected text: %s", text)
	}

	// An explicit tenant_id works without a session tenant.
	explicit := storage.NewTenantID()
	callJSON(t, session, "create_company", map[string]any{"tenant_id": explicit, "name": "Acme"})
	list := callJSON(t, session, "list_companies", map[string]any{"tenant_id": explicit})
	if list["pagination"].(map[string]any)["total_items"] != 1.0 {
		t.Errorf("list_companies = %v", list)
	}

	callToolExpectError(t, session, "switch_tenant", map[string]any{"tenant_id": storage.NewTenantID()})
	callToolExpectError(t, session, "list_contacts", map[string]any{"tenant_id": "not-a-uuid"})
}

func TestIntegration_DeleteTenant(t *testing.T) {
	session, reg := setupIntegration(t)

	tenant := callJSON(t, session, "init_tenant", nil)
	id := tenant["tenant_id"].(string)

	text := callToolExpectError(t, session, "delete_tenant", map[string]any{"tenant_id": id, "confirm": false})
	if !strings.Contains(text, "confirm=true") {
		t.Errorf("unexpected error: %s", text)
	}

	callTool(t, session, "delete_tenant", map[string]any{"tenant_id": id, "confirm": true})

	if ok, _ := reg.Exists(id); ok {
		t.Error("tenant file still exists after delete_tenant")
	}
	text = callTool(t, session, "get_current_tenant", nil)
	if !strings.Contains(text, "No tenant is currently active") {
		t.Errorf("session still points at deleted tenant: %s", text)
	}

	list := callJSON(t, session, "list_tenants", nil)
	if tenants := list["tenants"].([]any); len(tenants) != 0 {
		t.Errorf("list_tenants = %v, want empty", tenants)
	}
}

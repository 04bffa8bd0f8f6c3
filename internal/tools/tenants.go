package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/wagnerlima/tenant-crm/internal/session"
	"github.com/wagnerlima/tenant-crm/internal/storage"
)

// backupDir is the subdirectory of the data directory that holds backups.
const backupDir = "backups"

// TenantTools holds references needed by tenant management tool handlers.
type TenantTools struct {
	Registry *storage.Registry
	Session  *session.Sessions
	Log      *zap.Logger
}

// --- Input types ---

type InitTenantInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; a new one is generated when omitted"`
}

type SwitchTenantInput struct {
	TenantID string `json:"tenant_id" jsonschema:"UUID of an existing tenant to make current"`
}

type DeleteTenantInput struct {
	TenantID string `json:"tenant_id" jsonschema:"UUID of the tenant to permanently delete"`
	Confirm  bool   `json:"confirm" jsonschema:"Must be true; deletion removes every record of the tenant"`
}

type BackupTenantInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	Name     string `json:"name,omitempty" jsonschema:"Backup file name; defaults to <tenant>-<timestamp>.db"`
}

type RestoreTenantInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
	Name     string `json:"name" jsonschema:"Backup file name previously returned by backup_tenant"`
}

type TenantInfoInput struct {
	TenantID string `json:"tenant_id,omitempty" jsonschema:"Tenant UUID; defaults to the current tenant"`
}

// --- Results ---

type tenantResult struct {
	TenantID     string `json:"tenant_id"`
	Created      bool   `json:"created"`
	DatabasePath string `json:"database_path"`
}

type backupResult struct {
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
}

// --- Handlers ---

func (t *TenantTools) InitTenant(ctx context.Context, req *mcp.CallToolRequest, input InitTenantInput) (*mcp.CallToolResult, any, error) {
	raw := input.TenantID
	if raw == "" {
		raw = storage.NewTenantID()
	}
	id, err := storage.ParseTenantID(raw)
	if err != nil {
		return toolError("Failed to init tenant: %v", err), nil, nil
	}

	created, err := t.Registry.Init(ctx, id)
	if err != nil {
		return toolError("Failed to init tenant: %v", err), nil, nil
	}

	// Auto-switch to the tenant
	t.Session.Switch(sessionID(req), id)

	return toolJSON(tenantResult{TenantID: id, Created: created, DatabasePath: t.Registry.Path(id)})
}

func (t *TenantTools) SwitchTenant(_ context.Context, req *mcp.CallToolRequest, input SwitchTenantInput) (*mcp.CallToolResult, any, error) {
	if input.TenantID == "" {
		return toolError("tenant_id is required"), nil, nil
	}
	id, err := storage.ParseTenantID(input.TenantID)
	if err != nil {
		return toolError("Failed to switch tenant: %v", err), nil, nil
	}
	ok, err := t.Registry.Exists(id)
	if err != nil {
		return toolError("Failed to switch tenant: %v", err), nil, nil
	}
	if !ok {
		return toolError("Tenant %s does not exist. Use init_tenant to create it.", id), nil, nil
	}

	t.Session.Switch(sessionID(req), id)

	return toolJSON(tenantResult{TenantID: id, DatabasePath: t.Registry.Path(id)})
}

func (t *TenantTools) GetCurrentTenant(_ context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	id, ok := t.Session.Current(sessionID(req))
	if !ok {
		return toolText("No tenant is currently active. Use init_tenant or switch_tenant to select one."), nil, nil
	}
	return toolJSON(map[string]string{"tenant_id": id})
}

func (t *TenantTools) ListTenants(_ context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	ids, err := t.Registry.ListTenants()
	if err != nil {
		return toolError("Failed to list tenants: %v", err), nil, nil
	}
	current, _ := t.Session.Current(sessionID(req))

	return toolJSON(struct {
		Tenants     []string `json:"tenants"`
		Current     string   `json:"current,omitempty"`
		OpenHandles int      `json:"open_handles"`
	}{ids, current, t.Registry.Len()})
}

func (t *TenantTools) DeleteTenant(ctx context.Context, _ *mcp.CallToolRequest, input DeleteTenantInput) (*mcp.CallToolResult, any, error) {
	if input.TenantID == "" {
		return toolError("tenant_id is required"), nil, nil
	}
	if !input.Confirm {
		return toolError("Deletion is irreversible; call again with confirm=true."), nil, nil
	}

	existed, err := t.Registry.Destroy(ctx, input.TenantID)
	if err != nil {
		return toolError("Failed to delete tenant: %v", err), nil, nil
	}
	id, _ := storage.ParseTenantID(input.TenantID)
	t.Session.ClearTenant(id)

	if !existed {
		return toolText(fmt.Sprintf("Tenant %s had no database; nothing deleted.", id)), nil, nil
	}
	return toolText(fmt.Sprintf("Tenant %s permanently deleted.", id)), nil, nil
}

func (t *TenantTools) BackupTenant(ctx context.Context, req *mcp.CallToolRequest, input BackupTenantInput) (*mcp.CallToolResult, any, error) {
	id, errResult := currentTenant(t.Session, req, input.TenantID)
	if errResult != nil {
		return errResult, nil, nil
	}
	canonical, err := storage.ParseTenantID(id)
	if err != nil {
		return toolError("Failed to back up tenant: %v", err), nil, nil
	}
	name := input.Name
	if name == "" {
		name = fmt.Sprintf("%s-%s.db", canonical, time.Now().UTC().Format("20060102T150405Z"))
	}
	path, err := t.backupPath(name)
	if err != nil {
		return toolError("Failed to back up tenant: %v", err), nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return toolError("Failed to back up tenant: %v", err), nil, nil
	}

	if err := t.Registry.Backup(ctx, canonical, path); err != nil {
		return toolError("Failed to back up tenant: %v", err), nil, nil
	}
	t.Log.Info("tenant backed up", zap.String("tenant_id", canonical), zap.String("path", path))

	return toolJSON(backupResult{TenantID: canonical, Name: name, Path: path})
}

func (t *TenantTools) RestoreTenant(ctx context.Context, req *mcp.CallToolRequest, input RestoreTenantInput) (*mcp.CallToolResult, any, error) {
	id, errResult := currentTenant(t.Session, req, input.TenantID)
	if errResult != nil {
		return errResult, nil, nil
	}
	path, err := t.backupPath(input.Name)
	if err != nil {
		return toolError("Failed to restore tenant: %v", err), nil, nil
	}

	if err := t.Registry.Restore(ctx, id, path); err != nil {
		return toolError("Failed to restore tenant: %v", err), nil, nil
	}
	t.Log.Info("tenant restored", zap.String("tenant_id", id), zap.String("path", path))

	return toolText(fmt.Sprintf("Tenant %s restored from %s.", id, input.Name)), nil, nil
}

func (t *TenantTools) DatabaseInfo(ctx context.Context, req *mcp.CallToolRequest, input TenantInfoInput) (*mcp.CallToolResult, any, error) {
	id, errResult := currentTenant(t.Session, req, input.TenantID)
	if errResult != nil {
		return errResult, nil, nil
	}

	info, err := t.Registry.Info(ctx, id)
	if err != nil {
		return toolError("Failed to get database info: %v", err), nil, nil
	}

	return toolJSON(info)
}

// backupPath confines backup files to the backup directory.
func (t *TenantTools) backupPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid backup name %q", name)
	}
	return filepath.Join(t.Registry.DataDir(), backupDir, name), nil
}

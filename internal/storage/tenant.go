package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.uber.org/zap"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/metrics"
	"github.com/wagnerlima/tenant-crm/internal/models"
)

// TenantStore is the open handle of one tenant's database file.
//
// The entity methods do not lock. Callers reach a cached store through
// Registry.With, which holds mu for the duration of the callback.
type TenantStore struct {
	mu     sync.Mutex
	closed bool

	id   string
	path string
	db   *sql.DB
	log  *zap.Logger
	now  func() time.Time
}

// openTenant opens (creating if needed) the tenant file at path and applies the schema.
func openTenant(id, path string, log *zap.Logger) (*TenantStore, error) {
	db, err := sql.Open("sqlite3", tenantDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open tenant db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping tenant db: %w", err)
	}
	if _, err := db.Exec(TenantSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tenant schema: %w", err)
	}
	if _, err := db.Exec(TenantTriggers); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tenant triggers: %w", err)
	}
	return newTenantStore(id, path, db, log), nil
}

func newTenantStore(id, path string, db *sql.DB, log *zap.Logger) *TenantStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &TenantStore{
		id:   id,
		path: path,
		db:   db,
		log:  log.With(zap.String("tenant_id", id)),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ID returns the canonical tenant id.
func (s *TenantStore) ID() string { return s.id }

// Path returns the absolute path of the tenant file.
func (s *TenantStore) Path() string { return s.path }

// Close closes the database connection. It waits for an in-flight operation
// holding the handle and is safe to call more than once.
func (s *TenantStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	metrics.HandleClosed()
	return s.db.Close()
}

// checkpoint folds the WAL into the main file so a byte copy of the file is complete.
func (s *TenantStore) checkpoint(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

// Counts returns the number of rows in every entity table.
func (s *TenantStore) Counts(ctx context.Context) (models.RecordCounts, error) {
	var rc models.RecordCounts
	targets := []struct {
		table string
		dst   *int
	}{
		{"contacts", &rc.Contacts},
		{"companies", &rc.Companies},
		{"deals", &rc.Deals},
		{"activities", &rc.Activities},
		{"notes", &rc.Notes},
	}
	for _, t := range targets {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.table).Scan(t.dst); err != nil {
			return rc, fmt.Errorf("count %s: %w", t.table, err)
		}
		rc.Total += *t.dst
	}
	return rc, nil
}

// --- row helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

// timeLayout is RFC 3339 with a fixed-width fraction so stored timestamps sort
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// parseStamps parses a created/updated pair scanned from the same row.
func parseStamps(created, updated string, dstCreated, dstUpdated *time.Time) error {
	var err error
	if *dstCreated, err = parseTime(created); err != nil {
		return err
	}
	if dstUpdated == nil {
		return nil
	}
	*dstUpdated, err = parseTime(updated)
	return err
}

func int64Arg(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func intArg(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatArg(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func dateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func datePtr(n sql.NullString) (*models.Date, error) {
	if !n.Valid || n.String == "" {
		return nil, nil
	}
	d, err := models.ParseDate(n.String)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", n.String, err)
	}
	return &d, nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, sqlite3.CONSTRAINT_UNIQUE)
}

// likePattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '\'.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// whereClause joins conditions with AND, or returns "" when there are none.
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// notFound maps sql.ErrNoRows to a NotFound error and wraps anything else.
func notFound(err error, entity string, id int64, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(entity, id)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// deleteRow hard-deletes one row and reports NotFound when nothing matched.
func (s *TenantStore) deleteRow(ctx context.Context, table, entity string, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entity, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wagnerlima/tenant-crm/internal/models"
	"github.com/wagnerlima/tenant-crm/internal/paging"
)

// NoteFilter narrows ListNotes by attached record. Nil ids do not filter.
type NoteFilter struct {
	ContactID *int64
	CompanyID *int64
	DealID    *int64
	Skip      int
	Limit     int
}

func scanNote(row rowScanner) (models.Note, error) {
	var n models.Note
	var contactID, companyID, dealID sql.NullInt64
	var created string
	if err := row.Scan(&n.ID, &n.Content, &contactID, &companyID, &dealID, &created); err != nil {
		return n, err
	}
	n.ContactID = int64Ptr(contactID)
	n.CompanyID = int64Ptr(companyID)
	n.DealID = int64Ptr(dealID)
	return n, parseStamps(created, "", &n.CreatedAt, nil)
}

func (s *TenantStore) CreateNote(ctx context.Context, in models.NoteInput) (*models.Note, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (content, contact_id, company_id, deal_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		in.Content, int64Arg(in.ContactID), int64Arg(in.CompanyID), int64Arg(in.DealID), formatTime(s.now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	n, err := scanNote(s.db.QueryRowContext(ctx,
		`SELECT id, content, contact_id, company_id, deal_id, created_at FROM notes WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "note", id, "get note")
	}
	return &n, nil
}

// ListNotes returns notes newest first.
func (s *TenantStore) ListNotes(ctx context.Context, f NoteFilter) ([]models.Note, error) {
	var conds []string
	var args []any
	for _, ref := range []struct {
		col string
		id  *int64
	}{{"contact_id", f.ContactID}, {"company_id", f.CompanyID}, {"deal_id", f.DealID}} {
		if ref.id != nil {
			conds = append(conds, ref.col+" = ?")
			args = append(args, *ref.id)
		}
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, content, contact_id, company_id, deal_id, created_at FROM notes`+
		whereClause(conds)+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, paging.ClampLimit(f.Limit), max(f.Skip, 0))...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *TenantStore) DeleteNote(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "notes", "note", id)
}

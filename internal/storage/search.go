package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/models"
)

// Search performs FTS5 prefix search across contacts and companies. Every
// whitespace-separated term must match. Contacts come first, each kind in
// relevance order.
func (s *TenantStore) Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, apperr.Validation("search query is empty")
	}
	if limit <= 0 {
		limit = 20
	}

	hits := []models.SearchHit{}
	sources := []struct {
		kind string
		sql  string
	}{
		{"contact", `SELECT c.id, c.first_name || ' ' || c.last_name || ' <' || c.email || '>'
			FROM contacts_fts JOIN contacts c ON c.id = contacts_fts.rowid
			WHERE contacts_fts MATCH ? ORDER BY rank LIMIT ?`},
		{"company", `SELECT co.id, co.name
			FROM companies_fts JOIN companies co ON co.id = companies_fts.rowid
			WHERE companies_fts MATCH ? ORDER BY rank LIMIT ?`},
	}
	for _, src := range sources {
		rows, err := s.db.QueryContext(ctx, src.sql, match, limit)
		if err != nil {
			return nil, fmt.Errorf("search %s fts: %w", src.kind, err)
		}
		for rows.Next() {
			h := models.SearchHit{Kind: src.kind}
			if err := rows.Scan(&h.ID, &h.Label); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan %s hit: %w", src.kind, err)
			}
			hits = append(hits, h)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return hits, nil
}

// ftsQuery turns free text into an FTS5 expression of quoted prefix terms so
// user input cannot inject FTS operators.
func ftsQuery(q string) string {
	var terms []string
	for _, t := range strings.Fields(q) {
		terms = append(terms, `"`+strings.ReplaceAll(t, `"`, `""`)+`"*`)
	}
	return strings.Join(terms, " ")
}

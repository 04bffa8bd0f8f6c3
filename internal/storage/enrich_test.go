package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wagnerlima/tenant-crm/internal/models"
)

func newMockStore(t *testing.T) (*TenantStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newTenantStore("00000000-0000-4000-8000-000000000000", "", db, zap.NewNop()), mock
}

func TestEnrichContactDegradesOnLookupError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM companies WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnError(errors.New("disk I/O error"))

	v := s.enrich(context.Background()).contact(models.Contact{
		FirstName: "Ada", LastName: "Lovelace", CompanyID: ptr(int64(3)), LeadScore: 55,
	})

	assert.Nil(t, v.CompanyName)
	assert.Equal(t, "Ada Lovelace", v.FullName)
	assert.Equal(t, "warm", v.ScoreBand)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrichMemoizesLookups(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM companies WHERE id = ?`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Acme"))

	e := s.enrich(context.Background())
	a := e.contact(models.Contact{FirstName: "A", LastName: "B", CompanyID: ptr(int64(9))})
	b := e.contact(models.Contact{FirstName: "C", LastName: "D", CompanyID: ptr(int64(9))})

	require.NotNil(t, a.CompanyName)
	require.NotNil(t, b.CompanyName)
	assert.Equal(t, "Acme", *b.CompanyName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrichDealPartialFailure(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT first_name || ' ' || last_name FROM contacts WHERE id = ?`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Ada Lovelace"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM companies WHERE id = ?`)).
		WithArgs(int64(2)).
		WillReturnError(errors.New("database is locked"))

	v := s.enrich(context.Background()).deal(models.Deal{
		Value: 500, Probability: 20, Stage: models.StageNegotiation,
		ContactID: ptr(int64(1)), CompanyID: ptr(int64(2)),
	})

	require.NotNil(t, v.ContactName)
	assert.Equal(t, "Ada Lovelace", *v.ContactName)
	assert.Nil(t, v.CompanyName)
	assert.Equal(t, 100.0, v.WeightedValue)
	assert.Equal(t, 4, v.StageNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrichCompanyCountsFailure(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT\(\*\) FROM contacts`).
		WithArgs(int64(4), int64(4), int64(4)).
		WillReturnError(errors.New("no such table: deals"))

	v := s.enrich(context.Background()).company(models.Company{ID: 4, Name: "Acme"})
	assert.Equal(t, "Acme", v.Name)
	assert.Zero(t, v.ContactCount)
	assert.Zero(t, v.DealCount)
	assert.Zero(t, v.TotalRevenue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetContactSurvivesFailedCompanyLookup(t *testing.T) {
	s, mock := newMockStore(t)
	cols := []string{"id", "first_name", "last_name", "email", "phone", "mobile", "title", "department", "company_id",
		"linkedin_url", "twitter_handle", "street", "city", "state", "country", "postal_code",
		"status", "lead_source", "lead_score", "lead_score_manual", "tags", "notes", "created_at", "updated_at"}
	stamp := "2024-03-01T09:00:01.000000000Z"
	mock.ExpectQuery(`SELECT id, first_name, last_name, email`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			int64(7), "Ada", "Lovelace", "ada@acme.io", "", "", "", "", int64(12),
			"", "", "", "", "", "", "",
			"lead", "", int64(30), false, "", "", stamp, stamp))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM companies WHERE id = ?`)).
		WithArgs(int64(12)).
		WillReturnError(errors.New("disk I/O error"))

	v, err := s.GetContact(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.ID)
	assert.Equal(t, int64(12), *v.CompanyID)
	assert.Nil(t, v.CompanyName)
	assert.Equal(t, "cool", v.ScoreBand)
	assert.Equal(t, 2024, v.CreatedAt.Year())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageErrorsAreWrapped(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT id, title, value`).
		WithArgs(int64(1)).
		WillReturnError(errors.New("disk I/O error"))

	_, err := s.GetDeal(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get deal")
	assert.NoError(t, mock.ExpectationsWereMet())
}

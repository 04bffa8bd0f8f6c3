package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/models"
)

func sampleContacts() []models.ContactView {
	companyID := int64(3)
	name := "Acme, Inc."
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return []models.ContactView{
		{
			Contact: models.Contact{
				ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@acme.io", Title: "CTO",
				CompanyID: &companyID, Status: models.ContactCustomer, LeadScore: 50, CreatedAt: created,
			},
			FullName:    "Ada Lovelace",
			CompanyName: &name,
		},
		{
			Contact:  models.Contact{ID: 2, FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil", Status: models.ContactLead},
			FullName: "Grace Hopper",
		},
	}
}

func TestContactsCSVDefaults(t *testing.T) {
	out, err := Contacts.CSV(sampleContacts(), nil)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "first_name", "last_name", "email", "phone", "title", "company_id", "status", "lead_score"}, records[0])
	assert.Equal(t, []string{"1", "Ada", "Lovelace", "ada@acme.io", "", "CTO", "3", "customer", "50"}, records[1])
	assert.Equal(t, []string{"2", "Grace", "Hopper", "grace@navy.mil", "", "", "", "lead", "0"}, records[2])
}

func TestContactsCSVSelectedFields(t *testing.T) {
	out, err := Contacts.CSV(sampleContacts(), []string{"full_name", "company_name", "created_at"})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada Lovelace", "Acme, Inc.", "2024-03-01T09:30:00Z"}, records[1])
	assert.Equal(t, []string{"Grace Hopper", "", "0001-01-01T00:00:00Z"}, records[2])
}

func TestUnknownFieldIsValidationError(t *testing.T) {
	_, err := Contacts.CSV(sampleContacts(), []string{"email", "password_hash"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = Deals.XLSX(nil, []string{"nope"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestEveryTableDefaultIsKnown(t *testing.T) {
	check := func(name string, fields, defaults []string) {
		known := map[string]bool{}
		for _, f := range fields {
			assert.False(t, known[f], "%s: duplicate field %s", name, f)
			known[f] = true
		}
		for _, d := range defaults {
			assert.True(t, known[d], "%s: default %s is not a field", name, d)
		}
	}
	check("contacts", Contacts.Fields(), Contacts.defaults)
	check("companies", Companies.Fields(), Companies.defaults)
	check("deals", Deals.Fields(), Deals.defaults)
	check("activities", Activities.Fields(), Activities.defaults)
}

func TestContactsXLSX(t *testing.T) {
	data, err := Contacts.XLSX(sampleContacts(), []string{"id", "email", "company_name", "lead_score"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Contacts"}, f.GetSheetList())
	rows, err := f.GetRows("Contacts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "email", "company_name", "lead_score"}, rows[0])
	assert.Equal(t, []string{"1", "ada@acme.io", "Acme, Inc.", "50"}, rows[1])
	assert.Equal(t, "grace@navy.mil", rows[2][1])
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "2.5", Text(2.5))
	assert.Equal(t, "1000000", Text(1e6))
	assert.Equal(t, "true", Text(true))
	assert.Equal(t, "2024-01-02T03:04:05Z", Text(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}

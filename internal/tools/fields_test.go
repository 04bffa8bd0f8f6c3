package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/models"
	"github.com/wagnerlima/tenant-crm/internal/session"
)

func ptr[T any](v T) *T { return &v }

func TestContactFieldsOverlay(t *testing.T) {
	in := models.Contact{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@acme.io",
		CompanyID: ptr(int64(3)),
		Status:    models.ContactProspect,
		LeadScore: 55,
	}.Input()

	ContactFields{Phone: ptr("+1 555"), Status: ptr("customer")}.apply(&in)

	assert.Equal(t, "Ada", in.FirstName)
	assert.Equal(t, "+1 555", in.Phone)
	assert.Equal(t, models.ContactCustomer, in.Status)
	require.NotNil(t, in.CompanyID)
	assert.Equal(t, int64(3), *in.CompanyID)
	assert.Nil(t, in.LeadScore, "score is recomputed unless supplied")

	ContactFields{CompanyID: ptr(int64(0)), LeadScore: ptr(0)}.apply(&in)
	assert.Nil(t, in.CompanyID)
	require.NotNil(t, in.LeadScore)
	assert.Equal(t, 0, *in.LeadScore)
}

func TestDealFieldsDates(t *testing.T) {
	var in models.DealInput
	require.NoError(t, DealFields{ExpectedCloseDate: ptr("2024-06-30")}.apply(&in))
	require.NotNil(t, in.ExpectedCloseDate)
	assert.Equal(t, "2024-06-30", in.ExpectedCloseDate.String())

	require.NoError(t, DealFields{ExpectedCloseDate: ptr("")}.apply(&in))
	assert.Nil(t, in.ExpectedCloseDate)

	err := DealFields{ActualCloseDate: ptr("June 30th")}.apply(&in)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestActivityFieldsTimestamp(t *testing.T) {
	var in models.ActivityInput
	require.NoError(t, ActivityFields{ActivityDate: ptr("2024-03-01T10:00:00+02:00")}.apply(&in))
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), in.ActivityDate)

	require.NoError(t, ActivityFields{ActivityDate: ptr("2024-03-02")}.apply(&in))
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), in.ActivityDate)

	assert.ErrorIs(t, ActivityFields{ActivityDate: ptr("soon")}.apply(&in), apperr.ErrValidation)
}

func TestCurrentTenant(t *testing.T) {
	sess := session.New()

	_, res := currentTenant(sess, nil, "")
	require.NotNil(t, res)
	assert.True(t, res.IsError)

	id, res := currentTenant(sess, nil, "explicit")
	assert.Nil(t, res)
	assert.Equal(t, "explicit", id)

	sess.Switch("", "from-session")
	id, res = currentTenant(sess, nil, "")
	assert.Nil(t, res)
	assert.Equal(t, "from-session", id)
}

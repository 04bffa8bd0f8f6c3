package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/models"
)

// newTestStore opens a fresh tenant store with a deterministic clock that
// advances one second per call.
func newTestStore(t *testing.T) *TenantStore {
	t.Helper()
	r := newTestRegistry(t, 4)
	s, err := r.Resolve(context.Background(), NewTenantID())
	require.NoError(t, err)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func ptr[T any](v T) *T { return &v }

func TestCreateContactComputesScore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	co, err := s.CreateCompany(ctx, models.CompanyInput{Name: "Acme"})
	require.NoError(t, err)

	c, err := s.CreateContact(ctx, models.ContactInput{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@acme.io",
		CompanyID:   &co.ID,
		Title:       "Founder & CEO",
		Phone:       "+44 20 7946 0000",
		LinkedinURL: "https://linkedin.com/in/ada",
		Street:      "1 Analytical Way",
		City:        "London",
		State:       "LDN",
		Country:     "UK",
		LeadSource:  "referral",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, c.LeadScore)
	assert.Equal(t, "hot", c.ScoreBand)
	assert.Equal(t, "Ada Lovelace", c.FullName)
	require.NotNil(t, c.CompanyName)
	assert.Equal(t, "Acme", *c.CompanyName)
	assert.Equal(t, models.ContactLead, c.Status)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
}

func TestCreateContactKeepsSuppliedZeroScore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := contactInput("ada@acme.io")
	in.Title = "CEO"
	in.LeadScore = ptr(0)
	c, err := s.CreateContact(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 0, c.LeadScore)
}

func TestCreateContactValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateContact(ctx, models.ContactInput{FirstName: "A", LastName: "B", Email: "not-an-email"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	in := contactInput("ada@acme.io")
	in.Status = "vip"
	_, err = s.CreateContact(ctx, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	in = contactInput("ada@acme.io")
	in.LeadScore = ptr(101)
	_, err = s.CreateContact(ctx, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateContact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateContact(ctx, contactInput("ada@acme.io"))
	require.NoError(t, err)
	other, err := s.CreateContact(ctx, contactInput("grace@acme.io"))
	require.NoError(t, err)

	in := c.Contact.Input()
	in.Phone = "555-0100"
	in.Status = models.ContactCustomer
	updated, err := s.UpdateContact(ctx, c.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, models.ContactCustomer, updated.Status)
	assert.False(t, c.LeadScoreManual)
	assert.Equal(t, c.LeadScore+10, updated.LeadScore, "a computed score follows the phone change")
	assert.True(t, updated.UpdatedAt.After(c.UpdatedAt))
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)

	in.Email = other.Email
	_, err = s.UpdateContact(ctx, c.ID, in)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.UpdateContact(ctx, 9999, contactInput("x@acme.io"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateContactKeepsSuppliedScore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := contactInput("ada@acme.io")
	in.LeadScore = ptr(90)
	c, err := s.CreateContact(ctx, in)
	require.NoError(t, err)
	require.Equal(t, 90, c.LeadScore)
	assert.True(t, c.LeadScoreManual)

	upd := c.Contact.Input()
	upd.Phone = "555-0100"
	updated, err := s.UpdateContact(ctx, c.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, 90, updated.LeadScore)

	upd = updated.Contact.Input()
	upd.LeadScore = ptr(0)
	updated, err = s.UpdateContact(ctx, c.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.LeadScore)

	upd = updated.Contact.Input()
	upd.Title = "CEO"
	updated, err = s.UpdateContact(ctx, c.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.LeadScore, "a caller-set zero is kept too")
	assert.True(t, updated.LeadScoreManual)
}

func TestGetAndDeleteContact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetContact(ctx, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	c, err := s.CreateContact(ctx, contactInput("ada@acme.io"))
	require.NoError(t, err)
	got, err := s.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	require.NoError(t, s.DeleteContact(ctx, c.ID))
	assert.ErrorIs(t, s.DeleteContact(ctx, c.ID), apperr.ErrNotFound)
}

func TestDanglingCompanyResolvesToNull(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := contactInput("ada@acme.io")
	in.CompanyID = ptr(int64(4242))
	c, err := s.CreateContact(ctx, in)
	require.NoError(t, err)
	assert.Nil(t, c.CompanyName)
	require.NotNil(t, c.CompanyID)

	co, err := s.CreateCompany(ctx, models.CompanyInput{Name: "Acme"})
	require.NoError(t, err)
	in = contactInput("grace@acme.io")
	in.CompanyID = &co.ID
	linked, err := s.CreateContact(ctx, in)
	require.NoError(t, err)
	require.NoError(t, s.DeleteCompany(ctx, co.ID))

	got, err := s.GetContact(ctx, linked.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CompanyName)
	assert.Equal(t, co.ID, *got.CompanyID, "deleting a company does not touch its contacts")
}

func TestListContactsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	co, err := s.CreateCompany(ctx, models.CompanyInput{Name: "Acme"})
	require.NoError(t, err)
	seed := []models.ContactInput{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@acme.io", Title: "CTO", CompanyID: &co.ID, Status: models.ContactCustomer},
		{FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil", LeadSource: "referral"},
		{FirstName: "Alan", LastName: "Turing", Email: "alan@gmail.com", Status: models.ContactProspect},
		{FirstName: "Edsger", LastName: "Dijkstra", Email: "ewd_100@utexas.edu"},
	}
	for _, in := range seed {
		_, err := s.CreateContact(ctx, in)
		require.NoError(t, err)
	}

	names := func(f ContactFilter) []string {
		t.Helper()
		list, _, err := s.ListContacts(ctx, f)
		require.NoError(t, err)
		var out []string
		for _, c := range list {
			out = append(out, c.LastName)
		}
		return out
	}

	assert.Equal(t, []string{"Dijkstra", "Turing", "Hopper", "Lovelace"}, names(ContactFilter{}))
	assert.Equal(t, []string{"Dijkstra", "Hopper", "Lovelace", "Turing"}, names(ContactFilter{SortBy: "last_name", SortOrder: "asc"}))
	assert.Equal(t, []string{"Lovelace"}, names(ContactFilter{Search: "ACME"}))
	assert.Equal(t, []string{"Lovelace"}, names(ContactFilter{Search: "cto"}))
	assert.Equal(t, []string{"Dijkstra"}, names(ContactFilter{Search: "_100"}))
	assert.Empty(t, names(ContactFilter{Search: "%"}))
	assert.Equal(t, []string{"Turing"}, names(ContactFilter{Status: models.ContactProspect}))
	assert.Equal(t, []string{"Lovelace"}, names(ContactFilter{CompanyID: &co.ID}))
	assert.Equal(t, []string{"Hopper"}, names(ContactFilter{LeadSource: "referral"}))
	assert.Equal(t, []string{"Lovelace"}, names(ContactFilter{MinScore: ptr(30)}))

	page, total, err := s.ListContacts(ctx, ContactFilter{SortBy: "last_name", SortOrder: "asc", Skip: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Hopper", page[0].LastName)

	_, _, err = s.ListContacts(ctx, ContactFilter{SortBy: "email; DROP TABLE contacts"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, _, err = s.ListContacts(ctx, ContactFilter{SortOrder: "sideways"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCompanyViewCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	co, err := s.CreateCompany(ctx, models.CompanyInput{Name: "Acme", AnnualRevenue: ptr(1e6), CompanySize: "51-200"})
	require.NoError(t, err)
	assert.Equal(t, models.CompanyProspect, co.CompanyType)
	assert.Equal(t, models.PriorityMedium, co.Priority)
	assert.Zero(t, co.ContactCount)

	in := contactInput("ada@acme.io")
	in.CompanyID = &co.ID
	_, err = s.CreateContact(ctx, in)
	require.NoError(t, err)
	for _, d := range []models.DealInput{
		{Title: "won a", Value: 300, Status: models.DealWon, CompanyID: &co.ID},
		{Title: "won b", Value: 200, Status: models.DealWon, CompanyID: &co.ID},
		{Title: "open", Value: 1000, CompanyID: &co.ID},
		{Title: "elsewhere", Value: 50, Status: models.DealWon},
	} {
		_, err := s.CreateDeal(ctx, d)
		require.NoError(t, err)
	}

	got, err := s.GetCompany(ctx, co.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ContactCount)
	assert.Equal(t, 3, got.DealCount)
	assert.Equal(t, 500.0, got.TotalRevenue)
	require.NotNil(t, got.AnnualRevenue)
	assert.Equal(t, 1e6, *got.AnnualRevenue)

	_, err = s.CreateCompany(ctx, models.CompanyInput{Name: "Bad", CompanySize: "huge"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	list, total, err := s.ListCompanies(ctx, CompanyFilter{Search: "ac"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 3, list[0].DealCount)

	upd := got.Company.Input()
	upd.Priority = models.PriorityCritical
	updated, err := s.UpdateCompany(ctx, co.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityCritical, updated.Priority)
	_, err = s.UpdateCompany(ctx, 999, upd)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDealViewAndPipeline(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateContact(ctx, contactInput("ada@acme.io"))
	require.NoError(t, err)
	closeDate := models.NewDate(2024, time.June, 30)
	d, err := s.CreateDeal(ctx, models.DealInput{
		Title:             "Platform",
		Value:             1000,
		Stage:             models.StageProposal,
		Probability:       ptr(40),
		ContactID:         &c.ID,
		CompanyID:         ptr(int64(77)),
		ExpectedCloseDate: &closeDate,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, d.StageNumber)
	assert.Equal(t, 400.0, d.WeightedValue)
	require.NotNil(t, d.ContactName)
	assert.Equal(t, "Ada Lovelace", *d.ContactName)
	assert.Nil(t, d.CompanyName)
	require.NotNil(t, d.ExpectedCloseDate)
	assert.Equal(t, "2024-06-30", d.ExpectedCloseDate.String())
	assert.Nil(t, d.ActualCloseDate)

	_, err = s.CreateDeal(ctx, models.DealInput{Title: "Defaulted", Value: 100})
	require.NoError(t, err)
	_, err = s.CreateDeal(ctx, models.DealInput{Title: "Won", Value: 200, Stage: models.StageClosedWon, Status: models.DealWon, Probability: ptr(100)})
	require.NoError(t, err)
	_, err = s.CreateDeal(ctx, models.DealInput{Title: "Lost", Value: 900, Stage: models.StageClosedLost, Status: models.DealLost})
	require.NoError(t, err)

	byStage, _, err := s.ListDeals(ctx, DealFilter{ByStage: true})
	require.NoError(t, err)
	var titles []string
	for _, v := range byStage {
		titles = append(titles, v.Title)
	}
	assert.Equal(t, []string{"Defaulted", "Platform", "Won", "Lost"}, titles)

	open, total, err := s.ListDeals(ctx, DealFilter{Status: models.DealOpen})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, open, 2)

	report, err := s.Pipeline(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, report.TotalValue)
	assert.Equal(t, 410.0, report.WeightedValue)
	assert.Equal(t, 2, report.OpenCount)
	assert.Equal(t, 200.0, report.TotalRevenue)
	assert.Equal(t, 1, report.WonCount)
	assert.Equal(t, 50.0, report.WinRate)
	require.Len(t, report.Stages, 6)
	assert.Equal(t, StageSummary{Stage: models.StageProposal, StageNumber: 3, Count: 1, Value: 1000}, report.Stages[2])

	_, err = s.CreateDeal(ctx, models.DealInput{Title: "Neg", Value: -1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, _, err = s.ListDeals(ctx, DealFilter{Stage: "closing"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	upd := d.Deal.Input()
	upd.Stage = models.StageNegotiation
	upd.Probability = ptr(80)
	moved, err := s.UpdateDeal(ctx, d.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, 4, moved.StageNumber)
	assert.Equal(t, 800.0, moved.WeightedValue)

	require.NoError(t, s.DeleteDeal(ctx, d.ID))
	_, err = s.GetDeal(ctx, d.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestActivitiesAndNotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateContact(ctx, contactInput("ada@acme.io"))
	require.NoError(t, err)
	d, err := s.CreateDeal(ctx, models.DealInput{Title: "Platform", Value: 10})
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, subj := range []string{"intro call", "demo", "follow up"} {
		_, err := s.CreateActivity(ctx, models.ActivityInput{
			ActivityType: models.ActivityCall,
			Subject:      subj,
			ActivityDate: base.Add(time.Duration(i) * 24 * time.Hour),
			ContactID:    &c.ID,
			DealID:       &d.ID,
			CompanyID:    ptr(int64(5)),
		})
		require.NoError(t, err)
	}
	_, err = s.CreateActivity(ctx, models.ActivityInput{ActivityType: "fax", Subject: "x", ActivityDate: base})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	list, total, err := s.ListActivities(ctx, ActivityFilter{ContactID: &c.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "follow up", list[0].Subject)
	assert.Equal(t, models.ActivityPending, list[0].Status)
	require.NotNil(t, list[0].ContactName)
	assert.Equal(t, "Ada Lovelace", *list[0].ContactName)
	require.NotNil(t, list[0].DealTitle)
	assert.Equal(t, "Platform", *list[0].DealTitle)
	assert.Nil(t, list[0].CompanyName)
	assert.True(t, list[0].ActivityDate.Equal(base.Add(48*time.Hour)))

	upd := list[0].Activity.Input()
	upd.Status = models.ActivityCompleted
	upd.DurationMinutes = ptr(30)
	done, err := s.UpdateActivity(ctx, list[0].ID, upd)
	require.NoError(t, err)
	assert.Equal(t, models.ActivityCompleted, done.Status)
	require.NotNil(t, done.DurationMinutes)
	assert.Equal(t, 30, *done.DurationMinutes)

	completed, _, err := s.ListActivities(ctx, ActivityFilter{Status: models.ActivityCompleted})
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	n, err := s.CreateNote(ctx, models.NoteInput{Content: "prefers email", ContactID: &c.ID})
	require.NoError(t, err)
	_, err = s.CreateNote(ctx, models.NoteInput{Content: "budget approved", DealID: &d.ID})
	require.NoError(t, err)
	_, err = s.CreateNote(ctx, models.NoteInput{Content: "   "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	notes, err := s.ListNotes(ctx, NoteFilter{ContactID: &c.ID})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, n.ID, notes[0].ID)

	all, err := s.ListNotes(ctx, NoteFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	require.NoError(t, s.DeleteNote(ctx, n.ID))
	assert.ErrorIs(t, s.DeleteNote(ctx, n.ID), apperr.ErrNotFound)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateContact(ctx, models.ContactInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@acme.io", Title: "Engineer"})
	require.NoError(t, err)
	_, err = s.CreateCompany(ctx, models.CompanyInput{Name: "Analytical Engines Ltd", Industry: "Computing"})
	require.NoError(t, err)

	hits, err := s.Search(ctx, "lov", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "contact", hits[0].Kind)
	assert.Equal(t, "Ada Lovelace <ada@acme.io>", hits[0].Label)

	hits, err = s.Search(ctx, "analytical comp", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "company", hits[0].Kind)

	hits, err = s.Search(ctx, `"OR NEAR(`, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = s.Search(ctx, "   ", 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDashboard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.Dashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalContacts)
	assert.Equal(t, 0.0, stats.WinRate)
	assert.Empty(t, stats.RecentActivities)
	assert.Equal(t, map[string]int{"lead": 0, "prospect": 0, "customer": 0, "partner": 0}, stats.ContactsByStatus)

	_, err = s.CreateContact(ctx, contactInput("ada@acme.io"))
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		_, err := s.CreateActivity(ctx, models.ActivityInput{
			ActivityType: models.ActivityTask,
			Subject:      string(rune('a' + i)),
			ActivityDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	_, err = s.CreateDeal(ctx, models.DealInput{Title: "w", Value: 10, Status: models.DealWon})
	require.NoError(t, err)

	stats, err = s.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalContacts)
	assert.Equal(t, 7, stats.TotalActivities)
	assert.Equal(t, 1, stats.ContactsByStatus["lead"])
	require.Len(t, stats.RecentActivities, 5)
	assert.Equal(t, "g", stats.RecentActivities[0].Subject)
	assert.Equal(t, 100.0, stats.WinRate)
	assert.Equal(t, 10.0, stats.Pipeline.TotalRevenue)
}

package httpapi

import (
	"context"
	"net/http"

	"github.com/wagnerlima/tenant-crm/internal/models"
	"github.com/wagnerlima/tenant-crm/internal/storage"
)

// Updates are read-modify-write: the stored record's writable fields are
// decoded over by the request body, so omitted fields keep their values and
// null clears an optional one.

// --- Contacts ---

func (a *API) listContacts(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	skip, limit := q.window()
	f := storage.ContactFilter{
		Search:     q.str("search"),
		Status:     models.ContactStatus(q.str("status")),
		CompanyID:  q.optID("company_id"),
		LeadSource: q.str("lead_source"),
		MinScore:   q.optNum("min_score"),
		SortBy:     q.str("sort_by"),
		SortOrder:  q.str("sort_order"),
		Skip:       skip,
		Limit:      limit,
	}
	if q.err != nil {
		a.writeError(w, r, q.err)
		return
	}
	a.withStore(w, r, "list_contacts", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		items, total, err := s.ListContacts(r.Context(), f)
		if err != nil {
			return nil, err
		}
		return newList(items, total, skip, limit), nil
	})
}

func (a *API) getContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "get_contact", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		return s.GetContact(r.Context(), id)
	})
}

func (a *API) createContact(w http.ResponseWriter, r *http.Request) {
	var in models.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "create_contact", http.StatusCreated, func(s *storage.TenantStore) (any, error) {
		return s.CreateContact(r.Context(), in)
	})
}

func (a *API) updateContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "update_contact", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		cur, err := s.ContactRecord(r.Context(), id)
		if err != nil {
			return nil, err
		}
		in := cur.Input()
		if err := unmarshalStrict(body, &in); err != nil {
			return nil, err
		}
		return s.UpdateContact(r.Context(), id, in)
	})
}

func (a *API) deleteContact(w http.ResponseWriter, r *http.Request) {
	a.deleteRecord(w, r, "delete_contact", (*storage.TenantStore).DeleteContact)
}

// --- Companies ---

func (a *API) listCompanies(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	skip, limit := q.window()
	f := storage.CompanyFilter{
		Search:      q.str("search"),
		CompanyType: models.CompanyType(q.str("company_type")),
		Industry:    q.str("industry"),
		Priority:    models.Priority(q.str("priority")),
		Skip:        skip,
		Limit:       limit,
	}
	if q.err != nil {
		a.writeError(w, r, q.err)
		return
	}
	a.withStore(w, r, "list_companies", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		items, total, err := s.ListCompanies(r.Context(), f)
		if err != nil {
			return nil, err
		}
		return newList(items, total, skip, limit), nil
	})
}

func (a *API) getCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "get_company", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		return s.GetCompany(r.Context(), id)
	})
}

func (a *API) createCompany(w http.ResponseWriter, r *http.Request) {
	var in models.CompanyInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "create_company", http.StatusCreated, func(s *storage.TenantStore) (any, error) {
		return s.CreateCompany(r.Context(), in)
	})
}

func (a *API) updateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "update_company", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		cur, err := s.CompanyRecord(r.Context(), id)
		if err != nil {
			return nil, err
		}
		in := cur.Input()
		if err := unmarshalStrict(body, &in); err != nil {
			return nil, err
		}
		return s.UpdateCompany(r.Context(), id, in)
	})
}

func (a *API) deleteCompany(w http.ResponseWriter, r *http.Request) {
	a.deleteRecord(w, r, "delete_company", (*storage.TenantStore).DeleteCompany)
}

// --- Deals ---

func (a *API) listDeals(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	skip, limit := q.window()
	f := storage.DealFilter{
		Stage:     models.DealStage(q.str("stage")),
		Status:    models.DealStatus(q.str("status")),
		ContactID: q.optID("contact_id"),
		CompanyID: q.optID("company_id"),
		ByStage:   q.flag("by_stage"),
		Skip:      skip,
		Limit:     limit,
	}
	if q.err != nil {
		a.writeError(w, r, q.err)
		return
	}
	a.withStore(w, r, "list_deals", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		items, total, err := s.ListDeals(r.Context(), f)
		if err != nil {
			return nil, err
		}
		return newList(items, total, skip, limit), nil
	})
}

func (a *API) getDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "get_deal", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		return s.GetDeal(r.Context(), id)
	})
}

func (a *API) createDeal(w http.ResponseWriter, r *http.Request) {
	var in models.DealInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "create_deal", http.StatusCreated, func(s *storage.TenantStore) (any, error) {
		return s.CreateDeal(r.Context(), in)
	})
}

func (a *API) updateDeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "update_deal", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		cur, err := s.DealRecord(r.Context(), id)
		if err != nil {
			return nil, err
		}
		in := cur.Input()
		if err := unmarshalStrict(body, &in); err != nil {
			return nil, err
		}
		return s.UpdateDeal(r.Context(), id, in)
	})
}

func (a *API) deleteDeal(w http.ResponseWriter, r *http.Request) {
	a.deleteRecord(w, r, "delete_deal", (*storage.TenantStore).DeleteDeal)
}

func (a *API) pipeline(w http.ResponseWriter, r *http.Request) {
	a.withStore(w, r, "pipeline_metrics", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		return s.Pipeline(r.Context())
	})
}

// --- Activities ---

func (a *API) listActivities(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	skip, limit := q.window()
	f := storage.ActivityFilter{
		ActivityType: models.ActivityType(q.str("activity_type")),
		Status:       models.ActivityStatus(q.str("status")),
		ContactID:    q.optID("contact_id"),
		CompanyID:    q.optID("company_id"),
		DealID:       q.optID("deal_id"),
		Skip:         skip,
		Limit:        limit,
	}
	if q.err != nil {
		a.writeError(w, r, q.err)
		return
	}
	a.withStore(w, r, "list_activities", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		items, total, err := s.ListActivities(r.Context(), f)
		if err != nil {
			return nil, err
		}
		return newList(items, total, skip, limit), nil
	})
}

func (a *API) getActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "get_activity", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		return s.GetActivity(r.Context(), id)
	})
}

func (a *API) createActivity(w http.ResponseWriter, r *http.Request) {
	var in models.ActivityInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "create_activity", http.StatusCreated, func(s *storage.TenantStore) (any, error) {
		return s.CreateActivity(r.Context(), in)
	})
}

func (a *API) updateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "update_activity", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		cur, err := s.ActivityRecord(r.Context(), id)
		if err != nil {
			return nil, err
		}
		in := cur.Input()
		if err := unmarshalStrict(body, &in); err != nil {
			return nil, err
		}
		return s.UpdateActivity(r.Context(), id, in)
	})
}

func (a *API) deleteActivity(w http.ResponseWriter, r *http.Request) {
	a.deleteRecord(w, r, "delete_activity", (*storage.TenantStore).DeleteActivity)
}

// --- Notes ---

func (a *API) listNotes(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	skip, limit := q.window()
	f := storage.NoteFilter{
		ContactID: q.optID("contact_id"),
		CompanyID: q.optID("company_id"),
		DealID:    q.optID("deal_id"),
		Skip:      skip,
		Limit:     limit,
	}
	if q.err != nil {
		a.writeError(w, r, q.err)
		return
	}
	a.withStore(w, r, "list_notes", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		notes, err := s.ListNotes(r.Context(), f)
		if err != nil {
			return nil, err
		}
		if notes == nil {
			notes = []models.Note{}
		}
		return notes, nil
	})
}

func (a *API) createNote(w http.ResponseWriter, r *http.Request) {
	var in models.NoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, "create_note", http.StatusCreated, func(s *storage.TenantStore) (any, error) {
		return s.CreateNote(r.Context(), in)
	})
}

func (a *API) deleteNote(w http.ResponseWriter, r *http.Request) {
	a.deleteRecord(w, r, "delete_note", (*storage.TenantStore).DeleteNote)
}

// --- Reports ---

func (a *API) search(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	text := q.str("q")
	limit := q.num("limit")
	if q.err != nil {
		a.writeError(w, r, q.err)
		return
	}
	a.withStore(w, r, "search_records", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		return s.Search(r.Context(), text, limit)
	})
}

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	a.withStore(w, r, "dashboard_stats", http.StatusOK, func(s *storage.TenantStore) (any, error) {
		return s.Dashboard(r.Context())
	})
}

func (a *API) deleteRecord(w http.ResponseWriter, r *http.Request, op string, del func(*storage.TenantStore, context.Context, int64) error) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.withStore(w, r, op, http.StatusNoContent, func(s *storage.TenantStore) (any, error) {
		return nil, del(s, r.Context(), id)
	})
}

package httpapi

import (
	"net/url"
	"strconv"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/paging"
)

// query reads typed query parameters, keeping the first parse error.
type query struct {
	v   url.Values
	err error
}

func newQuery(v url.Values) *query {
	return &query{v: v}
}

func (q *query) str(name string) string {
	return q.v.Get(name)
}

func (q *query) num(name string) int {
	if p := q.optNum(name); p != nil {
		return *p
	}
	return 0
}

func (q *query) optNum(name string) *int {
	raw := q.v.Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name, raw)
		return nil
	}
	return &n
}

func (q *query) optID(name string) *int64 {
	raw := q.v.Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.fail(name, raw)
		return nil
	}
	return &n
}

func (q *query) flag(name string) bool {
	raw := q.v.Get(name)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(name, raw)
	}
	return b
}

// window returns the skip and limit of a list request. skip must not be
// negative and limit must be within 1..paging.MaxLimit when given.
func (q *query) window() (skip, limit int) {
	skip = q.num("skip")
	if skip < 0 && q.err == nil {
		q.err = apperr.Validation("skip must not be negative")
	}
	limit = paging.DefaultLimit
	if p := q.optNum("limit"); p != nil {
		limit = *p
		if (limit < 1 || limit > paging.MaxLimit) && q.err == nil {
			q.err = apperr.Validation("limit must be between 1 and %d", paging.MaxLimit)
		}
	}
	return skip, limit
}

func (q *query) fail(name, raw string) {
	if q.err == nil {
		q.err = apperr.Validation("invalid %s %q", name, raw)
	}
}

// listResponse is one page of a listing.
type listResponse struct {
	Items      any         `json:"items"`
	Pagination paging.Page `json:"pagination"`
}

func newList[T any](items []T, total, skip, limit int) listResponse {
	if items == nil {
		items = []T{}
	}
	return listResponse{Items: items, Pagination: paging.Paginate(total, skip/limit+1, limit)}
}

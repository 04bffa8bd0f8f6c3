// Package paging converts between page numbers and row offsets.
package paging

// Page describes one page of a listing.
type Page struct {
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
	NextPage    *int `json:"next_page"`
	PrevPage    *int `json:"prev_page"`
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Paginate describes page `page` (1-based) of `total` items split `perPage` at a time.
// Non-positive page and perPage fall back to 1 and DefaultLimit.
func Paginate(total, page, perPage int) Page {
	page, perPage = normalize(page, perPage)
	pages := (total + perPage - 1) / perPage
	p := Page{
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: page,
		PerPage:     perPage,
		HasNext:     page < pages,
		HasPrev:     page > 1,
	}
	if p.HasNext {
		n := page + 1
		p.NextPage = &n
	}
	if p.HasPrev {
		n := page - 1
		p.PrevPage = &n
	}
	return p
}

// SkipLimit returns the row offset and limit for a page.
func SkipLimit(page, perPage int) (skip, limit int) {
	page, perPage = normalize(page, perPage)
	return (page - 1) * perPage, perPage
}

// ClampLimit bounds a requested limit to 1..MaxLimit, using DefaultLimit for zero.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

func normalize(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultLimit
	}
	return page, perPage
}

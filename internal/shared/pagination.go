package shared

// Pagination describes one page of a list view.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination clamps page into range and computes the page count.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 40
	}
	if total < 0 {
		total = 0
	}
	pages := (total + perPage - 1) / perPage
	if page <= 0 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: pages}
}

// Offset is the index of the first record on the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// First is the 1-based position of the first record shown.
func (p Pagination) First() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// Last is the position of the last record shown.
func (p Pagination) Last() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

package book

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageRequest selects a window of a filtered listing. Page is 1-based.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps the request: page floors at 1, a non-positive limit
// becomes DefaultLimit and limit never exceeds MaxLimit.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset is the number of records skipped before the window. It saturates
// at math.MaxInt instead of overflowing, so a huge page always lies past the
// end of any result.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// PastEnd reports whether the window starts at or beyond total records.
func (p PageRequest) PastEnd(total int) bool {
	return p.Offset() >= total
}

// Window returns the [start, end) bounds of the page within total records.
// Both are total when the page lies past the end.
func (p PageRequest) Window(total int) (start, end int) {
	start = p.Offset()
	if start >= total {
		return total, total
	}
	end = start + p.Limit
	if end > total || end < start {
		end = total
	}
	return start, end
}

// TotalPages is ceil(total/limit), zero for an empty result.
func (p PageRequest) TotalPages(total int) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// Pagination is the metadata attached to a Page.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Page is one window of a filtered listing.
type Page struct {
	Data       []Book     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPage assembles a Page. data is never nil so it encodes as [].
func NewPage(data []Book, total int, p PageRequest) Page {
	if data == nil {
		data = []Book{}
	}
	return Page{
		Data: data,
		Pagination: Pagination{
			Page:       p.Page,
			Limit:      p.Limit,
			TotalItems: total,
			TotalPages: p.TotalPages(total),
		},
	}
}

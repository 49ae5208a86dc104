package handler

import "github.com/joestump/tagboard/internal/tags"

// Pagination is the view model of the page controls under the tag table.
type Pagination struct {
	Page    int
	Pages   int
	Items   int
	Showing int

	FirstURL string
	PrevURL  string
	NextURL  string
	LastURL  string
}

// HasPrev reports whether there is a page before the current one.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether there is a page after the current one.
func (p Pagination) HasNext() bool { return p.Page < p.Pages }

// newPagination builds the controls for q given the totals reported by the
// collection. Links keep the current filter.
func newPagination(basePath string, q tags.ListQuery, pages, items, showing int) Pagination {
	if pages < 1 {
		pages = 1
	}
	link := func(page int) string {
		return basePath + "?" + q.WithPage(page).Encode()
	}

	p := Pagination{
		Page:     q.Page,
		Pages:    pages,
		Items:    items,
		Showing:  showing,
		FirstURL: link(1),
		LastURL:  link(pages),
	}
	if p.HasPrev() {
		prev := q.Page - 1
		if prev > pages {
			prev = pages
		}
		p.PrevURL = link(prev)
	}
	if p.HasNext() {
		p.NextURL = link(q.Page + 1)
	}
	return p
}

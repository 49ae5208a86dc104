// Package tags holds the tag domain: the records served by the remote tag
// collection, the list query carried in the URL, slug derivation, name
// validation, and the Service that ties the collection to the query cache.
package tags

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size requested from the collection.
const DefaultPerPage = 10

// Tag is a labeled category attachable to videos. ID is assigned by the
// collection backend; the client never mutates a tag after creation.
type Tag struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	AmountOfVideos int    `json:"amountOfVideos"`
}

// Page is the pagination envelope returned by the collection for one page
// of tags. Prev and Next are nil at the edges.
type Page struct {
	First int   `json:"first"`
	Prev  *int  `json:"prev"`
	Next  *int  `json:"next"`
	Last  int   `json:"last"`
	Pages int   `json:"pages"`
	Items int   `json:"items"`
	Data  []Tag `json:"data"`
}

// NewTag is the creation payload sent to the collection.
type NewTag struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	AmountOfVideos int    `json:"amountOfVideos"`
}

// ListParams are the upstream parameters for a page read.
type ListParams struct {
	Page    int
	PerPage int
	Filter  string
}

// ListQuery is the page/filter state carried in the URL query. It is the only
// state that affects what is fetched and can always be rebuilt from the URL.
type ListQuery struct {
	Page   int
	Filter string
}

// ParseListQuery reads "page" and "filter" from v. A missing, malformed, or
// non-positive page becomes 1.
func ParseListQuery(v url.Values) ListQuery {
	q := ListQuery{Page: 1, Filter: v.Get("filter")}
	if p, err := strconv.Atoi(strings.TrimSpace(v.Get("page"))); err == nil && p >= 1 {
		q.Page = p
	}
	return q
}

// WithFilter returns q with its filter replaced and the page reset to 1.
func (q ListQuery) WithFilter(filter string) ListQuery {
	return ListQuery{Page: 1, Filter: filter}
}

// WithPage returns q pointing at page p (clamped to 1).
func (q ListQuery) WithPage(p int) ListQuery {
	if p < 1 {
		p = 1
	}
	q.Page = p
	return q
}

// Values encodes q back into URL query parameters. An empty filter is kept
// out of the URL.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if q.Filter != "" {
		v.Set("filter", q.Filter)
	}
	return v
}

// Encode returns the URL-encoded query string for q.
func (q ListQuery) Encode() string { return q.Values().Encode() }

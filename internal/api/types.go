package api

import "github.com/joestump/tagboard/internal/tags"

// CreateTagRequest is the request body for POST /api/v1/tags.
// The slug is always derived from the name.
type CreateTagRequest struct {
	Name string `json:"name"`
}

// TagResponse is the JSON representation of a single tag.
type TagResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	AmountOfVideos int    `json:"amountOfVideos"`
}

// TagPageResponse mirrors the collection's page envelope.
type TagPageResponse struct {
	Page  int           `json:"page"`
	First int           `json:"first"`
	Prev  *int          `json:"prev"`
	Next  *int          `json:"next"`
	Last  int           `json:"last"`
	Pages int           `json:"pages"`
	Items int           `json:"items"`
	Data  []TagResponse `json:"data"`
}

// SlugResponse is returned by GET /api/v1/slug.
type SlugResponse struct {
	Text string `json:"text"`
	Slug string `json:"slug"`
}

func tagResponse(t tags.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug, AmountOfVideos: t.AmountOfVideos}
}

func pageResponse(page int, p *tags.Page) *TagPageResponse {
	resp := &TagPageResponse{
		Page:  page,
		First: p.First,
		Prev:  p.Prev,
		Next:  p.Next,
		Last:  p.Last,
		Pages: p.Pages,
		Items: p.Items,
		Data:  make([]TagResponse, 0, len(p.Data)),
	}
	for _, t := range p.Data {
		resp.Data = append(resp.Data, tagResponse(t))
	}
	return resp
}

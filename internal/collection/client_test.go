package collection_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/tagboard/internal/collection"
	"github.com/joestump/tagboard/internal/tags"
)

const pageJSON = `{
  "first": 1, "prev": null, "next": 2, "last": 3, "pages": 3, "items": 23,
  "data": [
    {"id": "a1", "name": "Go", "slug": "go", "amountOfVideos": 12},
    {"id": "b2", "name": "Café Língua", "slug": "cafe-lingua", "amountOfVideos": 0}
  ]
}`

func newClient(t *testing.T, h http.HandlerFunc, opts ...collection.Option) *collection.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := collection.New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestListTags_QueryParameters(t *testing.T) {
	var got *http.Request
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = io.WriteString(w, pageJSON)
	})

	p, err := c.ListTags(context.Background(), tags.ListParams{Page: 2, PerPage: 10, Filter: "go"})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/tags", got.URL.Path)
	assert.Equal(t, "2", got.URL.Query().Get("_page"))
	assert.Equal(t, "10", got.URL.Query().Get("_per_page"))
	assert.Equal(t, "go", got.URL.Query().Get("title"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))

	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, 23, p.Items)
	assert.Nil(t, p.Prev)
	require.NotNil(t, p.Next)
	assert.Equal(t, 2, *p.Next)
	require.Len(t, p.Data, 2)
	assert.Equal(t, tags.Tag{ID: "a1", Name: "Go", Slug: "go", AmountOfVideos: 12}, p.Data[0])
	assert.Equal(t, "cafe-lingua", p.Data[1].Slug)
}

func TestListTags_EmptyFilterOmitted(t *testing.T) {
	var query map[string][]string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = io.WriteString(w, `{"first":1,"last":1,"pages":1,"items":0,"data":[]}`)
	})

	p, err := c.ListTags(context.Background(), tags.ListParams{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.NotContains(t, query, "title")
	assert.Empty(t, p.Data)
}

func TestListTags_CustomFilterParam(t *testing.T) {
	var query map[string][]string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = io.WriteString(w, pageJSON)
	}, collection.WithFilterParam("name"))

	_, err := c.ListTags(context.Background(), tags.ListParams{Page: 1, Filter: "rust"})
	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, query["name"])
	assert.Equal(t, []string{"10"}, query["_per_page"], "per page defaults to 10")
}

func TestListTags_NullDataBecomesEmpty(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"first":1,"last":1,"pages":0,"items":0,"data":null}`)
	})
	p, err := c.ListTags(context.Background(), tags.ListParams{Page: 1})
	require.NoError(t, err)
	assert.NotNil(t, p.Data)
}

func TestListTags_StatusError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.ListTags(context.Background(), tags.ListParams{Page: 1})
	var serr *collection.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
	assert.Contains(t, serr.Body, "boom")
}

func TestListTags_BadJSON(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data": [`)
	})
	_, err := c.ListTags(context.Background(), tags.ListParams{Page: 1})
	assert.Error(t, err)
}

func TestCreateTag_Body(t *testing.T) {
	var body map[string]any
	var contentType string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tags", r.URL.Path)
		contentType = r.Header.Get("Content-Type")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"z9","name":"Docker","slug":"docker","amountOfVideos":0}`)
	})

	tag, err := c.CreateTag(context.Background(), tags.NewTag{Name: "Docker", Slug: "docker"})
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, map[string]any{"name": "Docker", "slug": "docker", "amountOfVideos": float64(0)}, body)
	require.NotNil(t, tag)
	assert.Equal(t, "z9", tag.ID)
}

func TestCreateTag_EmptyResponse(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	tag, err := c.CreateTag(context.Background(), tags.NewTag{Name: "Docker", Slug: "docker"})
	require.NoError(t, err)
	assert.Nil(t, tag)
}

func TestCreateTag_StatusError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	_, err := c.CreateTag(context.Background(), tags.NewTag{Name: "Docker", Slug: "docker"})
	var serr *collection.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusConflict, serr.StatusCode)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := collection.New("localhost:3333/tags")
	assert.ErrorIs(t, err, collection.ErrBadBaseURL)
}

func TestNew_KeepsBasePath(t *testing.T) {
	var path string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = io.WriteString(w, pageJSON)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := collection.New(srv.URL + "/api/")
	require.NoError(t, err)
	_, err = c.ListTags(context.Background(), tags.ListParams{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, "/api/tags", path)
}

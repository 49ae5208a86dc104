package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joestump/tagboard/internal/collection"
	"github.com/joestump/tagboard/internal/query"
	"github.com/joestump/tagboard/internal/tags"
)

// Collection is an in-memory stand-in for the remote tag collection. It pages
// like the real endpoint and filters on a case-insensitive substring of the
// tag name.
type Collection struct {
	*httptest.Server

	mu       sync.Mutex
	tags     []tags.Tag
	created  []tags.NewTag
	lists    int
	failList bool
	failPost bool
}

// NewCollection starts a Collection seeded with seed.
func NewCollection(t *testing.T, seed ...tags.Tag) *Collection {
	t.Helper()
	c := &Collection{tags: append([]tags.Tag(nil), seed...)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tags", c.list)
	mux.HandleFunc("POST /tags", c.create)
	c.Server = httptest.NewServer(mux)
	t.Cleanup(c.Server.Close)
	return c
}

// FailLists makes every list request answer 500.
func (c *Collection) FailLists(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failList = fail
}

// FailCreates makes every create request answer 500.
func (c *Collection) FailCreates(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failPost = fail
}

// Created returns the payloads received by POST /tags.
func (c *Collection) Created() []tags.NewTag {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]tags.NewTag(nil), c.created...)
}

// ListCalls returns how many list requests were served.
func (c *Collection) ListCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lists
}

func (c *Collection) list(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists++
	if c.failList {
		http.Error(w, "unavailable", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("_page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("_per_page"))
	if perPage < 1 {
		perPage = tags.DefaultPerPage
	}
	filter := strings.ToLower(q.Get("title"))

	matched := make([]tags.Tag, 0, len(c.tags))
	for _, t := range c.tags {
		if filter == "" || strings.Contains(strings.ToLower(t.Name), filter) {
			matched = append(matched, t)
		}
	}

	pages := (len(matched) + perPage - 1) / perPage
	last := pages
	if last < 1 {
		last = 1
	}
	out := tags.Page{First: 1, Last: last, Pages: pages, Items: len(matched), Data: []tags.Tag{}}
	if page > 1 {
		prev := page - 1
		out.Prev = &prev
	}
	if page < pages {
		next := page + 1
		out.Next = &next
	}
	if start := (page - 1) * perPage; start < len(matched) {
		end := start + perPage
		if end > len(matched) {
			end = len(matched)
		}
		out.Data = matched[start:end]
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (c *Collection) create(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failPost {
		http.Error(w, "unavailable", http.StatusInternalServerError)
		return
	}
	var nt tags.NewTag
	if err := json.NewDecoder(r.Body).Decode(&nt); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.created = append(c.created, nt)
	t := tags.Tag{
		ID:             strconv.Itoa(len(c.tags) + 1),
		Name:           nt.Name,
		Slug:           nt.Slug,
		AmountOfVideos: nt.AmountOfVideos,
	}
	c.tags = append(c.tags, t)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(t)
}

// NewTagService wires a tags.Service to coll through the real HTTP client and
// an in-memory query cache.
func NewTagService(t *testing.T, coll *Collection) *tags.Service {
	t.Helper()
	client, err := collection.New(coll.URL)
	if err != nil {
		t.Fatalf("collection client: %v", err)
	}
	cache := query.NewClient(query.NewMemoryStore(), time.Minute, nil)
	return tags.NewService(client, cache, tags.DefaultPerPage, nil)
}

// SeedTags returns n tags named "Tag 01".."Tag n".
func SeedTags(n int) []tags.Tag {
	out := make([]tags.Tag, 0, n)
	for i := 1; i <= n; i++ {
		name := "Tag " + pad(i)
		out = append(out, tags.Tag{
			ID:             strconv.Itoa(i),
			Name:           name,
			Slug:           tags.ToSlug(name),
			AmountOfVideos: i,
		})
	}
	return out
}

func pad(i int) string {
	if i < 10 {
		return "0" + strconv.Itoa(i)
	}
	return strconv.Itoa(i)
}

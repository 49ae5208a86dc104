package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/tagboard/internal/session"
	"github.com/joestump/tagboard/internal/tags"
	"github.com/joestump/tagboard/internal/testutil"
)

type tagsTestEnv struct {
	router http.Handler
	coll   *testutil.Collection
}

// newTagsTestEnv wires the full router to a fake collection seeded with seed.
func newTagsTestEnv(t *testing.T, seed ...tags.Tag) *tagsTestEnv {
	t.Helper()
	coll := testutil.NewCollection(t, seed...)
	router := NewRouter(Deps{
		SessionManager: session.NewMemoryManager(time.Hour, false),
		Tags:           testutil.NewTagService(t, coll),
	})
	return &tagsTestEnv{router: router, coll: coll}
}

// do sends req through the router. When htmxTarget is non-empty the request
// is marked as coming from HTMX and targeting that element.
func (e *tagsTestEnv) do(req *http.Request, target string) *httptest.ResponseRecorder {
	if target != "" {
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Target", target)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestIndex_RendersRowsInOrder(t *testing.T) {
	env := newTagsTestEnv(t, testutil.SeedTags(12)...)

	rec := env.do(httptest.NewRequest("GET", "/tags", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<html")
	assert.Equal(t, 10, strings.Count(body, "data-tag-id="))
	first := strings.Index(body, "Tag 01")
	tenth := strings.Index(body, "Tag 10")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, tenth)
	assert.Less(t, first, tenth)
	assert.NotContains(t, body, "Tag 11")
	assert.Contains(t, body, "tag-01")
	assert.Contains(t, body, "1 video")
	assert.Contains(t, body, "Page 1 of 2")
}

func TestIndex_InvalidPageFallsBackToFirst(t *testing.T) {
	env := newTagsTestEnv(t, testutil.SeedTags(12)...)

	rec := env.do(httptest.NewRequest("GET", "/tags?page=abc", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page 1 of 2")
}

func TestIndex_SecondPageKeepsFilter(t *testing.T) {
	env := newTagsTestEnv(t, testutil.SeedTags(25)...)

	rec := env.do(httptest.NewRequest("GET", "/tags?page=2&filter=tag", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Tag 11")
	assert.Contains(t, body, "Page 2 of 3")
	assert.Contains(t, body, "/tags?filter=tag&amp;page=3")
}

func TestIndex_EmptyFilterResult(t *testing.T) {
	env := newTagsTestEnv(t, testutil.SeedTags(3)...)

	rec := env.do(httptest.NewRequest("GET", "/tags?filter=zzz", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No tags match")
}

func TestIndex_HTMXListFragment(t *testing.T) {
	env := newTagsTestEnv(t, testutil.SeedTags(3)...)

	rec := env.do(httptest.NewRequest("GET", "/tags?page=1", nil), listTarget)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, `<section id="tag-list"`), body)
	assert.NotContains(t, body, "<html")
}

func TestIndex_UpstreamFailure(t *testing.T) {
	env := newTagsTestEnv(t)
	env.coll.FailLists(true)

	rec := env.do(httptest.NewRequest("GET", "/tags", nil), "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), msgListFailed)
}

func TestIndex_HTMXUpstreamFailureRetargetsAlerts(t *testing.T) {
	env := newTagsTestEnv(t)
	env.coll.FailLists(true)

	rec := env.do(httptest.NewRequest("GET", "/tags?page=2", nil), listTarget)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#alerts", rec.Header().Get("HX-Retarget"))
	assert.Equal(t, "innerHTML", rec.Header().Get("HX-Reswap"))
	assert.Contains(t, rec.Body.String(), msgListFailed)
	assert.NotContains(t, rec.Body.String(), "tag-list")
}

func TestFilter_ResetsPage(t *testing.T) {
	env := newTagsTestEnv(t)

	rec := env.do(postForm("/tags/filter?page=5", url.Values{"filter": {"go"}}), "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/tags?filter=go&page=1", rec.Header().Get("Location"))
}

func TestFilter_EmptyFilterDropsParam(t *testing.T) {
	env := newTagsTestEnv(t)

	rec := env.do(postForm("/tags/filter?page=3&filter=old", url.Values{"filter": {""}}), "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/tags?page=1", rec.Header().Get("Location"))
}

func TestFilter_HTMXPushesURL(t *testing.T) {
	env := newTagsTestEnv(t, testutil.SeedTags(12)...)

	rec := env.do(postForm("/tags/filter?page=2", url.Values{"filter": {"tag 1"}}), listTarget)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/tags?filter=tag+1&page=1", rec.Header().Get("HX-Push-Url"))

	body := rec.Body.String()
	assert.Contains(t, body, "Tag 10")
	assert.NotContains(t, body, "Tag 02")
}

func TestNew_FullPageAndFragment(t *testing.T) {
	env := newTagsTestEnv(t)

	rec := env.do(httptest.NewRequest("GET", "/tags/new", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html")
	assert.Contains(t, rec.Body.String(), `id="create-tag-form"`)

	rec = env.do(httptest.NewRequest("GET", "/tags/new", nil), "create-tag-body")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<form id="create-tag-form"`))
}

func TestSlugPreview(t *testing.T) {
	env := newTagsTestEnv(t)

	rec := env.do(httptest.NewRequest("GET", "/tags/slug?name=Hello+World", nil), "slug-field")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="hello-world"`)
	assert.Contains(t, rec.Body.String(), "readonly")
}

func TestSlugPreview_KeepsBracketedText(t *testing.T) {
	env := newTagsTestEnv(t)

	rec := env.do(httptest.NewRequest("GET", "/tags/slug?name="+url.QueryEscape("C++ <templates>"), nil), "slug-field")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="c-templates"`)
}

func TestCreate_NameWithBracketsSubmittedAsTyped(t *testing.T) {
	env := newTagsTestEnv(t)

	rec := env.do(postForm("/tags", url.Values{"name": {"Vector<T>"}}), "create-tag-form")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), tags.MsgNameTooShort)

	created := env.coll.Created()
	require.Len(t, created, 1)
	assert.Equal(t, "Vector<T>", created[0].Name)
	assert.Equal(t, "vectort", created[0].Slug)
}

func TestCreate_NameTooShort(t *testing.T) {
	env := newTagsTestEnv(t)

	rec := env.do(postForm("/tags", url.Values{"name": {"ab"}}), "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), tags.MsgNameTooShort)
	assert.Empty(t, env.coll.Created())

	rec = env.do(postForm("/tags", url.Values{"name": {"ab"}}), "create-tag-form")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), tags.MsgNameTooShort)
	assert.Contains(t, rec.Body.String(), `value="ab"`)
	assert.Empty(t, env.coll.Created())
}

func TestCreate_HTMXTriggersListRefresh(t *testing.T) {
	env := newTagsTestEnv(t)

	// Prime the list cache.
	env.do(httptest.NewRequest("GET", "/tags", nil), "")
	require.Equal(t, 1, env.coll.ListCalls())

	rec := env.do(postForm("/tags", url.Values{"name": {"Kubernetes"}}), "create-tag-form")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tags-changed":{"slug":"kubernetes"}}`, rec.Header().Get("HX-Trigger"))
	assert.Contains(t, rec.Body.String(), "Tag &#34;Kubernetes&#34; created.")
	assert.Contains(t, rec.Body.String(), `value=""`)

	created := env.coll.Created()
	require.Len(t, created, 1)
	assert.Equal(t, tags.NewTag{Name: "Kubernetes", Slug: "kubernetes", AmountOfVideos: 0}, created[0])

	rec = env.do(httptest.NewRequest("GET", "/tags?page=1", nil), listTarget)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Kubernetes")
	assert.Equal(t, 2, env.coll.ListCalls())
}

func TestCreate_RedirectCarriesFlash(t *testing.T) {
	env := newTagsTestEnv(t)

	rec := env.do(postForm("/tags", url.Values{"name": {"Go Lang"}}), "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, tagsPath, rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest("GET", "/tags", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = env.do(req, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "alert-success")
	assert.Contains(t, body, "Tag &#34;Go Lang&#34; created.")
	assert.Contains(t, body, "go-lang")

	// The flash is shown once.
	req = httptest.NewRequest("GET", "/tags", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = env.do(req, "")
	assert.NotContains(t, rec.Body.String(), "alert-success")
}

func TestCreate_UpstreamFailure(t *testing.T) {
	env := newTagsTestEnv(t)
	env.coll.FailCreates(true)

	rec := env.do(postForm("/tags", url.Values{"name": {"Kubernetes"}}), "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), msgCreateFailed)

	rec = env.do(postForm("/tags", url.Values{"name": {"Kubernetes"}}), "create-tag-form")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("HX-Trigger"))
	assert.Contains(t, rec.Body.String(), `value="Kubernetes"`)
}

func TestRootRedirectsToTags(t *testing.T) {
	env := newTagsTestEnv(t)

	rec := env.do(httptest.NewRequest("GET", "/", nil), "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, tagsPath, rec.Header().Get("Location"))
}

func TestHealthz(t *testing.T) {
	env := newTagsTestEnv(t)

	rec := env.do(httptest.NewRequest("GET", "/healthz", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

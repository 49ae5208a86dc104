package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joestump/tagboard/internal/api"
	"github.com/joestump/tagboard/internal/tags"
	"github.com/joestump/tagboard/internal/testutil"
)

// testEnv holds the API router and the fake tag collection behind it.
type testEnv struct {
	Router     http.Handler
	Collection *testutil.Collection
}

// newTestEnv starts a fake collection seeded with seed and wires the API
// router to it through the real client and an in-memory cache.
func newTestEnv(t *testing.T, seed ...tags.Tag) *testEnv {
	t.Helper()
	coll := testutil.NewCollection(t, seed...)
	router := api.NewAPIRouter(api.Deps{Tags: testutil.NewTagService(t, coll)})
	return &testEnv{Router: router, Collection: coll}
}

// do sends a request through the router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

package api

import (
	"net/http"

	"github.com/joestump/tagboard/internal/tags"
)

// parseListQuery extracts page and filter from query parameters.
// page defaults to 1; anything that is not a positive integer is treated as 1.
func parseListQuery(r *http.Request) tags.ListQuery {
	return tags.ParseListQuery(r.URL.Query())
}

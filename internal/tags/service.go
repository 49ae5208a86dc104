package tags

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joestump/tagboard/internal/metrics"
	"github.com/joestump/tagboard/internal/query"
)

// ListScope is the query cache scope of every tag list read.
const ListScope = "get-tags"

// Collection is the remote tag collection endpoint.
type Collection interface {
	ListTags(ctx context.Context, p ListParams) (*Page, error)
	CreateTag(ctx context.Context, t NewTag) (*Tag, error)
}

// Service reads tag pages through the query cache and creates tags,
// invalidating the cached pages once a creation succeeds.
type Service struct {
	coll    Collection
	cache   *query.Client
	perPage int
	log     *slog.Logger
}

// NewService creates a Service. A non-positive perPage uses DefaultPerPage.
func NewService(coll Collection, cache *query.Client, perPage int, log *slog.Logger) *Service {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{coll: coll, cache: cache, perPage: perPage, log: log}
}

// ListKey is the cache key for one page of the tag list.
func ListKey(q ListQuery) query.Key {
	return query.Key{ListScope, q.Page, q.Filter}
}

// List returns the page of tags selected by q.
func (s *Service) List(ctx context.Context, q ListQuery) (*Page, error) {
	q = q.WithPage(q.Page)
	return query.Fetch(ctx, s.cache, ListKey(q), func(ctx context.Context) (*Page, error) {
		p, err := s.coll.ListTags(ctx, ListParams{Page: q.Page, PerPage: s.perPage, Filter: q.Filter})
		if err != nil {
			return nil, fmt.Errorf("list tags page %d: %w", q.Page, err)
		}
		return p, nil
	})
}

// Create validates name, derives its slug and submits the tag. Validation
// failures are returned as *ValidationError and nothing is sent upstream.
// On success the tag list scope is invalidated exactly once.
func (s *Service) Create(ctx context.Context, name string) (*Tag, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	nt := NewTag{Name: name, Slug: ToSlug(name), AmountOfVideos: 0}
	created, err := s.coll.CreateTag(ctx, nt)
	if err != nil {
		return nil, fmt.Errorf("create tag %q: %w", nt.Slug, err)
	}
	if created == nil {
		created = &Tag{Name: nt.Name, Slug: nt.Slug, AmountOfVideos: nt.AmountOfVideos}
	}
	metrics.TagsCreatedTotal.Inc()

	if err := s.cache.Invalidate(ctx, ListScope); err != nil {
		// The tag exists upstream; the list catches up once the TTL runs out.
		s.log.Warn("tag list invalidation failed", "slug", nt.Slug, "err", err)
	}
	return created, nil
}

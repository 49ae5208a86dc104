// Package query is a key-based cache for remote reads. Keys are ordered
// tuples whose first element names a scope (for example "get-tags");
// invalidating a scope drops every entry cached under it.
//
// Each scope carries a generation number that is part of every storage key.
// Invalidation bumps the generation, which makes older entries unreachable,
// and a fetch that started under an older generation answers its caller but
// never writes its result back.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/joestump/tagboard/internal/metrics"
)

// DefaultTTL is how long a cached result is served before it is refetched.
const DefaultTTL = 30 * time.Second

// FetchTimeout bounds a shared fetch. The fetch outlives the cancellation of
// any single caller, so it needs its own deadline.
const FetchTimeout = 30 * time.Second

// ErrEmptyKey is returned for a key without a scope element.
var ErrEmptyKey = errors.New("query key must start with a scope name")

// Key identifies one cached read, e.g. Key{"get-tags", 2, "go"}.
type Key []any

// Scope returns the first element of k, or "" when k has no string head.
func (k Key) Scope() string {
	if len(k) == 0 {
		return ""
	}
	s, _ := k[0].(string)
	return s
}

// storageKey renders k under generation gen as "scope:gen:<json key>".
func (k Key) storageKey(gen int64) (string, error) {
	scope := k.Scope()
	if scope == "" {
		return "", ErrEmptyKey
	}
	b, err := json.Marshal([]any(k))
	if err != nil {
		return "", fmt.Errorf("encode query key: %w", err)
	}
	return fmt.Sprintf("%s:%d:%s", scope, gen, b), nil
}

// Store is the backing storage for cached results and scope generations.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Generation(ctx context.Context, scope string) (int64, error)
	Bump(ctx context.Context, scope string) (int64, error)
}

// Client reads through a Store, collapsing concurrent identical fetches.
type Client struct {
	store Store
	ttl   time.Duration
	group singleflight.Group
	log   *slog.Logger
}

// NewClient returns a Client over store. A non-positive ttl uses DefaultTTL.
func NewClient(store Store, ttl time.Duration, log *slog.Logger) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{store: store, ttl: ttl, log: log}
}

// Fetch returns the cached value for key, calling fn on a miss. Cache read
// and write failures are logged and otherwise ignored; only fn's error is
// returned.
//
// Concurrent misses on the same key share one call to fn. That call runs
// detached from the caller's cancellation, and each caller stops waiting
// when its own ctx is done.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	scope := key.Scope()

	gen, err := c.store.Generation(ctx, scope)
	if err != nil {
		c.log.Warn("query cache generation read failed", "scope", scope, "err", err)
		gen = -1
	}
	sk, err := key.storageKey(gen)
	if err != nil {
		return zero, err
	}

	if gen >= 0 {
		if v, ok := lookup[T](ctx, c, sk); ok {
			metrics.CacheLookupsTotal.WithLabelValues(scope, "hit").Inc()
			return v, nil
		}
	}
	metrics.CacheLookupsTotal.WithLabelValues(scope, "miss").Inc()

	ch := c.group.DoChan(sk, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FetchTimeout)
		defer cancel()
		v, err := fn(fctx)
		if err != nil {
			return nil, err
		}
		if gen >= 0 {
			c.save(fctx, scope, gen, sk, v)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}

func lookup[T any](ctx context.Context, c *Client, sk string) (T, bool) {
	var v T
	raw, ok, err := c.store.Get(ctx, sk)
	if err != nil {
		c.log.Warn("query cache read failed", "key", sk, "err", err)
		return v, false
	}
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		c.log.Warn("query cache entry undecodable", "key", sk, "err", err)
		return v, false
	}
	return v, true
}

// save writes v under sk unless the scope moved past gen while fn ran.
func (c *Client) save(ctx context.Context, scope string, gen int64, sk string, v any) {
	cur, err := c.store.Generation(ctx, scope)
	if err != nil {
		c.log.Warn("query cache generation read failed", "scope", scope, "err", err)
		return
	}
	if cur != gen {
		metrics.CacheStaleDiscardsTotal.WithLabelValues(scope).Inc()
		c.log.Debug("discarding stale query result", "key", sk, "generation", cur)
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("query cache encode failed", "key", sk, "err", err)
		return
	}
	if err := c.store.Set(ctx, sk, b, c.ttl); err != nil {
		c.log.Warn("query cache write failed", "key", sk, "err", err)
	}
}

// Invalidate drops every entry cached under scope.
func (c *Client) Invalidate(ctx context.Context, scope string) error {
	if scope == "" {
		return ErrEmptyKey
	}
	gen, err := c.store.Bump(ctx, scope)
	if err != nil {
		return fmt.Errorf("invalidate %q: %w", scope, err)
	}
	metrics.CacheInvalidationsTotal.WithLabelValues(scope).Inc()
	c.log.Debug("query scope invalidated", "scope", scope, "generation", gen)
	return nil
}

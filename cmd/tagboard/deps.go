package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/tagboard/internal/collection"
	"github.com/joestump/tagboard/internal/config"
	"github.com/joestump/tagboard/internal/db"
	"github.com/joestump/tagboard/internal/query"
	"github.com/joestump/tagboard/internal/session"
	"github.com/joestump/tagboard/internal/tags"
)

// newLogger builds the process logger from the configured level and format.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h)
}

// newTagService wires the collection client and the query cache into a
// tags.Service. The returned cleanup closes the cache backend.
func newTagService(ctx context.Context, cfg *config.Config, log *slog.Logger) (*tags.Service, func(), error) {
	client, err := collection.New(cfg.Upstream.URL,
		collection.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		collection.WithFilterParam(cfg.Upstream.FilterParam),
		collection.WithLogger(log),
	)
	if err != nil {
		return nil, nil, err
	}

	var store query.Store
	cleanup := func() {}
	switch cfg.Cache.Backend {
	case "redis":
		rdb, err := query.DialRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		store = query.NewRedisStore(rdb, query.DefaultRedisPrefix)
		cleanup = func() { _ = rdb.Close() }
		log.Info("query cache on redis")
	default:
		store = query.NewMemoryStore()
	}

	cache := query.NewClient(store, cfg.Cache.TTL, log)
	return tags.NewService(client, cache, cfg.Upstream.PerPage, log), cleanup, nil
}

// newSessionManager returns the flash-message session manager. The "db"
// store opens the configured database and migrates it first.
func newSessionManager(cfg *config.Config) (*scs.SessionManager, func(), error) {
	secure := !cfg.InsecureCookies
	if cfg.Session.Store != "db" {
		return session.NewMemoryManager(cfg.Session.Lifetime, secure), func() {}, nil
	}

	database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(database, cfg.DB.Driver); err != nil {
		_ = database.Close()
		return nil, nil, fmt.Errorf("migrate session store: %w", err)
	}
	sm := session.NewDBManager(database, cfg.DB.Driver, cfg.Session.Lifetime, secure)
	return sm, func() { _ = database.Close() }, nil
}

// Package session builds the SCS session manager used for flash messages.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jmoiron/sqlx"
)

const (
	flashTypeKey    = "flash_type"
	flashMessageKey = "flash_message"
)

// NewMemoryManager creates a session manager that keeps sessions in process.
func NewMemoryManager(lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := newManager(lifetime, secure)
	sm.Store = memstore.New()
	return sm
}

// NewDBManager creates a session manager backed by db. The driver parameter
// selects the matching store: "mysql", "postgres", or "sqlite3" (default).
func NewDBManager(db *sqlx.DB, driver string, lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := newManager(lifetime, secure)
	switch driver {
	case "mysql":
		sm.Store = mysqlstore.New(db.DB)
	case "postgres":
		sm.Store = postgresstore.New(db.DB)
	default: // sqlite3
		sm.Store = sqlite3store.New(db.DB)
	}
	return sm
}

func newManager(lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = lifetime
	sm.Cookie.Name = "tagboard_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	return sm
}

// PutFlash stores a one-time message shown on the next page render.
func PutFlash(ctx context.Context, sm *scs.SessionManager, kind, message string) {
	sm.Put(ctx, flashTypeKey, kind)
	sm.Put(ctx, flashMessageKey, message)
}

// PopFlash returns and clears the pending flash message, if any.
func PopFlash(ctx context.Context, sm *scs.SessionManager) (kind, message string, ok bool) {
	message = sm.PopString(ctx, flashMessageKey)
	kind = sm.PopString(ctx, flashTypeKey)
	return kind, message, message != ""
}

// Package session keeps an anonymous learner identity in a cookie-backed
// session so that exposure logs and learner data survive between visits.
package session

import (
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/frenchmaster/internal/config"
)

// Session data keys
const (
	KeyLearnerID = "learner_id"
	KeyStartedAt = "started_at"
)

func init() {
	gob.Register(time.Time{})
}

// Manager wraps scs.SessionManager with learner-specific helpers.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a configured session manager. With a nil sqlDB the
// sessions live in memory and are lost on restart.
func NewManager(sqlDB *sql.DB, cfg config.Session) (*Manager, error) {
	sm := scs.New()

	if sqlDB != nil {
		_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, err
		}
		sm.Store = sqlite3store.New(sqlDB)
	}

	sm.Lifetime = cfg.Lifetime
	sm.IdleTimeout = cfg.Lifetime / 2

	sm.Cookie.Name = "frenchmaster_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Persist = true

	return &Manager{SessionManager: sm}, nil
}

// LearnerID returns the learner stored in the session, or "".
func (m *Manager) LearnerID(r *http.Request) string {
	return m.GetString(r.Context(), KeyLearnerID)
}

// StartedAt returns when the learner id was first issued.
func (m *Manager) StartedAt(r *http.Request) time.Time {
	return m.GetTime(r.Context(), KeyStartedAt)
}

// Forget drops the learner identity; the next request gets a new one.
func (m *Manager) Forget(r *http.Request) error {
	return m.Destroy(r.Context())
}

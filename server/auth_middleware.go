package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/dukwonit/farm-admin-server/server/sessionstore"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the authenticated session record
const ContextKeySession ContextKey = "session"

// SessionFromContext returns the session record injected by RequireSession.
func SessionFromContext(ctx context.Context) (sessionstore.Record, bool) {
	record, ok := ctx.Value(ContextKeySession).(sessionstore.Record)
	return record, ok
}

// sessionFromRequest resolves the session cookie to a record, if any.
func (s *Server) sessionFromRequest(r *http.Request) (sessionstore.Record, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return sessionstore.Record{}, false
	}
	record, err := s.sessions.Get(cookie.Value)
	if err != nil {
		return sessionstore.Record{}, false
	}
	return record, true
}

// RequireSession gates a protected route. API callers are programmatic, so
// they get a machine-readable 401 instead of a redirect; page routes send the
// human to the login page.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, ok := s.sessionFromRequest(r)
		if !ok {
			if strings.HasPrefix(r.URL.Path, "/api") {
				writeJSONError(w, http.StatusUnauthorized, "AUTH_REQUIRED")
				return
			}
			http.Redirect(w, r, RouteLogin, http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeySession, record)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin escalates the gate: a session is still a 401, a session whose
// preferred_username is off the allow-list is a 403. Chained after
// RequireSession, but re-checks the session so it is safe standalone.
func (s *Server) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, ok := SessionFromContext(r.Context())
		if !ok {
			if record, ok = s.sessionFromRequest(r); !ok {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), ContextKeySession, record))
		}

		if !s.config.Admins.Contains(record.PreferredUsername) {
			writeJSONError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next(w, r)
	}
}

// isAdmin is the pure form of the admin check, shared with /api/me.
func (s *Server) isAdmin(record sessionstore.Record) bool {
	return s.config.Admins.Contains(record.PreferredUsername)
}

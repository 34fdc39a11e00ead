package server

import "net/http"

// MeHandler reports the caller's own auth state. Pages poll it to decide
// whether to show the login prompt, so it answers 401 rather than redirecting
// and is registered outside the session gate.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, ok := s.sessionFromRequest(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"authenticated": false,
				"isAdmin":       false,
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"user":          record,
			"isAdmin":       s.isAdmin(record),
		})
	}
}

package server

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// LogoutHandler destroys the session and sends the browser to the provider's
// end-session endpoint so the Entra session ends too.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.destroySession(w, r)

		logoutURL := s.config.EndSessionURL() +
			"?post_logout_redirect_uri=" + url.QueryEscape(s.config.PostLogoutRedirectURI)
		http.Redirect(w, r, logoutURL, http.StatusFound)
	}
}

// SwitchAccountHandler clears the session and restarts login with the
// provider's account chooser. Redirects to login even when the destroy fails,
// so the user can always re-authenticate.
func (s *Server) SwitchAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.destroySession(w, r)
		http.Redirect(w, r, RouteAuthLogin+"?prompt=select_account", http.StatusFound)
	}
}

// SwitchAccountAPIHandler is the programmatic form: the front end calls it,
// then navigates to the returned redirect target.
func (s *Server) SwitchAccountAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if record, ok := SessionFromContext(r.Context()); ok {
			log.Info().Str("upn", record.PreferredUsername).Msg("[SwitchAccount] POST called")
		}

		cookie, err := r.Cookie(sessionCookieName)
		if err == nil && cookie.Value != "" {
			if err := s.sessions.Delete(cookie.Value); err != nil {
				log.Err(err).Msg("[SwitchAccount] destroy error")
				writeJSONError(w, http.StatusInternalServerError, "Failed to destroy session")
				return
			}
		}
		s.clearSessionCookie(w, r)

		writeJSON(w, http.StatusOK, map[string]string{"redirect": RouteAuthLogin})
	}
}

// destroySession deletes the record (if any) and clears the cookie. Delete
// errors are logged, not surfaced: the cookie-clear still signs the browser
// out of this process.
func (s *Server) destroySession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := s.sessions.Delete(cookie.Value); err != nil {
			log.Err(err).Msg("failed to destroy session")
		}
	}
	s.clearSessionCookie(w, r)
}

package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/dukwonit/farm-admin-server/server/sessionstore"
)

// AuthCallbackHandler finishes the login: it validates the state correlation,
// exchanges the code plus stored verifier for tokens, verifies the ID token
// and turns its claims into the session record.
//
// Provider error bodies are logged server-side only; the browser never sees
// them.
func (s *Server) AuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		if code == "" || state == "" {
			http.Error(w, "Missing code/state", http.StatusBadRequest)
			return
		}

		// Consume deletes the record, so a replayed callback fails here.
		pending, err := s.authState.Consume(state)
		if err != nil {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			return
		}

		// Bounded provider calls: exchange and verification use a client
		// with a hard timeout.
		ctx := s.providerContext(r.Context())

		oidcConfig, err := s.oidcConfig(ctx)
		if err != nil {
			log.Err(err).Msg("/auth/redirect: OIDC discovery failed")
			http.Error(w, "Auth redirect failed", http.StatusInternalServerError)
			return
		}

		oauth2Token, err := oidcConfig.OAuth2Config.Exchange(
			ctx,
			code,
			oauth2.SetAuthURLParam("code_verifier", pending.CodeVerifier),
		)
		if err != nil {
			log.Err(err).Msg("/auth/redirect: token exchange failed")
			http.Error(w, "Auth redirect failed", http.StatusInternalServerError)
			return
		}

		rawIDToken, ok := oauth2Token.Extra("id_token").(string)
		if !ok {
			log.Error().Msg("/auth/redirect: no ID token in response")
			http.Error(w, "Auth redirect failed", http.StatusInternalServerError)
			return
		}

		idToken, err := oidcConfig.OidcVerifier.Verify(ctx, rawIDToken)
		if err != nil {
			log.Err(err).Msg("/auth/redirect: ID token verification failed")
			http.Error(w, "Auth redirect failed", http.StatusInternalServerError)
			return
		}

		var claims struct {
			Name              string `json:"name"`
			PreferredUsername string `json:"preferred_username"`
			Oid               string `json:"oid"`
			Tid               string `json:"tid"`
		}
		if err := idToken.Claims(&claims); err != nil {
			log.Err(err).Msg("/auth/redirect: failed to extract claims")
			http.Error(w, "Auth redirect failed", http.StatusInternalServerError)
			return
		}

		sessionID := generateSessionID()
		if err := s.sessions.Set(sessionID, sessionstore.Record{
			Name:              claims.Name,
			PreferredUsername: claims.PreferredUsername,
			ObjectID:          claims.Oid,
			TenantID:          claims.Tid,
		}); err != nil {
			log.Err(err).Msg("/auth/redirect: failed to create session")
			http.Error(w, "Auth redirect failed", http.StatusInternalServerError)
			return
		}

		s.setSessionCookie(w, r, sessionID)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

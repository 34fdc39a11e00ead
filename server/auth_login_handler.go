package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/dukwonit/farm-admin-server/server/authstate"
)

// AuthLoginHandler begins the authorization-code-with-PKCE flow: it stores
// the state/verifier pair for this attempt and sends the browser to the
// provider's authorize endpoint.
func (s *Server) AuthLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		oidcConfig, err := s.oidcConfig(r.Context())
		if err != nil {
			log.Err(err).Msg("/auth/login: OIDC discovery failed")
			http.Error(w, "Login start failed", http.StatusInternalServerError)
			return
		}

		state := generateStateToken()
		verifier := generateCodeVerifier()
		challenge := generateCodeChallenge(verifier)

		if err := s.authState.Upsert(state, &authstate.State{
			State:        state,
			CodeVerifier: verifier,
		}); err != nil {
			log.Err(err).Msg("/auth/login: failed to store auth state")
			http.Error(w, "Login start failed", http.StatusInternalServerError)
			return
		}

		opts := []oauth2.AuthCodeOption{
			oauth2.SetAuthURLParam("code_challenge", challenge),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		}
		// prompt=select_account comes from /switch-account to force the
		// provider's account chooser.
		if prompt := r.URL.Query().Get("prompt"); prompt != "" {
			opts = append(opts, oauth2.SetAuthURLParam("prompt", prompt))
		}

		http.Redirect(w, r, oidcConfig.OAuth2Config.AuthCodeURL(state, opts...), http.StatusFound)
	}
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dukwonit/farm-admin-server/azuremgmt"
)

// StartPostgresHandler asks the management API to start the flexible server.
func (s *Server) StartPostgresHandler() http.HandlerFunc {
	return s.postgresActionHandler("started", func(r *http.Request, target azuremgmt.Target) (json.RawMessage, error) {
		return s.mgmt.Start(r.Context(), target)
	})
}

// StopPostgresHandler asks the management API to stop the flexible server.
func (s *Server) StopPostgresHandler() http.HandlerFunc {
	return s.postgresActionHandler("stopped", func(r *http.Request, target azuremgmt.Target) (json.RawMessage, error) {
		return s.mgmt.Stop(r.Context(), target)
	})
}

// PostgresDefaultsHandler exposes the environment-backed target so the admin
// UI can prefill its form.
func (s *Server) PostgresDefaultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.mgmt == nil {
			writeJSONError(w, http.StatusInternalServerError, "management client not configured")
			return
		}
		writeJSON(w, http.StatusOK, s.mgmt.Defaults())
	}
}

func (s *Server) postgresActionHandler(status string, action func(*http.Request, azuremgmt.Target) (json.RawMessage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.mgmt == nil {
			writeJSONError(w, http.StatusInternalServerError, "management client not configured")
			return
		}

		// Body override is optional; an empty or absent body means "use the
		// configured target".
		var override azuremgmt.Target
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&override)
		}
		target := s.mgmt.ResolveTarget(override)

		log.Info().
			Str("subscription", target.SubscriptionID).
			Str("resource_group", target.ResourceGroup).
			Str("server", target.ServerName).
			Str("action", status).
			Msg("[DB-API] management call")

		if target.ResourceGroup == "" || target.ServerName == "" {
			writeJSONError(w, http.StatusBadRequest,
				"Missing target: set AZURE_RESOURCE_GROUP and AZURE_PG_SERVER_NAME in .env or include resourceGroup/serverName in request body")
			return
		}

		details, err := action(r, target)
		if err != nil {
			log.Err(err).Str("action", status).Msg("[DB-API] management call failed")
			// These routes are admin tooling: pass the management API status
			// and body through.
			var apiErr *azuremgmt.APIError
			if errors.As(err, &apiErr) {
				writeJSONError(w, apiErr.StatusCode, apiErr.Body)
				return
			}
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"status": status, "details": details})
	}
}

package server

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

// DbsqlHandler runs a trivial query against the Databricks warehouse. It
// exists to verify the warehouse wiring end to end from the deployed app.
func (s *Server) DbsqlHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.warehouse == nil || !s.warehouse.Configured() {
			writeJSONError(w, http.StatusBadRequest, "Missing Databricks configuration (host/path).")
			return
		}

		result, err := s.warehouse.RunQuery(r.Context(), "SELECT 1")
		if err != nil {
			log.Err(err).Msg("Databricks SQL error")
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"result": result})
	}
}

const dashboardPageTemplate = `<html>
  <head><title>Databricks Dashboard</title></head>
  <body>
    <h1>Databricks Dashboard</h1>
    <iframe
      src="{{.}}"
      width="100%"
      height="600"
      frameborder="0"
    ></iframe>
  </body>
</html>`

// DashboardPageHandler embeds the published Databricks dashboard in a bare
// page.
func (s *Server) DashboardPageHandler() http.HandlerFunc {
	tmpl, err := template.New("dashboard").Parse(dashboardPageTemplate)
	if err != nil {
		panic("Failed to parse dashboard template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, s.config.DatabricksDashboardURL); err != nil {
			log.Err(err).Msg("Failed to render dashboard page")
		}
	}
}

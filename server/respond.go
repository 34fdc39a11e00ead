package server

import (
	"encoding/json"
	"net/http"
)

const contentTypeJSON = "application/json; charset=utf-8"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError keeps API errors structured: always an object with an
// "error" field, never an HTML error page.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// requireDB answers the error itself when the process was started without
// database configuration, the same way the warehouse and uploader handlers
// gate their optional backends.
func (s *Server) requireDB(w http.ResponseWriter) bool {
	if s.pool == nil {
		writeJSONError(w, http.StatusInternalServerError, "Database not configured (set PGHOST and PGUSER)")
		return false
	}
	return true
}

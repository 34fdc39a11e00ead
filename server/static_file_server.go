package server

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed public
var publicFiles embed.FS

// PublicFilesFS exposes the embedded front end.
func PublicFilesFS() fs.FS {
	subFS, err := fs.Sub(publicFiles, "public")
	if err != nil {
		panic("Failed to create sub filesystem: " + err.Error())
	}
	return subFS
}

// StaticFileHandler serves the front end assets for everything no other route
// claimed.
func (s *Server) StaticFileHandler() http.HandlerFunc {
	fileServer := http.FileServer(http.FS(PublicFilesFS()))
	return func(w http.ResponseWriter, r *http.Request) {
		s.triggerAutoStart(r.URL.Path)
		fileServer.ServeHTTP(w, r)
	}
}

// IndexHandler serves the main page.
func (s *Server) IndexHandler() http.HandlerFunc {
	serve := s.servePublicFile("index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.triggerAutoStart("/")

		upn := "No user"
		if record, ok := s.sessionFromRequest(r); ok && record.PreferredUsername != "" {
			upn = record.PreferredUsername
		}
		log.Info().Str("user", upn).Msg("Main page loaded")

		serve(w, r)
	}
}

func (s *Server) servePublicFile(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(PublicFilesFS(), name)
		if err != nil {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	}
}

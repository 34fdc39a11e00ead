package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dukwonit/farm-admin-server/storage"
)

// maxUploadBytes bounds the spreadsheet uploads; the exports are small.
const maxUploadBytes = 32 << 20

// UploadHandler stores the posted .xls export in the data lake.
func (s *Server) UploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.uploader == nil || !s.uploader.Configured() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "업로드 실패"})
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}

		file, _, err := r.FormFile("xlsFile")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "xlsFile is required")
			return
		}
		defer file.Close()

		content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Failed to read upload")
			return
		}

		fileName, err := s.uploader.UploadXLS(r.Context(), content)
		if err != nil {
			if errors.Is(err, storage.ErrFileSystemNotFound) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "File system does not exist."})
				return
			}
			log.Err(err).Msg("upload failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "업로드 실패"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "업로드 성공!", "fileName": fileName})
	}
}

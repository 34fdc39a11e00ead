package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// BoardPost is one notice-board entry. Body is only loaded for the detail
// view.
type BoardPost struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Body      *string    `json:"body,omitempty"`
	AuthorUPN *string    `json:"author_upn"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type boardPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ListBoardPostsHandler returns the board index, newest first.
func (s *Server) ListBoardPostsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.requireDB(w) {
			return
		}
		rows, err := s.pool.Query(r.Context(),
			`SELECT id, title, author_upn, created_at, updated_at
			 FROM board_posts
			 ORDER BY created_at DESC`)
		if err != nil {
			log.Err(err).Msg("Get board list error")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}
		defer rows.Close()

		posts := []BoardPost{}
		for rows.Next() {
			var post BoardPost
			if err := rows.Scan(&post.ID, &post.Title, &post.AuthorUPN, &post.CreatedAt, &post.UpdatedAt); err != nil {
				log.Err(err).Msg("Get board list error")
				writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
				return
			}
			posts = append(posts, post)
		}
		if err := rows.Err(); err != nil {
			log.Err(err).Msg("Get board list error")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "posts": posts})
	}
}

// GetBoardPostHandler returns one post with its body. An unknown id is not an
// error: the front end renders "post": null as a missing-post page.
func (s *Server) GetBoardPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.requireDB(w) {
			return
		}
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid id")
			return
		}

		row, err := s.pool.QueryRow(r.Context(),
			`SELECT id, title, body, author_upn, created_at, updated_at
			 FROM board_posts
			 WHERE id = $1`, id)
		if err != nil {
			log.Err(err).Msg("Get board detail error")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}

		var post BoardPost
		err = row.Scan(&post.ID, &post.Title, &post.Body, &post.AuthorUPN, &post.CreatedAt, &post.UpdatedAt)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "post": nil})
		case err != nil:
			log.Err(err).Msg("Get board detail error")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "post": post})
		}
	}
}

// CreateBoardPostHandler inserts a post, recording the admin's UPN as author.
func (s *Server) CreateBoardPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.requireDB(w) {
			return
		}
		title, body, ok := decodeBoardPostRequest(w, r)
		if !ok {
			return
		}

		var authorUPN *string
		if record, found := SessionFromContext(r.Context()); found && record.PreferredUsername != "" {
			authorUPN = &record.PreferredUsername
		}

		row, err := s.pool.QueryRow(r.Context(),
			`INSERT INTO board_posts (title, body, author_upn)
			 VALUES ($1, $2, $3)
			 RETURNING id`,
			title, body, authorUPN)
		if err != nil {
			log.Err(err).Msg("Create board post error")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}

		var id int64
		if err := row.Scan(&id); err != nil {
			log.Err(err).Msg("Create board post error")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
	}
}

// UpdateBoardPostHandler replaces a post's title and body.
func (s *Server) UpdateBoardPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.requireDB(w) {
			return
		}
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid id")
			return
		}

		title, body, ok := decodeBoardPostRequest(w, r)
		if !ok {
			return
		}

		_, err = s.pool.Exec(r.Context(),
			`UPDATE board_posts
			 SET title = $1, body = $2, updated_at = NOW()
			 WHERE id = $3`,
			title, body, id)
		if err != nil {
			log.Err(err).Msg("Update board post error")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// DeleteBoardPostHandler removes a post.
func (s *Server) DeleteBoardPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.requireDB(w) {
			return
		}
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid id")
			return
		}

		if _, err := s.pool.Exec(r.Context(), `DELETE FROM board_posts WHERE id = $1`, id); err != nil {
			log.Err(err).Msg("Delete board post error")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// decodeBoardPostRequest parses and validates the shared title/body payload,
// answering the 400 itself when invalid.
func decodeBoardPostRequest(w http.ResponseWriter, r *http.Request) (title, body string, ok bool) {
	var req boardPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return "", "", false
	}

	title = strings.TrimSpace(req.Title)
	body = strings.TrimSpace(req.Body)
	if title == "" {
		writeJSONError(w, http.StatusBadRequest, "title is required")
		return "", "", false
	}
	if body == "" {
		writeJSONError(w, http.StatusBadRequest, "body is required")
		return "", "", false
	}
	return title, body, true
}

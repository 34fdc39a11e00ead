package server

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

const loginPageTemplate = `<!doctype html>
<html lang="ko">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width,initial-scale=1"/>
  <title>로그인</title>
  <style>
    body{font-family:system-ui,Segoe UI,Apple SD Gothic Neo,Malgun Gothic,sans-serif;max-width:720px;margin:40px auto;padding:0 16px}
    .card{border:1px solid #ddd;border-radius:14px;padding:20px}
    .btn{display:inline-block;padding:10px 14px;border-radius:10px;border:1px solid #333;text-decoration:none;color:#111}
    .btn.primary{background:#111;color:#fff}
  </style>
</head>
<body>
  <div class="card">
    <h1>덕원농장 관리 시스템 로그인</h1>
    {{if .User}}
      <p>이미 로그인됨: <b>{{.DisplayName}}</b></p>
      <p><a class="btn" href="/">홈</a> <a class="btn" href="/logout">로그아웃</a></p>
    {{else}}
      <p><a class="btn primary" href="/auth/login">Microsoft로 로그인</a></p>
    {{end}}
    <p style="color:#666">Redirect URI: {{.RedirectURI}}</p>
  </div>
</body>
</html>`

// LoginPageHandler serves the login page, with the signed-in user when a
// session already exists.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl, err := template.New("login").Parse(loginPageTemplate)
	if err != nil {
		panic("Failed to parse login template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := struct {
			User        bool
			DisplayName string
			RedirectURI string
		}{RedirectURI: s.config.RedirectURI}

		if record, ok := s.sessionFromRequest(r); ok {
			data.User = true
			data.DisplayName = record.Name
			if data.DisplayName == "" {
				data.DisplayName = record.PreferredUsername
			}
			if data.DisplayName == "" {
				data.DisplayName = record.ObjectID
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login page")
		}
	}
}

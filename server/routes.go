package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", s.IndexHandler())

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteLogin, s.LoginPageHandler())
	s.RegisterRouteFunc("GET "+RouteAuthLogin, s.AuthLoginHandler())
	s.RegisterRouteFunc("GET "+RouteAuthRedirect, s.AuthCallbackHandler())
	s.RegisterRouteFunc("GET "+RouteLogout, s.LogoutHandler())
	s.RegisterRouteFunc("GET "+RouteSwitchAccount, s.SwitchAccountHandler())

	// /api/me must answer before any blanket protection: it is how pages
	// discover their own auth state, so it is registered without the gate.
	s.RegisterRouteHandler("GET "+RouteAPIMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPISwitchAccount, s.protectedAPI(s.SwitchAccountAPIHandler()))

	// Farms CRUD (any signed-in staff member)
	s.RegisterRouteHandler("GET "+RouteAPIFarms, s.protectedAPI(s.ListFarmsHandler()))
	s.RegisterRouteHandler("POST "+RouteAPIFarms, s.protectedAPI(s.AddFarmHandler()))
	s.RegisterRouteHandler("PUT "+RouteAPIFarmsID, s.protectedAPI(s.UpdateFarmHandler()))
	s.RegisterRouteHandler("DELETE "+RouteAPIFarmsID, s.protectedAPI(s.DeleteFarmHandler()))

	// Board: reads need a session, writes need the admin allow-list
	s.RegisterRouteHandler("GET "+RouteAPIBoard, s.protectedAPI(s.ListBoardPostsHandler()))
	s.RegisterRouteHandler("GET "+RouteAPIBoardID, s.protectedAPI(s.GetBoardPostHandler()))
	s.RegisterRouteHandler("POST "+RouteAPIBoard, s.adminAPI(s.CreateBoardPostHandler()))
	s.RegisterRouteHandler("PUT "+RouteAPIBoardID, s.adminAPI(s.UpdateBoardPostHandler()))
	s.RegisterRouteHandler("DELETE "+RouteAPIBoardID, s.adminAPI(s.DeleteBoardPostHandler()))

	// Azure management proxy (admin tooling)
	s.RegisterRouteHandler("POST "+RouteAPIPgStart, s.adminAPI(s.StartPostgresHandler()))
	s.RegisterRouteHandler("POST "+RouteAPIPgStop, s.adminAPI(s.StopPostgresHandler()))
	s.RegisterRouteHandler("GET "+RouteAPIPgDefault, s.adminAPI(s.PostgresDefaultsHandler()))

	// Warehouse bridge, dashboard page and upload
	s.RegisterRouteHandler("GET "+RouteAPIDbsql, s.protectedAPI(s.DbsqlHandler()))
	s.RegisterRouteHandler("GET "+RouteDashboardPage, ChainMiddleware(s.DashboardPageHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.RegisterRouteHandler("POST "+RouteUpload, s.protectedAPI(s.UploadHandler()))

	// Board pages behind the session gate (redirect, not 401)
	s.RegisterRouteHandler("GET "+RouteBoardPage, s.protectedPage(s.servePublicFile("detail/board.html")))
	s.RegisterRouteHandler("GET "+RouteBoardDetailPage, s.protectedPage(s.servePublicFile("detail/board-detail.html")))

	// Everything else is the static front end
	s.RegisterRouteHandler("GET /", ChainMiddleware(s.StaticFileHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
}

// protectedAPI wraps an API handler with the standard chain plus the session
// gate.
func (s *Server) protectedAPI(h http.HandlerFunc) http.HandlerFunc {
	mw := append(s.APIMiddleware(), s.RequireSession)
	return ChainMiddleware(h, mw...)
}

// adminAPI additionally requires allow-list membership.
func (s *Server) adminAPI(h http.HandlerFunc) http.HandlerFunc {
	mw := append(s.APIMiddleware(), s.RequireSession, s.RequireAdmin)
	return ChainMiddleware(h, mw...)
}

// protectedPage gates a page route: missing sessions redirect to /login.
func (s *Server) protectedPage(h http.HandlerFunc) http.HandlerFunc {
	return ChainMiddleware(h, s.LoggingMiddleware, s.RecoverMiddleware, s.RequireSession)
}

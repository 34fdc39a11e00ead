package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth routes
	RouteLogin         = "/login"
	RouteAuthLogin     = "/auth/login"
	RouteAuthRedirect  = "/auth/redirect"
	RouteLogout        = "/logout"
	RouteSwitchAccount = "/switch-account"

	// Session API routes
	RouteAPIMe            = "/api/me"
	RouteAPISwitchAccount = "/api/switch-account"

	// Resource API routes
	RouteAPIFarms     = "/api/farms"
	RouteAPIFarmsID   = "/api/farms/{id}"
	RouteAPIBoard     = "/api/board"
	RouteAPIBoardID   = "/api/board/{id}"
	RouteAPIDbsql     = "/api/dbsql"
	RouteUpload       = "/upload"
	RouteAPIPgStart   = "/api/azure-postgres/start"
	RouteAPIPgStop    = "/api/azure-postgres/stop"
	RouteAPIPgDefault = "/api/azure-postgres/defaults"

	// Board pages (static HTML behind the session gate)
	RouteBoardPage       = "/board"
	RouteBoardDetailPage = "/board/{id}"

	// Embedded Databricks dashboard
	RouteDashboardPage = "/dashboard"
)

package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteAPIPrefix = "/api/"

	// Auth Routes
	RouteAuthRegister    = "/api/auth/register"
	RouteAuthLogin       = "/api/auth/login"
	RouteAuthCheckStatus = "/api/auth/check-status"
	RouteAuthRefresh     = "/api/auth/refresh"
	RouteAuthLogout      = "/api/auth/logout"

	// Protected routes
	RouteAuthPrivate  = "/api/auth/private"
	RouteAuthPrivate2 = "/api/auth/private2"

	// Operations
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)

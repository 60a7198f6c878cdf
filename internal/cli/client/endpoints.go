package client

const (
	// API version prefix
	apiV1Prefix = "/api/v1"

	// Authentication endpoints
	endpointRegister = apiV1Prefix + "/auth/register"
	endpointLogin    = apiV1Prefix + "/auth/login"
	endpointLogout   = apiV1Prefix + "/auth/logout"
	endpointMe       = apiV1Prefix + "/auth/me"

	// Chat endpoints
	endpointChat        = apiV1Prefix + "/chat"
	endpointHistory     = apiV1Prefix + "/chat/history"      // GET ?page=&page_size=
	endpointHistoryByID = apiV1Prefix + "/chat/history/%s"   // GET, DELETE
	endpointProbe       = apiV1Prefix + "/chat/probe"        // GET
	endpointStats       = apiV1Prefix + "/users/me/stats"    // GET
	endpointProfile     = apiV1Prefix + "/users/me"          // PUT, DELETE
)

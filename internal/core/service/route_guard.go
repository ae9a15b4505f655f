package service

// RouteDecision is the outcome of evaluating a navigation request.
type RouteDecision int

const (
	// RouteAllow lets the requested page render.
	RouteAllow RouteDecision = iota

	// RouteRedirectLogin sends an unauthenticated visitor to the login page.
	RouteRedirectLogin

	// RouteRedirectHome sends an authenticated visitor away from the
	// auth pages, back to the home page.
	RouteRedirectHome
)

// publicRoutes are the pages reachable without a credential. Matching is
// exact: /login-history is a protected path even though it shares a prefix
// with /login.
var publicRoutes = []string{
	"/login",
	"/register",
	"/forget-password",
	"/verify-code",
	"/reset-password",
}

// IsPublicRoute reports whether a path is on the public allowlist.
func IsPublicRoute(path string) bool {
	for _, p := range publicRoutes {
		if path == p {
			return true
		}
	}
	return false
}

// EvaluateRoute decides what to do with a navigation request. It is a pure
// function evaluated fresh per request; no state survives between calls.
func EvaluateRoute(hasToken bool, path string) RouteDecision {
	public := IsPublicRoute(path)
	switch {
	case !hasToken && !public:
		return RouteRedirectLogin
	case hasToken && public:
		return RouteRedirectHome
	default:
		return RouteAllow
	}
}

// Package middleware provides HTTP middleware for session authentication, group access, and throttling.
//
// # Middleware Components
//
// SessionMiddleware: Cookie session authentication
//
//	sessions := middleware.NewSessionMiddleware(manager, middleware.CookieConfig{Name: "session"})
//	router.Use(sessions.Handler)
//	// Resolves the cookie, renews the session, re-issues the cookie and adds the principal
//
// GroupAccess: Membership checks on by-group routes
//
//	access := middleware.NewGroupAccess(cfg.EnforceGroupAccess, "type", "id")
//	router.Handle("/invitations/by-group/{type}/{id}", access.RequireMember(h))
//
// RateLimiter: Per-client login throttle
//
//	limiter := middleware.NewRateLimiter(middleware.DefaultLoginRateLimitConfig())
//	router.Handle("/auth/login", limiter.Handler(loginHandler))
//
// CORS: Credentialed cross-origin access for the demo front end
//
//	handler = middleware.CORS(cfg.CORSOrigins)(handler)
//
// # Related Packages
//
//   - pkg/session: Session resolution
//   - pkg/contextkeys: Principal storage on the request context
package middleware

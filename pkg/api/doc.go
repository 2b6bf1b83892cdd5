// Package api provides the HTTP adapter of the bridge.
//
// # Overview
//
// The handlers translate HTTP requests into calls on the session manager, the
// assertion issuer and the invitation manager, and translate their typed errors
// back into status codes. No other package knows about HTTP status codes.
//
// # API Endpoints
//
// Routes are mounted under a configurable prefix (default /api):
//
//	POST   /auth/login                           - Open a session, sets the session cookie
//	POST   /auth/logout                          - Close the session, clears the cookie
//	GET    /auth/me                              - Current principal
//	GET    /auth/users                           - Directory emails (dev endpoints only)
//	POST   /vortex/jwt                           - Signed assertion for the current principal
//	GET    /vortex/invitations                   - Invitations by target
//	GET    /vortex/invitations/{id}              - Single invitation
//	DELETE /vortex/invitations/{id}              - Revoke
//	POST   /vortex/invitations/accept            - Accept several invitations
//	GET    /vortex/invitations/by-group/{type}/{id}
//	DELETE /vortex/invitations/by-group/{type}/{id}
//	POST   /vortex/invitations/{id}/reinvite
//
// Every /vortex route requires a session.
//
// # Error Mapping
//
//	invalid credentials, no session    -> 401
//	group access denied                -> 403
//	invalid_argument                   -> 400
//	not_found, upstream_failure,
//	signing_failure, invalid_principal -> 500 {"error": reason, "code": kind}
//
// # Usage Example
//
//	server := api.NewServer(api.Config{Prefix: "/api"}, api.Dependencies{
//		Sessions:    sessions,
//		Users:       dir,
//		Issuer:      issuer,
//		Invitations: invitationManager,
//		Logger:      logger,
//	})
//	http.ListenAndServe(":5001", server)
//
// # Related Packages
//
//   - pkg/middleware: Session, group access, throttling and CORS middleware
//   - pkg/httputil: JSON response helpers
package api
